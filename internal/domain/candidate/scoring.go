package candidate

import (
	"math"

	"hireflow/internal/domain/job"
)

// OverallScore is Σ(score·weight)/Σweight over requirements that have a
// matching score, rounded to one decimal. No matches yields 0.
func OverallScore(scores []Score, reqs []job.Requirement) float64 {
	if len(scores) == 0 || len(reqs) == 0 {
		return 0
	}

	byReq := make(map[string]int, len(scores))
	for _, s := range scores {
		if _, seen := byReq[s.RequirementID]; seen {
			continue
		}
		byReq[s.RequirementID] = s.Score
	}

	var num, den float64
	for _, r := range reqs {
		s, ok := byReq[r.ID.String()]
		if !ok {
			continue
		}
		w := float64(r.Weight)
		num += float64(s) * w
		den += w
	}
	if den == 0 {
		return 0
	}
	return Round1(num / den)
}

// ScoreFor returns the score recorded for reqID, or 0 when missing.
func ScoreFor(scores []Score, reqID string) int {
	for _, s := range scores {
		if s.RequirementID == reqID {
			return s.Score
		}
	}
	return 0
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
