package scoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"hireflow/internal/domain/candidate"
	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"
)

const (
	scoringTemp  = 0.2
	notAvailable = "N/A"
)

var (
	ErrEmptyResume    = errors.New("candidate has no résumé text")
	ErrNoRequirements = errors.New("job has no requirements to score against")
	errInvalidReply   = errors.New("invalid analysis reply")
)

type assessmentReply struct {
	Score float64 `json:"score"`
	Notes string  `json:"notes"`
}

type scoreReply struct {
	RequirementID string  `json:"requirementId"`
	Score         float64 `json:"score"`
	Comment       string  `json:"comment"`
	Notes         string  `json:"notes"`
}

type analysisReply struct {
	Scores              []scoreReply    `json:"scores"`
	OverallScore        float64         `json:"overallScore"`
	Strengths           []string        `json:"strengths"`
	Weaknesses          []string        `json:"weaknesses"`
	PersonalityTraits   []string        `json:"personalityTraits"`
	CultureFit          assessmentReply `json:"cultureFit"`
	LeadershipPotential assessmentReply `json:"leadershipPotential"`
	SkillAssessment     struct {
		TechnicalSkills      []string `json:"technicalSkills"`
		SoftSkills           []string `json:"softSkills"`
		ExperienceEvaluation string   `json:"experienceEvaluation"`
	} `json:"skillAssessment"`
	Notes string `json:"notes"`
}

func (r analysisReply) validate() error {
	if len(r.Scores) == 0 {
		return fmt.Errorf("%w: no scores", errInvalidReply)
	}
	for i, s := range r.Scores {
		if s.Score < candidate.MinScore || s.Score > candidate.MaxScore {
			return fmt.Errorf("%w: score %d out of range: %v", errInvalidReply, i, s.Score)
		}
	}
	return nil
}

// Result is one scoring pass. Scores hold every reconciled score for
// display; Persistable is the subset whose ids exist in the job.
type Result struct {
	Candidate   candidate.Candidate
	Analysis    candidate.Analysis
	Persistable []candidate.Score
	// Fallback marks the empty result produced without a usable AI reply.
	Fallback bool
	// Persisted is set once the result has been written.
	Persisted bool
}

type Scorer struct {
	logger *log.Logger
}

func NewScorer(logger *log.Logger) *Scorer {
	if logger == nil {
		logger = log.Default()
	}
	return &Scorer{logger: logger}
}

// Analyze scores cand against j.Requirements. A nil Completer, a failed call
// or an invalid reply all produce the fallback result instead of an error.
func (s *Scorer) Analyze(ctx context.Context, c ai.Completer, j job.Job, cand candidate.Candidate) (Result, error) {
	if len(j.Requirements) == 0 {
		return Result{}, ErrNoRequirements
	}
	if strings.TrimSpace(cand.ResumeText) == "" {
		return Result{}, ErrEmptyResume
	}
	if c == nil {
		s.logger.Printf("candidate_score candidate_id=%s status=fallback reason=no_credential", cand.ID)
		return fallback(j, cand), nil
	}

	raw, err := c.Complete(ctx, ai.ChatRequest{
		System:      systemPrompt,
		Prompt:      buildPrompt(j, cand.ResumeText),
		Temperature: scoringTemp,
		JSON:        true,
	})
	if err != nil {
		s.logger.Printf("candidate_score candidate_id=%s status=fallback reason=ai_error err=%v", cand.ID, err)
		return fallback(j, cand), nil
	}

	var reply analysisReply
	if err := ai.DecodeObject(raw, &reply); err != nil {
		s.logger.Printf("candidate_score candidate_id=%s status=fallback reason=parse_error err=%v", cand.ID, err)
		return fallback(j, cand), nil
	}
	if err := reply.validate(); err != nil {
		s.logger.Printf("candidate_score candidate_id=%s status=fallback reason=invalid err=%v", cand.ID, err)
		return fallback(j, cand), nil
	}

	scores, persistable := reconcile(reply.Scores, j.Requirements)
	analysis := candidate.Analysis{
		CandidateID:          cand.ID,
		Strengths:            cleanList(reply.Strengths),
		Weaknesses:           cleanList(reply.Weaknesses),
		PersonalityTraits:    cleanList(reply.PersonalityTraits),
		CultureFit:           toAssessment(reply.CultureFit),
		LeadershipPotential:  toAssessment(reply.LeadershipPotential),
		TechnicalSkills:      cleanList(reply.SkillAssessment.TechnicalSkills),
		SoftSkills:           cleanList(reply.SkillAssessment.SoftSkills),
		ExperienceEvaluation: strings.TrimSpace(reply.SkillAssessment.ExperienceEvaluation),
		Notes:                strings.TrimSpace(reply.Notes),
	}

	// The model's own overallScore is never trusted.
	cand.Scores = scores
	cand.OverallScore = candidate.OverallScore(scores, j.Requirements)
	applyAnalysis(&cand, analysis)

	return Result{Candidate: cand, Analysis: analysis, Persistable: persistable}, nil
}

// reconcile maps reply scores onto requirement ids: exact id first, then
// position in reqs. The second slice keeps only ids that exist in reqs, once
// each.
func reconcile(items []scoreReply, reqs []job.Requirement) ([]candidate.Score, []candidate.Score) {
	known := make(map[string]struct{}, len(reqs))
	for _, r := range reqs {
		known[r.ID.String()] = struct{}{}
	}

	var (
		all         = make([]candidate.Score, 0, len(items))
		persistable = make([]candidate.Score, 0, len(items))
		seen        = make(map[string]struct{}, len(items))
	)
	for i, it := range items {
		id := strings.ToLower(strings.TrimSpace(it.RequirementID))
		if _, ok := known[id]; !ok && i < len(reqs) {
			id = reqs[i].ID.String()
		}
		comment := strings.TrimSpace(it.Comment)
		if comment == "" {
			comment = strings.TrimSpace(it.Notes)
		}
		sc := candidate.Score{RequirementID: id, Score: int(math.Round(it.Score)), Comment: comment}
		all = append(all, sc)

		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		persistable = append(persistable, sc)
	}
	return all, persistable
}

func fallback(j job.Job, cand candidate.Candidate) Result {
	scores := make([]candidate.Score, 0, len(j.Requirements))
	for _, r := range j.Requirements {
		scores = append(scores, candidate.Score{RequirementID: r.ID.String(), Score: 0, Comment: notAvailable})
	}
	na := []string{notAvailable}
	analysis := candidate.Analysis{
		CandidateID:         cand.ID,
		Strengths:           na,
		Weaknesses:          na,
		PersonalityTraits:   na,
		CultureFit:          candidate.Assessment{Notes: notAvailable},
		LeadershipPotential: candidate.Assessment{Notes: notAvailable},
		Notes:               notAvailable,
	}
	cand.Scores = scores
	cand.OverallScore = 0
	applyAnalysis(&cand, analysis)
	return Result{Candidate: cand, Analysis: analysis, Fallback: true}
}

func applyAnalysis(c *candidate.Candidate, a candidate.Analysis) {
	c.Strengths = a.Strengths
	c.Weaknesses = a.Weaknesses
	c.PersonalityTraits = a.PersonalityTraits
	c.CultureFit = a.CultureFit
	c.LeadershipPotential = a.LeadershipPotential
	if len(a.TechnicalSkills) > 0 {
		c.SkillKeywords = a.TechnicalSkills
	}
}

func toAssessment(a assessmentReply) candidate.Assessment {
	score := int(math.Round(a.Score))
	if score < 0 {
		score = 0
	}
	if score > candidate.MaxScore {
		score = candidate.MaxScore
	}
	return candidate.Assessment{Score: score, Notes: strings.TrimSpace(a.Notes)}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
