package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"hireflow/internal/domain/candidate"
	"hireflow/internal/domain/job"
	"hireflow/internal/domain/report"
	"hireflow/internal/infrastructure/ai"

	"github.com/google/uuid"
)

const (
	reportTemp      = 0.4
	reportMaxTokens = 4096
)

const reportSystemPrompt = `You are a hiring analyst writing candidate comparison reports for recruiters.
Ground every claim in the provided scores and notes. Write the report body in Markdown.
Respond with ONLY a JSON object. No text outside the JSON.`

type aiRanking struct {
	CandidateID string  `json:"candidateId"`
	Rank        int     `json:"rank"`
	Score       float64 `json:"score"`
	Rationale   string  `json:"rationale"`
}

type aiReply struct {
	Title    string      `json:"title"`
	Summary  string      `json:"summary"`
	Content  string      `json:"content"`
	Rankings []aiRanking `json:"rankings"`
}

// fromAI fills rep from the model. It reports false when the caller should
// fall back.
func (s *Service) fromAI(ctx context.Context, c ai.Completer, j job.Job, ranked []candidate.Candidate, rep *report.Report) bool {
	if c == nil {
		s.logger.Printf("report_generate job_id=%s status=fallback reason=no_credential", j.ID)
		return false
	}
	raw, err := c.Complete(ctx, ai.ChatRequest{
		System:      reportSystemPrompt,
		Prompt:      buildReportPrompt(j, ranked, rep.AdditionalPrompt),
		Temperature: reportTemp,
		MaxTokens:   reportMaxTokens,
		JSON:        true,
	})
	if err != nil {
		s.logger.Printf("report_generate job_id=%s status=fallback reason=ai_error err=%v", j.ID, err)
		return false
	}

	var reply aiReply
	if err := ai.DecodeObject(raw, &reply); err != nil || strings.TrimSpace(reply.Content) == "" {
		s.logger.Printf("report_generate job_id=%s status=fallback reason=invalid_reply err=%v", j.ID, err)
		return false
	}

	rep.Title = strings.TrimSpace(reply.Title)
	if rep.Title == "" {
		rep.Title = "Candidate Comparison: " + j.Title
	}
	rep.Summary = strings.TrimSpace(reply.Summary)
	rep.Content = reply.Content
	rep.Rankings = mergeRankings(reply.Rankings, ranked)
	rep.GeneratedBy = report.SourceAI
	return true
}

// mergeRankings keeps model rankings for selected candidates only, then
// appends any selected candidate the model left out in score order.
func mergeRankings(in []aiRanking, ranked []candidate.Candidate) []report.Ranking {
	selected := make(map[uuid.UUID]candidate.Candidate, len(ranked))
	for _, c := range ranked {
		selected[c.ID] = c
	}

	sort.SliceStable(in, func(i, k int) bool { return in[i].Rank < in[k].Rank })
	out := make([]report.Ranking, 0, len(ranked))
	seen := make(map[uuid.UUID]struct{}, len(ranked))
	for _, r := range in {
		id, err := uuid.Parse(strings.TrimSpace(r.CandidateID))
		if err != nil {
			continue
		}
		c, ok := selected[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, report.Ranking{CandidateID: id, Score: c.OverallScore, Rationale: strings.TrimSpace(r.Rationale)})
	}
	for _, c := range ranked {
		if _, ok := seen[c.ID]; !ok {
			out = append(out, report.Ranking{CandidateID: c.ID, Score: c.OverallScore})
		}
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func buildReportPrompt(j job.Job, ranked []candidate.Candidate, additional string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job: %s\n", j.Title)
	if j.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", j.Company)
	}
	if j.Description != "" {
		fmt.Fprintf(&b, "Description:\n%s\n", j.Description)
	}

	b.WriteString("\nRequirements:\n")
	for _, r := range j.Requirements {
		fmt.Fprintf(&b, "- %s (%s, weight %d%s)\n", r.Description, category(r), r.Weight, requiredSuffix(r))
	}

	b.WriteString("\nCandidates:\n")
	for _, c := range ranked {
		fmt.Fprintf(&b, "\nid=%s name=%s overall=%.1f\n", c.ID, c.Name, c.OverallScore)
		for _, r := range j.Requirements {
			fmt.Fprintf(&b, "  - %s: %d/10 %s\n", r.Description, candidate.ScoreFor(c.Scores, r.ID.String()), commentFor(c.Scores, r.ID.String()))
		}
		if len(c.Strengths) > 0 {
			fmt.Fprintf(&b, "  strengths: %s\n", strings.Join(c.Strengths, "; "))
		}
		if len(c.Weaknesses) > 0 {
			fmt.Fprintf(&b, "  weaknesses: %s\n", strings.Join(c.Weaknesses, "; "))
		}
	}

	if additional != "" {
		fmt.Fprintf(&b, "\nAdditional instructions from the recruiter:\n%s\n", additional)
	}

	b.WriteString(`
Return this JSON object:
{"title": "...", "summary": "2-3 sentence executive summary", "content": "full Markdown report with a job overview, ranked candidate sections, a comparison summary and a Recommendations section", "rankings": [{"candidateId": "<id>", "rank": 1, "score": 0-10, "rationale": "..."}]}`)
	return b.String()
}
