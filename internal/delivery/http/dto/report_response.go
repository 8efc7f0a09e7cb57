package dto

import (
	"time"

	"hireflow/internal/domain/report"

	"github.com/google/uuid"
)

type RankingResponse struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Rank        int       `json:"rank"`
	Score       float64   `json:"score"`
	Rationale   string    `json:"rationale,omitempty"`
}

type ReportResponse struct {
	ID               uuid.UUID         `json:"id"`
	JobID            uuid.UUID         `json:"job_id"`
	Title            string            `json:"title"`
	Summary          string            `json:"summary"`
	Content          string            `json:"content"`
	CandidateIDs     []uuid.UUID       `json:"candidate_ids"`
	AdditionalPrompt string            `json:"additional_prompt,omitempty"`
	Rankings         []RankingResponse `json:"rankings"`
	GeneratedBy      report.Source     `json:"generated_by"`
	CreatedAt        time.Time         `json:"created_at"`
}

func NewReportResponses(items []report.Report) []ReportResponse {
	out := make([]ReportResponse, 0, len(items))
	for _, r := range items {
		out = append(out, NewReportResponse(r))
	}
	return out
}

func NewReportResponse(r report.Report) ReportResponse {
	ids := r.CandidateIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	rankings := make([]RankingResponse, 0, len(r.Rankings))
	for _, rk := range r.Rankings {
		rankings = append(rankings, RankingResponse{
			CandidateID: rk.CandidateID,
			Rank:        rk.Rank,
			Score:       rk.Score,
			Rationale:   rk.Rationale,
		})
	}
	return ReportResponse{
		ID:               r.ID,
		JobID:            r.JobID,
		Title:            r.Title,
		Summary:          r.Summary,
		Content:          r.Content,
		CandidateIDs:     ids,
		AdditionalPrompt: r.AdditionalPrompt,
		Rankings:         rankings,
		GeneratedBy:      r.GeneratedBy,
		CreatedAt:        r.CreatedAt,
	}
}
