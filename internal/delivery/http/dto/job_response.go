package dto

import (
	"time"

	"hireflow/internal/domain/job"

	"github.com/google/uuid"
)

type JobResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Department  string    `json:"department"`
	Salary      string    `json:"salary"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RequirementResponse struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"job_id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Weight      int       `json:"weight"`
	IsRequired  bool      `json:"is_required"`
	Position    int       `json:"position"`
}

// ContextFileResponse omits the extracted text; it can be large and is only
// used for prompts.
type ContextFileResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Chars       int       `json:"chars"`
	CreatedAt   time.Time `json:"created_at"`
}

type JobDetailResponse struct {
	JobResponse
	Requirements []RequirementResponse `json:"requirements"`
	ContextFiles []ContextFileResponse `json:"context_files"`
	Candidates   []CandidateResponse   `json:"candidates"`
}

func NewJobResponse(j job.Job) JobResponse {
	return JobResponse{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company,
		Description: j.Description,
		Location:    j.Location,
		Department:  j.Department,
		Salary:      j.Salary,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func NewJobResponses(items []job.Job) []JobResponse {
	out := make([]JobResponse, 0, len(items))
	for _, j := range items {
		out = append(out, NewJobResponse(j))
	}
	return out
}

func NewRequirementResponses(items []job.Requirement) []RequirementResponse {
	out := make([]RequirementResponse, 0, len(items))
	for _, r := range items {
		out = append(out, NewRequirementResponse(r))
	}
	return out
}

func NewRequirementResponse(r job.Requirement) RequirementResponse {
	return RequirementResponse{
		ID:          r.ID,
		JobID:       r.JobID,
		Category:    r.Category,
		Description: r.Description,
		Weight:      r.Weight,
		IsRequired:  r.IsRequired,
		Position:    r.Position,
	}
}

func NewContextFileResponses(items []job.ContextFile) []ContextFileResponse {
	out := make([]ContextFileResponse, 0, len(items))
	for _, f := range items {
		out = append(out, NewContextFileResponse(f))
	}
	return out
}

func NewContextFileResponse(f job.ContextFile) ContextFileResponse {
	return ContextFileResponse{
		ID:          f.ID,
		Name:        f.Name,
		ContentType: f.ContentType,
		Chars:       len([]rune(f.Content)),
		CreatedAt:   f.CreatedAt,
	}
}
