package report

import (
	"time"

	"github.com/google/uuid"
)

type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Report is immutable once stored; a new generation always creates a new row.
type Report struct {
	ID               uuid.UUID
	JobID            uuid.UUID
	UserID           uuid.UUID
	Title            string
	Summary          string
	Content          string
	CandidateIDs     []uuid.UUID
	AdditionalPrompt string
	Rankings         []Ranking
	GeneratedBy      Source
	CreatedAt        time.Time
}

type Ranking struct {
	CandidateID uuid.UUID `json:"candidateId"`
	Rank        int       `json:"rank"`
	Score       float64   `json:"score"`
	Rationale   string    `json:"rationale,omitempty"`
}
