package candidate

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusProcessed   Status = "processed"
	StatusReviewed    Status = "reviewed"
	StatusInterviewed Status = "interviewed"
	StatusHired       Status = "hired"
	StatusRejected    Status = "rejected"
)

// Valid reports whether s is a stored status. Only pending/processed are set
// by the pipeline; the rest are manual workflow labels.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusReviewed, StatusInterviewed, StatusHired, StatusRejected:
		return true
	}
	return false
}

// AfterScoring is the status a successful scoring pass leaves behind. Manual
// workflow labels survive re-scoring.
func (s Status) AfterScoring() Status {
	if s == "" || s == StatusPending {
		return StatusProcessed
	}
	return s
}

const (
	MinScore = 1
	MaxScore = 10
)

// Score pairs a requirement with a 1..10 rating. RequirementID stays a string
// because model output may carry ids that are not UUIDs; those are kept for
// display and never persisted.
type Score struct {
	RequirementID string
	Score         int
	Comment       string
}

type Assessment struct {
	Score int
	Notes string
}

type Candidate struct {
	ID         uuid.UUID
	JobID      uuid.UUID
	UserID     uuid.UUID
	Name       string
	Email      string
	ResumeURL  string
	ResumeText string

	OverallScore float64
	Scores       []Score
	Strengths    []string
	Weaknesses   []string
	IsStarred    bool
	Status       Status

	PersonalityTraits   []string
	CultureFit          Assessment
	LeadershipPotential Assessment
	Education           string
	YearsOfExperience   int
	Location            string
	SkillKeywords       []string
	CommunicationStyle  string
	PreferredTools      []string

	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsProcessed is the single gate used everywhere: a candidate counts as
// processed once it has at least one score.
func (c Candidate) IsProcessed() bool {
	return len(c.Scores) > 0
}

// Analysis is the per-candidate aggregate stored next to the score rows.
type Analysis struct {
	CandidateID          uuid.UUID
	Strengths            []string
	Weaknesses           []string
	PersonalityTraits    []string
	CultureFit           Assessment
	LeadershipPotential  Assessment
	TechnicalSkills      []string
	SoftSkills           []string
	ExperienceEvaluation string
	Notes                string
	UpdatedAt            time.Time
}
