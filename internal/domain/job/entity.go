package job

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinWeight = 1
	MaxWeight = 10
)

var (
	ErrInvalidWeight    = errors.New("requirement weight must be between 1 and 10")
	ErrEmptyDescription = errors.New("requirement description is required")
	ErrEmptyTitle       = errors.New("job title is required")
)

type Job struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Company     string
	Description string
	Location    string
	Department  string
	Salary      string

	Requirements []Requirement
	ContextFiles []ContextFile

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (j Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Requirement is a weighted evaluation criterion. IsRequired is advisory and
// never changes how a candidate is scored.
type Requirement struct {
	ID          uuid.UUID
	JobID       uuid.UUID
	Category    string
	Description string
	Weight      int
	IsRequired  bool
	Position    int
	CreatedAt   time.Time
}

func (r Requirement) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if r.Weight < MinWeight || r.Weight > MaxWeight {
		return ErrInvalidWeight
	}
	return nil
}

// ClampWeight forces w into [MinWeight, MaxWeight].
func ClampWeight(w int) int {
	if w < MinWeight {
		return MinWeight
	}
	if w > MaxWeight {
		return MaxWeight
	}
	return w
}

type ContextFile struct {
	ID          uuid.UUID
	JobID       uuid.UUID
	Name        string
	ContentType string
	Content     string
	CreatedAt   time.Time
}
