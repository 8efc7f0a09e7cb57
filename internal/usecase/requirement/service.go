package requirement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrRequirementNotFound = errors.New("requirement not found")
	// ErrRequirementInUse means candidate scores still reference the
	// requirement, so its id cannot go away.
	ErrRequirementInUse = errors.New("requirement is referenced by candidate scores")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
)

type jobLoader interface {
	WithRequirements(ctx context.Context, userID, jobID uuid.UUID) (job.Job, error)
}

type Input struct {
	Category    string
	Description string
	Weight      int
	IsRequired  bool
}

type Service struct {
	jobs      jobLoader
	repo      repository.RequirementRepository
	generator *Generator
}

func NewService(jobs jobLoader, repo repository.RequirementRepository, generator *Generator) *Service {
	if generator == nil {
		generator = NewGenerator(nil)
	}
	return &Service{jobs: jobs, repo: repo, generator: generator}
}

func (s *Service) List(ctx context.Context, userID, jobID uuid.UUID) ([]job.Requirement, error) {
	j, err := s.jobs.WithRequirements(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	return j.Requirements, nil
}

func (s *Service) Add(ctx context.Context, userID, jobID uuid.UUID, in Input) (job.Requirement, error) {
	if _, err := s.jobs.WithRequirements(ctx, userID, jobID); err != nil {
		return job.Requirement{}, err
	}
	req := fromInput(in)
	req.ID = uuid.New()
	req.JobID = jobID
	if err := req.Validate(); err != nil {
		return job.Requirement{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	created, err := s.repo.Create(ctx, req)
	if err != nil {
		return job.Requirement{}, fmt.Errorf("%w: create requirement: %v", ErrInternal, err)
	}
	return created, nil
}

// Update edits a requirement in place. The id never changes, so existing
// scores keep pointing at it.
func (s *Service) Update(ctx context.Context, userID, jobID, reqID uuid.UUID, in Input) (job.Requirement, error) {
	if _, err := s.jobs.WithRequirements(ctx, userID, jobID); err != nil {
		return job.Requirement{}, err
	}
	req := fromInput(in)
	req.ID = reqID
	req.JobID = jobID
	if err := req.Validate(); err != nil {
		return job.Requirement{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	updated, err := s.repo.Update(ctx, req)
	if err != nil {
		if errors.Is(err, repository.ErrRequirementNotFound) {
			return job.Requirement{}, ErrRequirementNotFound
		}
		return job.Requirement{}, fmt.Errorf("%w: update requirement: %v", ErrInternal, err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, userID, jobID, reqID uuid.UUID) error {
	if _, err := s.jobs.WithRequirements(ctx, userID, jobID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, jobID, reqID); err != nil {
		switch {
		case errors.Is(err, repository.ErrRequirementNotFound):
			return ErrRequirementNotFound
		case repository.IsForeignKeyViolation(err):
			return ErrRequirementInUse
		}
		return fmt.Errorf("%w: delete requirement: %v", ErrInternal, err)
	}
	return nil
}

// Generate proposes requirements for the job from its description and
// context files. With persist the proposal replaces the stored set.
func (s *Service) Generate(ctx context.Context, userID, jobID uuid.UUID, c ai.Completer, persist bool) ([]job.Requirement, error) {
	j, err := s.jobs.WithRequirements(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	docs := make([]string, 0, len(j.ContextFiles))
	for _, f := range j.ContextFiles {
		docs = append(docs, f.Content)
	}
	reqs, err := s.generator.Generate(ctx, c, GenerateInput{
		Title:       j.Title,
		Company:     j.Company,
		Description: j.Description,
		Context:     docs,
	})
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		reqs[i].JobID = j.ID
	}
	if !persist {
		return reqs, nil
	}

	stored, err := s.repo.ReplaceAll(ctx, j.ID, reqs)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, ErrRequirementInUse
		}
		return nil, fmt.Errorf("%w: replace requirements: %v", ErrInternal, err)
	}
	return stored, nil
}

func fromInput(in Input) job.Requirement {
	return job.Requirement{
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		Weight:      in.Weight,
		IsRequired:  in.IsRequired,
	}
}
