package candidate

import (
	"context"
	"errors"
	"fmt"
	"log"

	"hireflow/internal/domain"
	"hireflow/internal/domain/candidate"
	"hireflow/internal/domain/job"
	"hireflow/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrInvalidStatus     = errors.New("invalid candidate status")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInternal          = errors.New("internal error")
)

type jobOwner interface {
	Owned(ctx context.Context, userID, jobID uuid.UUID) (job.Job, error)
}

type UpdateInput struct {
	IsStarred *bool
	Status    *string
}

// Detail is a candidate with its stored analysis.
type Detail struct {
	Candidate candidate.Candidate
	Analysis  candidate.Analysis
}

type Service struct {
	jobs     jobOwner
	repo     repository.CandidateRepository
	store    blobStore
	ingestor *Ingestor
	logger   *log.Logger
}

func NewService(jobs jobOwner, repo repository.CandidateRepository, store blobStore, maxBytes int64, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		jobs:     jobs,
		repo:     repo,
		store:    store,
		ingestor: NewIngestor(store, repo, maxBytes, logger),
		logger:   logger,
	}
}

func (s *Service) Upload(ctx context.Context, userID, jobID uuid.UUID, uploads []Upload) ([]candidate.Candidate, domain.Outcome, error) {
	if len(uploads) == 0 {
		return nil, domain.Outcome{}, ErrInvalidInput
	}
	if _, err := s.jobs.Owned(ctx, userID, jobID); err != nil {
		return nil, domain.Outcome{}, err
	}
	created, outcome := s.ingestor.Ingest(ctx, userID, jobID, uploads)
	return created, outcome, nil
}

func (s *Service) ListByJob(ctx context.Context, userID, jobID uuid.UUID) ([]candidate.Candidate, error) {
	if _, err := s.jobs.Owned(ctx, userID, jobID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: list candidates: %v", ErrInternal, err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (Detail, error) {
	c, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return Detail{}, mapRepoErr(err)
	}
	a, err := s.repo.GetAnalysis(ctx, c.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("%w: get analysis: %v", ErrInternal, err)
	}
	return Detail{Candidate: c, Analysis: a}, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (candidate.Candidate, error) {
	if in.IsStarred == nil && in.Status == nil {
		return candidate.Candidate{}, ErrInvalidInput
	}
	upd := repository.CandidateUpdate{IsStarred: in.IsStarred}
	if in.Status != nil {
		st := candidate.Status(*in.Status)
		if !st.Valid() {
			return candidate.Candidate{}, ErrInvalidStatus
		}
		upd.Status = &st
	}
	c, err := s.repo.Update(ctx, userID, id, upd)
	if err != nil {
		return candidate.Candidate{}, mapRepoErr(err)
	}
	return c, nil
}

// Delete removes the candidate row and, best effort, its stored résumé.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	if c.ResumeURL != "" {
		if err := s.store.Remove(c.ResumeURL); err != nil {
			s.logger.Printf("candidate_delete candidate_id=%s status=file_not_removed err=%v", id, err)
		}
	}
	return nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrCandidateNotFound) {
		return ErrCandidateNotFound
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
