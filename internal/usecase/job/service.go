package job

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"hireflow/internal/domain/candidate"
	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/extract"
	"hireflow/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrContextFileNotFound = errors.New("context file not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFile     = errors.New("unsupported file type")
	ErrInternal            = errors.New("internal error")
)

type jobStore interface {
	Create(ctx context.Context, j job.Job) (job.Job, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (job.Job, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]job.Job, error)
	Update(ctx context.Context, j job.Job) (job.Job, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type requirementLister interface {
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]job.Requirement, error)
}

type contextFileStore interface {
	Create(ctx context.Context, f job.ContextFile) (job.ContextFile, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]job.ContextFile, error)
	Delete(ctx context.Context, jobID, id uuid.UUID) error
}

type candidateLister interface {
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]candidate.Candidate, error)
}

type Input struct {
	Title       string
	Company     string
	Description string
	Location    string
	Department  string
	Salary      string
}

// Detail is a job with everything the job page shows.
type Detail struct {
	Job        job.Job
	Candidates []candidate.Candidate
}

type Service struct {
	jobs       jobStore
	reqs       requirementLister
	files      contextFileStore
	candidates candidateLister
	logger     *log.Logger
}

func NewService(jobs jobStore, reqs requirementLister, files contextFileStore, candidates candidateLister, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{jobs: jobs, reqs: reqs, files: files, candidates: candidates, logger: logger}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, in Input) (job.Job, error) {
	j := fromInput(in)
	j.ID = uuid.New()
	j.UserID = userID
	if err := j.Validate(); err != nil {
		return job.Job{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	created, err := s.jobs.Create(ctx, j)
	if err != nil {
		return job.Job{}, fmt.Errorf("%w: create job: %v", ErrInternal, err)
	}
	return created, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]job.Job, error) {
	items, err := s.jobs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", ErrInternal, err)
	}
	return items, nil
}

// Owned loads the bare job row, failing with ErrJobNotFound when userID does
// not own it.
func (s *Service) Owned(ctx context.Context, userID, jobID uuid.UUID) (job.Job, error) {
	j, err := s.jobs.GetByID(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, fmt.Errorf("%w: get job: %v", ErrInternal, err)
	}
	return j, nil
}

// WithRequirements loads the job plus its ordered requirements and context
// files.
func (s *Service) WithRequirements(ctx context.Context, userID, jobID uuid.UUID) (job.Job, error) {
	j, err := s.Owned(ctx, userID, jobID)
	if err != nil {
		return job.Job{}, err
	}
	if j.Requirements, err = s.reqs.ListByJob(ctx, j.ID); err != nil {
		return job.Job{}, fmt.Errorf("%w: list requirements: %v", ErrInternal, err)
	}
	if j.ContextFiles, err = s.files.ListByJob(ctx, j.ID); err != nil {
		return job.Job{}, fmt.Errorf("%w: list context files: %v", ErrInternal, err)
	}
	return j, nil
}

func (s *Service) Get(ctx context.Context, userID, jobID uuid.UUID) (Detail, error) {
	j, err := s.WithRequirements(ctx, userID, jobID)
	if err != nil {
		return Detail{}, err
	}
	cands, err := s.candidates.ListByJob(ctx, j.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("%w: list candidates: %v", ErrInternal, err)
	}
	return Detail{Job: j, Candidates: cands}, nil
}

func (s *Service) Update(ctx context.Context, userID, jobID uuid.UUID, in Input) (job.Job, error) {
	j := fromInput(in)
	j.ID = jobID
	j.UserID = userID
	if err := j.Validate(); err != nil {
		return job.Job{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	updated, err := s.jobs.Update(ctx, j)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, fmt.Errorf("%w: update job: %v", ErrInternal, err)
	}
	return updated, nil
}

// Delete removes the job together with its requirements, candidates, scores
// and reports.
func (s *Service) Delete(ctx context.Context, userID, jobID uuid.UUID) error {
	if err := s.jobs.Delete(ctx, userID, jobID); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return ErrJobNotFound
		}
		return fmt.Errorf("%w: delete job: %v", ErrInternal, err)
	}
	s.logger.Printf("job_deleted job_id=%s user_id=%s", jobID, userID)
	return nil
}

func (s *Service) ListContextFiles(ctx context.Context, userID, jobID uuid.UUID) ([]job.ContextFile, error) {
	if _, err := s.Owned(ctx, userID, jobID); err != nil {
		return nil, err
	}
	files, err := s.files.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: list context files: %v", ErrInternal, err)
	}
	return files, nil
}

// AddContextFile extracts the document text and stores it against the job.
// Only the text is kept; the original bytes are discarded.
func (s *Service) AddContextFile(ctx context.Context, userID, jobID uuid.UUID, name, contentType string, data []byte) (job.ContextFile, error) {
	if _, err := s.Owned(ctx, userID, jobID); err != nil {
		return job.ContextFile{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" || len(data) == 0 {
		return job.ContextFile{}, ErrInvalidInput
	}
	if !extract.Supported(name) {
		return job.ContextFile{}, ErrUnsupportedFile
	}

	text, err := extract.Text(ctx, name, data)
	if err != nil {
		return job.ContextFile{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	f, err := s.files.Create(ctx, job.ContextFile{
		ID:          uuid.New(),
		JobID:       jobID,
		Name:        name,
		ContentType: contentType,
		Content:     text,
	})
	if err != nil {
		return job.ContextFile{}, fmt.Errorf("%w: create context file: %v", ErrInternal, err)
	}
	return f, nil
}

func (s *Service) DeleteContextFile(ctx context.Context, userID, jobID, fileID uuid.UUID) error {
	if _, err := s.Owned(ctx, userID, jobID); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, jobID, fileID); err != nil {
		if errors.Is(err, repository.ErrContextFileNotFound) {
			return ErrContextFileNotFound
		}
		return fmt.Errorf("%w: delete context file: %v", ErrInternal, err)
	}
	return nil
}

func fromInput(in Input) job.Job {
	return job.Job{
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Department:  strings.TrimSpace(in.Department),
		Salary:      strings.TrimSpace(in.Salary),
	}
}
