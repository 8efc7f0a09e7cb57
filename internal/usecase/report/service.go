package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"hireflow/internal/domain"
	"hireflow/internal/domain/candidate"
	"hireflow/internal/domain/job"
	"hireflow/internal/domain/report"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/repository"

	"github.com/google/uuid"
)

var (
	// ErrNoValidCandidates means none of the requested ids belong to the job.
	ErrNoValidCandidates = errors.New("no valid candidates selected for this job")
	ErrReportNotFound    = errors.New("report not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInternal          = errors.New("internal error")
)

type jobLoader interface {
	Owned(ctx context.Context, userID, jobID uuid.UUID) (job.Job, error)
	WithRequirements(ctx context.Context, userID, jobID uuid.UUID) (job.Job, error)
}

type candidateLister interface {
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]candidate.Candidate, error)
}

type GenerateInput struct {
	CandidateIDs     []uuid.UUID
	AdditionalPrompt string
}

type Service struct {
	jobs       jobLoader
	candidates candidateLister
	repo       repository.ReportRepository
	logger     *log.Logger
}

func NewService(jobs jobLoader, candidates candidateLister, repo repository.ReportRepository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{jobs: jobs, candidates: candidates, repo: repo, logger: logger}
}

// Generate builds and stores a new report over the requested candidates of
// the job. Ids outside the job are dropped. The AI path degrades to a
// locally assembled report; link failures are returned in the Outcome.
func (s *Service) Generate(ctx context.Context, userID, jobID uuid.UUID, in GenerateInput, c ai.Completer) (report.Report, domain.Outcome, error) {
	j, err := s.jobs.WithRequirements(ctx, userID, jobID)
	if err != nil {
		return report.Report{}, domain.Outcome{}, err
	}
	all, err := s.candidates.ListByJob(ctx, j.ID)
	if err != nil {
		return report.Report{}, domain.Outcome{}, fmt.Errorf("%w: list candidates: %v", ErrInternal, err)
	}

	selected := intersect(all, in.CandidateIDs)
	if len(selected) == 0 {
		return report.Report{}, domain.Outcome{}, ErrNoValidCandidates
	}
	ranked := rank(selected)

	rep := report.Report{
		ID:               uuid.New(),
		JobID:            j.ID,
		UserID:           userID,
		AdditionalPrompt: strings.TrimSpace(in.AdditionalPrompt),
	}
	if ok := s.fromAI(ctx, c, j, ranked, &rep); !ok {
		rep.Title, rep.Summary, rep.Content = fallbackReport(j, ranked, rep.AdditionalPrompt)
		rep.Rankings = rankings(ranked)
		rep.GeneratedBy = report.SourceFallback
	}

	stored, err := s.repo.Create(ctx, rep)
	if err != nil {
		return report.Report{}, domain.Outcome{}, fmt.Errorf("%w: create report: %v", ErrInternal, err)
	}

	var outcome domain.Outcome
	for _, cand := range ranked {
		if err := s.repo.AddCandidate(ctx, stored.ID, cand.ID); err != nil {
			s.logger.Printf("report_link report_id=%s candidate_id=%s status=failed err=%v", stored.ID, cand.ID, err)
			outcome.Fail(cand.ID.String(), err)
			continue
		}
		outcome.Ok(cand.ID.String())
		stored.CandidateIDs = append(stored.CandidateIDs, cand.ID)
	}
	s.logger.Printf("report_generated report_id=%s job_id=%s source=%s candidates=%d link_failures=%d",
		stored.ID, j.ID, stored.GeneratedBy, len(ranked), len(outcome.Failed))
	return stored, outcome, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (report.Report, error) {
	rep, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return report.Report{}, ErrReportNotFound
		}
		return report.Report{}, fmt.Errorf("%w: get report: %v", ErrInternal, err)
	}
	return rep, nil
}

func (s *Service) List(ctx context.Context, userID, jobID uuid.UUID) ([]report.Report, error) {
	if _, err := s.jobs.Owned(ctx, userID, jobID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: list reports: %v", ErrInternal, err)
	}
	return items, nil
}

func intersect(all []candidate.Candidate, ids []uuid.UUID) []candidate.Candidate {
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]candidate.Candidate, 0, len(ids))
	for _, c := range all {
		if _, ok := want[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}
