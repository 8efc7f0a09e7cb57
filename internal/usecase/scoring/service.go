package scoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"hireflow/internal/domain/candidate"
	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/infrastructure/extract"
	"hireflow/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrInternal          = errors.New("internal error")
)

type jobLoader interface {
	WithRequirements(ctx context.Context, userID, jobID uuid.UUID) (job.Job, error)
}

type candidateStore interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (candidate.Candidate, error)
	SetResumeText(ctx context.Context, id uuid.UUID, text string) error
	ReplaceScores(ctx context.Context, in repository.ScoreReplacement) error
}

type fileReader interface {
	Read(ref string) ([]byte, error)
}

type Service struct {
	jobs   jobLoader
	repo   candidateStore
	files  fileReader
	scorer *Scorer
	logger *log.Logger
	now    func() time.Time
}

func NewService(jobs jobLoader, repo candidateStore, files fileReader, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		jobs:   jobs,
		repo:   repo,
		files:  files,
		scorer: NewScorer(logger),
		logger: logger,
		now:    time.Now,
	}
}

// ScoreCandidate loads the candidate and its job for userID and scores it.
func (s *Service) ScoreCandidate(ctx context.Context, userID, candidateID uuid.UUID, c ai.Completer) (Result, error) {
	cand, err := s.repo.GetByID(ctx, userID, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrCandidateNotFound) {
			return Result{}, ErrCandidateNotFound
		}
		return Result{}, fmt.Errorf("%w: get candidate: %v", ErrInternal, err)
	}
	j, err := s.jobs.WithRequirements(ctx, userID, cand.JobID)
	if err != nil {
		return Result{}, err
	}
	return s.Score(ctx, c, j, cand)
}

// Score runs one scoring pass for an already loaded job and candidate and
// replaces the stored scores. Fallback results are returned but never
// written, so the candidate stays unprocessed.
func (s *Service) Score(ctx context.Context, c ai.Completer, j job.Job, cand candidate.Candidate) (Result, error) {
	if strings.TrimSpace(cand.ResumeText) == "" {
		cand.ResumeText = s.recoverText(ctx, cand)
	}

	res, err := s.scorer.Analyze(ctx, c, j, cand)
	if err != nil {
		return Result{}, err
	}
	if res.Fallback || len(res.Persistable) == 0 {
		return res, nil
	}

	processedAt := s.now().UTC()
	if err := s.repo.ReplaceScores(ctx, repository.ScoreReplacement{
		CandidateID:  cand.ID,
		Scores:       res.Persistable,
		Analysis:     res.Analysis,
		OverallScore: res.Candidate.OverallScore,
		ProcessedAt:  processedAt,
	}); err != nil {
		return Result{}, fmt.Errorf("%w: replace scores: %v", ErrInternal, err)
	}

	res.Persisted = true
	res.Candidate.Status = cand.Status.AfterScoring()
	res.Candidate.ProcessedAt = &processedAt
	s.logger.Printf("candidate_score candidate_id=%s status=scored overall=%.1f scores=%d", cand.ID, res.Candidate.OverallScore, len(res.Persistable))
	return res, nil
}

// recoverText extracts text from the stored résumé and caches it on the row.
func (s *Service) recoverText(ctx context.Context, cand candidate.Candidate) string {
	if s.files == nil || cand.ResumeURL == "" {
		return ""
	}
	data, err := s.files.Read(cand.ResumeURL)
	if err != nil {
		s.logger.Printf("candidate_score candidate_id=%s status=file_unreadable err=%v", cand.ID, err)
		return ""
	}
	text, err := extract.Text(ctx, path.Base(cand.ResumeURL), data)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.Printf("candidate_score candidate_id=%s status=no_text err=%v", cand.ID, err)
		return ""
	}
	if err := s.repo.SetResumeText(ctx, cand.ID, text); err != nil {
		s.logger.Printf("candidate_score candidate_id=%s status=text_not_cached err=%v", cand.ID, err)
	}
	return text
}
