package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hireflow/internal/domain/candidate"
	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/usecase/scoring"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
	StatusEmpty   Status = "empty"
)

const DefaultDelay = 1500 * time.Millisecond

var errFallback = errors.New("no usable AI reply; candidate left unscored")

type Failure struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Name        string    `json:"name"`
	Reason      string    `json:"reason"`
}

type Result struct {
	JobID     uuid.UUID `json:"job_id"`
	Total     int       `json:"total"`
	Attempted int       `json:"attempted"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures"`
	// LastCompletedID is the last candidate whose attempt finished, or
	// uuid.Nil when none did.
	LastCompletedID uuid.UUID `json:"last_completed_id"`
	Cancelled       bool      `json:"cancelled"`
	Status          Status    `json:"status"`
}

func (r *Result) finish() {
	switch {
	case r.Attempted == 0:
		r.Status = StatusEmpty
	case r.Failed == 0:
		r.Status = StatusSuccess
	case r.Succeeded == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}

type candidateScorer interface {
	Score(ctx context.Context, c ai.Completer, j job.Job, cand candidate.Candidate) (scoring.Result, error)
}

type unscoredLister interface {
	ListUnscored(ctx context.Context, jobID uuid.UUID) ([]candidate.Candidate, error)
}

// Processor scores a job's unscored candidates one at a time.
type Processor struct {
	scorer     candidateScorer
	candidates unscoredLister
	delay      time.Duration
	logger     *log.Logger
}

func NewProcessor(scorer candidateScorer, candidates unscoredLister, delay time.Duration, logger *log.Logger) *Processor {
	if delay < 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{scorer: scorer, candidates: candidates, delay: delay, logger: logger}
}

// Run scores every unscored candidate of j sequentially, pacing calls by the
// configured delay. Cancelling ctx stops the loop before the next candidate;
// an in-flight scoring call always completes. Per-candidate errors are
// counted and never abort the run.
func (p *Processor) Run(ctx context.Context, c ai.Completer, j job.Job, onProgress func(Progress)) (Result, error) {
	if len(j.Requirements) == 0 {
		return Result{}, scoring.ErrNoRequirements
	}
	pending, err := p.candidates.ListUnscored(ctx, j.ID)
	if err != nil {
		return Result{}, fmt.Errorf("list unscored candidates: %w", err)
	}

	res := Result{JobID: j.ID, Total: len(pending), Failures: []Failure{}}
	emit := func(current string) {
		if onProgress != nil {
			onProgress(Progress{
				JobID:     j.ID,
				Status:    StatusRunning,
				Total:     res.Total,
				Processed: res.Attempted,
				Errors:    res.Failed,
				Current:   current,
			})
		}
	}

	pace := newPacer(p.delay)

	for _, cand := range pending {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}
		if err := pace.wait(ctx); err != nil {
			res.Cancelled = true
			break
		}

		emit(cand.Name)
		sr, err := p.scorer.Score(context.WithoutCancel(ctx), c, j, cand)
		pace.done()
		res.Attempted++
		res.LastCompletedID = cand.ID
		switch {
		case err != nil:
			res.Failed++
			res.Failures = append(res.Failures, Failure{CandidateID: cand.ID, Name: cand.Name, Reason: err.Error()})
			p.logger.Printf("batch_candidate job_id=%s candidate_id=%s status=error err=%v", j.ID, cand.ID, err)
		case sr.Fallback || !sr.Persisted:
			res.Failed++
			res.Failures = append(res.Failures, Failure{CandidateID: cand.ID, Name: cand.Name, Reason: errFallback.Error()})
			p.logger.Printf("batch_candidate job_id=%s candidate_id=%s status=fallback", j.ID, cand.ID)
		default:
			res.Succeeded++
		}
		emit("")
	}

	res.finish()
	p.logger.Printf("batch_status job_id=%s status=%s total=%d attempted=%d succeeded=%d failed=%d cancelled=%t",
		j.ID, res.Status, res.Total, res.Attempted, res.Succeeded, res.Failed, res.Cancelled)
	return res, nil
}

// pacer keeps at least delay between the end of one call and the start of
// the next. The limiter is re-armed after every call, so a slow call never
// leaves a refilled token behind.
type pacer struct {
	delay   time.Duration
	limiter *rate.Limiter
}

func newPacer(delay time.Duration) *pacer {
	return &pacer{delay: delay}
}

func (p *pacer) wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

func (p *pacer) done() {
	if p.delay <= 0 {
		return
	}
	p.limiter = rate.NewLimiter(rate.Every(p.delay), 1)
	p.limiter.Allow()
}
