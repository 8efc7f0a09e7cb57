package batch

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"

	"github.com/google/uuid"
)

var (
	ErrBatchRunning = errors.New("a batch is already running for this job")
	ErrNotRunning   = errors.New("no batch is running for this job")
	ErrNoProgress   = errors.New("no batch has run for this job")
)

const (
	lockTTL     = 10 * time.Minute
	progressTTL = 24 * time.Hour
)

// Progress is the externally visible state of a job's latest batch.
type Progress struct {
	JobID      uuid.UUID  `json:"job_id"`
	UserID     uuid.UUID  `json:"user_id"`
	Status     Status     `json:"status"`
	Total      int        `json:"total"`
	Processed  int        `json:"processed"`
	Errors     int        `json:"errors"`
	Current    string     `json:"current,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Result     *Result    `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type progressCache interface {
	Available() bool
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	ReleaseIfValue(ctx context.Context, key, value string) error
	ExtendIfValue(ctx context.Context, key, value string, ttl time.Duration) error
}

// Notifier receives every progress change of a user's batch.
type Notifier interface {
	NotifyBatch(userID uuid.UUID, p Progress)
}

type run struct {
	cancel   context.CancelFunc
	token    string
	progress Progress
}

// Registry owns the background batch runs, at most one per job.
type Registry struct {
	proc     *Processor
	cache    progressCache
	notifier Notifier
	logger   *log.Logger

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu   sync.Mutex
	runs map[uuid.UUID]*run
	last map[uuid.UUID]Progress

	now func() time.Time
}

func NewRegistry(proc *Processor, cache progressCache, notifier Notifier, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	base, stop := context.WithCancel(context.Background())
	return &Registry{
		proc:     proc,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
		base:     base,
		stop:     stop,
		runs:     make(map[uuid.UUID]*run),
		last:     make(map[uuid.UUID]Progress),
		now:      time.Now,
	}
}

func lockKey(jobID uuid.UUID) string     { return "batch:lock:" + jobID.String() }
func progressKey(jobID uuid.UUID) string { return "batch:" + jobID.String() }

// Start launches a background run for j. It fails with ErrBatchRunning when
// this process or, with Redis available, another instance already runs one.
func (r *Registry) Start(ctx context.Context, userID uuid.UUID, j job.Job, c ai.Completer) (Progress, error) {
	r.mu.Lock()
	if _, ok := r.runs[j.ID]; ok {
		r.mu.Unlock()
		return Progress{}, ErrBatchRunning
	}

	token := uuid.NewString()
	if r.cache != nil && r.cache.Available() {
		ok, err := r.cache.SetIfNotExists(ctx, lockKey(j.ID), token, lockTTL)
		if err == nil && !ok {
			r.mu.Unlock()
			return Progress{}, ErrBatchRunning
		}
		if err != nil {
			r.logger.Printf("batch_lock job_id=%s status=redis_error err=%v", j.ID, err)
		}
	}

	runCtx, cancel := context.WithCancel(r.base)
	rn := &run{
		cancel: cancel,
		token:  token,
		progress: Progress{
			JobID:     j.ID,
			UserID:    userID,
			Status:    StatusRunning,
			StartedAt: r.now().UTC(),
		},
	}
	r.runs[j.ID] = rn
	started := rn.progress
	r.wg.Add(1)
	r.mu.Unlock()

	r.publish(started)
	go r.execute(runCtx, rn, j, c)
	return started, nil
}

func (r *Registry) execute(ctx context.Context, rn *run, j job.Job, c ai.Completer) {
	defer r.wg.Done()
	defer rn.cancel()

	res, err := r.proc.Run(ctx, c, j, func(p Progress) {
		r.mu.Lock()
		p.UserID = rn.progress.UserID
		p.StartedAt = rn.progress.StartedAt
		rn.progress = p
		r.mu.Unlock()
		r.holdLock(j.ID, rn.token)
		r.publish(p)
	})

	finished := r.now().UTC()
	r.mu.Lock()
	final := rn.progress
	final.FinishedAt = &finished
	final.Current = ""
	if err != nil {
		final.Status = StatusFailed
		final.Error = err.Error()
		r.logger.Printf("batch_status job_id=%s status=failed err=%v", j.ID, err)
	} else {
		final.Status = res.Status
		final.Total = res.Total
		final.Processed = res.Attempted
		final.Errors = res.Failed
		final.Result = &res
	}
	delete(r.runs, j.ID)
	r.last[j.ID] = final
	r.mu.Unlock()

	if r.cache != nil {
		if err := r.cache.ReleaseIfValue(context.Background(), lockKey(j.ID), rn.token); err != nil {
			r.logger.Printf("batch_lock job_id=%s status=release_failed err=%v", j.ID, err)
		}
	}
	r.publish(final)
}

// holdLock pushes the cross-instance lock expiry forward while the run is
// still making progress.
func (r *Registry) holdLock(jobID uuid.UUID, token string) {
	if r.cache == nil || !r.cache.Available() {
		return
	}
	if err := r.cache.ExtendIfValue(context.Background(), lockKey(jobID), token, lockTTL); err != nil {
		r.logger.Printf("batch_lock job_id=%s status=extend_failed err=%v", jobID, err)
	}
}

// publish stores the snapshot in Redis and pushes it to the user's sockets.
func (r *Registry) publish(p Progress) {
	if r.cache != nil {
		if err := r.cache.SetJSON(context.Background(), progressKey(p.JobID), p, progressTTL); err != nil {
			r.logger.Printf("batch_progress job_id=%s status=not_cached err=%v", p.JobID, err)
		}
	}
	if r.notifier != nil {
		r.notifier.NotifyBatch(p.UserID, p)
	}
}

// Progress returns the running or last finished snapshot for jobID,
// consulting Redis for runs owned by other instances.
func (r *Registry) Progress(ctx context.Context, jobID uuid.UUID) (Progress, error) {
	r.mu.Lock()
	if rn, ok := r.runs[jobID]; ok {
		p := rn.progress
		r.mu.Unlock()
		return p, nil
	}
	if p, ok := r.last[jobID]; ok {
		r.mu.Unlock()
		return p, nil
	}
	r.mu.Unlock()

	if r.cache != nil {
		var p Progress
		found, err := r.cache.GetJSON(ctx, progressKey(jobID), &p)
		if err == nil && found {
			return p, nil
		}
	}
	return Progress{}, ErrNoProgress
}

// Cancel asks the job's run to stop before its next candidate.
func (r *Registry) Cancel(jobID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rn, ok := r.runs[jobID]
	if !ok {
		return ErrNotRunning
	}
	rn.cancel()
	return nil
}

// Shutdown cancels every run and waits for in-flight candidates to finish.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.stop()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
