package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hireflow/internal/domain/candidate"
	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/usecase/scoring"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listStub []candidate.Candidate

func (l listStub) ListUnscored(context.Context, uuid.UUID) ([]candidate.Candidate, error) {
	return l, nil
}

type recordingScorer struct {
	mu       sync.Mutex
	order    []uuid.UUID
	inflight atomic.Int32
	maxSeen  atomic.Int32
	outcome  func(i int, ctx context.Context) (scoring.Result, error)
}

func (s *recordingScorer) Score(ctx context.Context, _ ai.Completer, _ job.Job, cand candidate.Candidate) (scoring.Result, error) {
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	if n > s.maxSeen.Load() {
		s.maxSeen.Store(n)
	}

	s.mu.Lock()
	s.order = append(s.order, cand.ID)
	i := len(s.order) - 1
	s.mu.Unlock()

	if s.outcome != nil {
		return s.outcome(i, ctx)
	}
	return scoring.Result{Persisted: true}, nil
}

func candidates(n int) listStub {
	out := make(listStub, n)
	for i := range out {
		out[i] = candidate.Candidate{ID: uuid.New(), Name: "c"}
	}
	return out
}

func jobWithReqs() job.Job {
	return job.Job{ID: uuid.New(), Requirements: []job.Requirement{{ID: uuid.New(), Weight: 5}}}
}

func TestRun_AttemptsEveryCandidateOnceInOrder(t *testing.T) {
	cands := candidates(4)
	sc := &recordingScorer{}
	res, err := NewProcessor(sc, cands, 0, nil).Run(context.Background(), nil, jobWithReqs(), nil)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 4, res.Attempted)
	assert.Equal(t, 4, res.Succeeded)
	require.Len(t, sc.order, 4)
	for i, c := range cands {
		assert.Equal(t, c.ID, sc.order[i])
	}
	assert.Equal(t, int32(1), sc.maxSeen.Load())
	assert.Equal(t, cands[3].ID, res.LastCompletedID)
}

func TestRun_TerminalStatus(t *testing.T) {
	cases := []struct {
		name    string
		n       int
		outcome func(int, context.Context) (scoring.Result, error)
		want    Status
	}{
		{"empty", 0, nil, StatusEmpty},
		{"all failed", 2, func(int, context.Context) (scoring.Result, error) {
			return scoring.Result{}, errors.New("boom")
		}, StatusFailed},
		{"mixed", 3, func(i int, _ context.Context) (scoring.Result, error) {
			if i == 1 {
				return scoring.Result{Fallback: true}, nil
			}
			return scoring.Result{Persisted: true}, nil
		}, StatusPartial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sc := &recordingScorer{outcome: tc.outcome}
			res, err := NewProcessor(sc, candidates(tc.n), 0, nil).Run(context.Background(), nil, jobWithReqs(), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Status)
			assert.Equal(t, tc.n, res.Attempted)
			assert.Len(t, res.Failures, res.Failed)
		})
	}
}

func TestRun_CancelStopsBeforeNextCandidate(t *testing.T) {
	cands := candidates(5)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var inflightErr error
	sc := &recordingScorer{outcome: func(i int, callCtx context.Context) (scoring.Result, error) {
		if i == 1 {
			cancel()
			inflightErr = callCtx.Err()
		}
		return scoring.Result{Persisted: true}, nil
	}}

	res, err := NewProcessor(sc, cands, 0, nil).Run(ctx, nil, jobWithReqs(), nil)
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, cands[1].ID, res.LastCompletedID)
	assert.NoError(t, inflightErr)
	assert.Len(t, sc.order, 2)
}

func TestRun_PacesCalls(t *testing.T) {
	delay := 25 * time.Millisecond
	start := time.Now()
	_, err := NewProcessor(&recordingScorer{}, candidates(3), delay, nil).Run(context.Background(), nil, jobWithReqs(), nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 2*delay-5*time.Millisecond)
}

func TestRun_DelayFollowsSlowCalls(t *testing.T) {
	delay := 30 * time.Millisecond
	var mu sync.Mutex
	var starts, ends []time.Time
	sc := &recordingScorer{outcome: func(int, context.Context) (scoring.Result, error) {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()

		time.Sleep(2 * delay)

		mu.Lock()
		ends = append(ends, time.Now())
		mu.Unlock()
		return scoring.Result{Persisted: true}, nil
	}}

	res, err := NewProcessor(sc, candidates(3), delay, nil).Run(context.Background(), nil, jobWithReqs(), nil)
	require.NoError(t, err)
	require.Equal(t, 3, res.Attempted)
	require.Len(t, starts, 3)
	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(ends[i-1])
		assert.GreaterOrEqual(t, gap, delay-time.Millisecond, "gap before call %d", i)
	}
}

func TestRun_CancelDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sc := &recordingScorer{outcome: func(int, context.Context) (scoring.Result, error) {
		time.AfterFunc(20*time.Millisecond, cancel)
		return scoring.Result{Persisted: true}, nil
	}}

	started := time.Now()
	res, err := NewProcessor(sc, candidates(3), time.Hour, nil).Run(ctx, nil, jobWithReqs(), nil)
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 1, res.Attempted)
	assert.Less(t, time.Since(started), time.Minute)
}

func TestRun_RequiresRequirements(t *testing.T) {
	_, err := NewProcessor(&recordingScorer{}, candidates(1), 0, nil).Run(context.Background(), nil, job.Job{ID: uuid.New()}, nil)
	require.ErrorIs(t, err, scoring.ErrNoRequirements)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Progress
}

func (n *recordingNotifier) NotifyBatch(_ uuid.UUID, p Progress) {
	n.mu.Lock()
	n.events = append(n.events, p)
	n.mu.Unlock()
}

func (n *recordingNotifier) last() Progress {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

type lockedCache struct{}

func (lockedCache) Available() bool {
	return true
}

func (lockedCache) GetJSON(context.Context, string, any) (bool, error) {
	return false, nil
}

func (lockedCache) SetJSON(context.Context, string, any, time.Duration) error {
	return nil
}

func (lockedCache) SetIfNotExists(context.Context, string, string, time.Duration) (bool, error) {
	return false, nil
}

func (lockedCache) ReleaseIfValue(context.Context, string, string) error {
	return nil
}

func (lockedCache) ExtendIfValue(context.Context, string, string, time.Duration) error {
	return nil
}

// grantingCache hands out the lock and records what the registry does with it.
type grantingCache struct {
	lockedCache

	mu       sync.Mutex
	token    string
	extended []time.Duration
	released bool
}

func (c *grantingCache) SetIfNotExists(_ context.Context, _ string, value string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = value
	return true, nil
}

func (c *grantingCache) ExtendIfValue(_ context.Context, _ string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == c.token {
		c.extended = append(c.extended, ttl)
	}
	return nil
}

func (c *grantingCache) ReleaseIfValue(_ context.Context, _ string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = value == c.token
	return nil
}

func TestRegistry_SingleRunPerJob(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	sc := &recordingScorer{outcome: func(int, context.Context) (scoring.Result, error) {
		entered <- struct{}{}
		<-release
		return scoring.Result{Persisted: true}, nil
	}}
	notifier := &recordingNotifier{}
	reg := NewRegistry(NewProcessor(sc, candidates(2), 0, nil), nil, notifier, nil)
	j := jobWithReqs()
	userID := uuid.New()

	started, err := reg.Start(context.Background(), userID, j, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, started.Status)

	_, err = reg.Start(context.Background(), userID, j, nil)
	require.ErrorIs(t, err, ErrBatchRunning)

	<-entered
	require.NoError(t, reg.Cancel(j.ID))
	close(release)
	require.NoError(t, reg.Shutdown(context.Background()))

	p, err := reg.Progress(context.Background(), j.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Result)
	assert.True(t, p.Result.Cancelled)
	assert.Equal(t, 1, p.Processed)
	assert.NotNil(t, p.FinishedAt)
	assert.Equal(t, userID, notifier.last().UserID)
	assert.Equal(t, p.Status, notifier.last().Status)

	require.ErrorIs(t, reg.Cancel(j.ID), ErrNotRunning)
}

func TestRegistry_RemoteLockRejectsStart(t *testing.T) {
	reg := NewRegistry(NewProcessor(&recordingScorer{}, candidates(1), 0, nil), lockedCache{}, nil, nil)
	_, err := reg.Start(context.Background(), uuid.New(), jobWithReqs(), nil)
	require.ErrorIs(t, err, ErrBatchRunning)
}

func TestRegistry_ProgressUnknownJob(t *testing.T) {
	reg := NewRegistry(NewProcessor(&recordingScorer{}, nil, 0, nil), nil, nil, nil)
	_, err := reg.Progress(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNoProgress)
}

func TestRegistry_ExtendsLockWhileRunning(t *testing.T) {
	cache := &grantingCache{}
	reg := NewRegistry(NewProcessor(&recordingScorer{}, candidates(3), 0, nil), cache, nil, nil)

	j := jobWithReqs()
	_, err := reg.Start(context.Background(), uuid.New(), j, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		cache.mu.Lock()
		defer cache.mu.Unlock()
		return cache.released
	}, time.Second, 5*time.Millisecond)

	cache.mu.Lock()
	defer cache.mu.Unlock()
	assert.Len(t, cache.extended, 6)
	for _, ttl := range cache.extended {
		assert.Equal(t, lockTTL, ttl)
	}
}
