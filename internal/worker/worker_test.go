package worker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smallbasket/internal/auth"
	"smallbasket/internal/client"
	"smallbasket/internal/config"
	"smallbasket/internal/domain/entities"
	"smallbasket/internal/location"
	"smallbasket/internal/logging"
	"smallbasket/internal/repository/memory"
	"smallbasket/internal/services"
)

type fakeProvider struct {
	enabled bool
	fix     entities.Fix
	err     error
	calls   int32
}

func (p *fakeProvider) Enabled(ctx context.Context) bool { return p.enabled }

func (p *fakeProvider) CurrentFix(ctx context.Context) (entities.Fix, error) {
	atomic.AddInt32(&p.calls, 1)
	return p.fix, p.err
}

type failingTokens struct{}

func (failingTokens) Token(ctx context.Context) (string, error) {
	return "", errors.New("keychain locked")
}

type backend struct {
	calls  int32
	status []int
}

func (b *backend) handler(w http.ResponseWriter, r *http.Request) {
	n := int(atomic.AddInt32(&b.calls, 1))
	if n <= len(b.status) && b.status[n-1] != http.StatusOK {
		w.WriteHeader(b.status[n-1])
		return
	}
	_, _ = w.Write([]byte(`{"success":true,"fast_mode":true}`))
}

type harness struct {
	worker   *LocationWorker
	provider *fakeProvider
	repo     *memory.LocationRepository
	backend  *backend
}

func testLocationConfig() config.LocationConfig {
	cfg := config.NewDefaultConfig().Location
	cfg.InitDelay = 0
	cfg.BaseBackoff = time.Millisecond
	cfg.FixTimeout = time.Second
	return cfg
}

func newHarness(t *testing.T, tokens auth.TokenSource, cfg config.LocationConfig) *harness {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(http.HandlerFunc(b.handler))
	t.Cleanup(srv.Close)

	api, err := client.New(client.Config{BaseURL: srv.URL, Timeout: time.Second}, tokens)
	require.NoError(t, err)

	maps := services.NewMapService(api, config.NewDefaultConfig().Map, nil, logging.Discard())
	repo := memory.NewLocationRepository(true)
	store := services.NewLocationService(maps, repo, logging.Discard())
	provider := &fakeProvider{enabled: true, fix: entities.Fix{Latitude: 12.97, Longitude: 77.59, Time: time.Now()}}

	return &harness{
		worker:   NewLocationWorker(tokens, provider, store, cfg, nil, logging.Discard()),
		provider: provider,
		repo:     repo,
		backend:  b,
	}
}

func TestLocationWorker_Success(t *testing.T) {
	h := newHarness(t, auth.StaticToken("tok"), testLocationConfig())

	assert.Equal(t, Success, h.worker.DoWork(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&h.backend.calls))

	saved, err := h.repo.GetLastFix(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.97, saved.Latitude)
}

func TestLocationWorker_Gates(t *testing.T) {
	tests := []struct {
		name   string
		tokens auth.TokenSource
		setup  func(h *harness, cfg *config.LocationConfig)
		want   Result
	}{
		{name: "signed out", tokens: auth.StaticToken(""), want: Success},
		{name: "token source error", tokens: failingTokens{}, want: Retry},
		{
			name:   "tracking disabled",
			tokens: auth.StaticToken("tok"),
			setup: func(h *harness, cfg *config.LocationConfig) {
				_ = h.repo.SetTrackingEnabled(context.Background(), false)
			},
			want: Success,
		},
		{
			name:   "permission denied",
			tokens: auth.StaticToken("tok"),
			setup:  func(h *harness, cfg *config.LocationConfig) { cfg.PermissionGranted = false },
			want:   Failure,
		},
		{
			name:   "location services off",
			tokens: auth.StaticToken("tok"),
			setup:  func(h *harness, cfg *config.LocationConfig) { h.provider.enabled = false },
			want:   Retry,
		},
		{
			name:   "no fix",
			tokens: auth.StaticToken("tok"),
			setup:  func(h *harness, cfg *config.LocationConfig) { h.provider.err = location.ErrNoFix },
			want:   Retry,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testLocationConfig()
			h := newHarness(t, tt.tokens, cfg)
			if tt.setup != nil {
				tt.setup(h, &cfg)
				h.worker.cfg = cfg
			}

			assert.Equal(t, tt.want, h.worker.DoWork(context.Background()))
			assert.Equal(t, int32(0), atomic.LoadInt32(&h.backend.calls))
		})
	}
}

func TestLocationWorker_RetriesThenSucceeds(t *testing.T) {
	h := newHarness(t, auth.StaticToken("tok"), testLocationConfig())
	h.backend.status = []int{http.StatusInternalServerError, http.StatusBadGateway}

	assert.Equal(t, Success, h.worker.DoWork(context.Background()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&h.backend.calls))
}

func TestLocationWorker_ExhaustedAttempts(t *testing.T) {
	h := newHarness(t, auth.StaticToken("tok"), testLocationConfig())
	h.backend.status = []int{500, 500, 500, 500}

	assert.Equal(t, Retry, h.worker.DoWork(context.Background()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&h.backend.calls))
}

func TestLocationWorker_UsesCachedFix(t *testing.T) {
	h := newHarness(t, auth.StaticToken("tok"), testLocationConfig())
	now := time.Now()
	h.worker.now = func() time.Time { return now }
	require.NoError(t, h.repo.SaveLastFix(context.Background(), entities.Fix{Latitude: 1, Longitude: 2, Time: now.Add(-time.Minute)}))

	assert.Equal(t, Success, h.worker.DoWork(context.Background()))
	assert.Equal(t, int32(0), atomic.LoadInt32(&h.provider.calls))

	require.NoError(t, h.repo.SaveLastFix(context.Background(), entities.Fix{Latitude: 1, Longitude: 2, Time: now.Add(-time.Hour)}))
	assert.Equal(t, Success, h.worker.DoWork(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&h.provider.calls))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, backoff(time.Second, 0, 0))
	assert.Equal(t, 2*time.Second, backoff(time.Second, 1, 0))
	assert.Equal(t, 4*time.Second, backoff(time.Second, 2, 0))
	assert.Equal(t, 2*time.Minute, backoff(30*time.Second, 2, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, backoff(30*time.Second, 5, 5*time.Minute))
}

type countingRunner struct {
	mu      sync.Mutex
	results []Result
	calls   int
	block   chan struct{}
}

func (r *countingRunner) DoWork(ctx context.Context) Result {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= len(r.results) {
		return r.results[r.calls-1]
	}
	return Success
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func schedulerConfig() config.LocationConfig {
	cfg := config.NewDefaultConfig().Location
	cfg.Schedule = "@every 1h"
	cfg.RetryBackoff = 10 * time.Millisecond
	cfg.MaxRetryBackoff = 40 * time.Millisecond
	return cfg
}

func TestScheduler_InitialRunAndRetry(t *testing.T) {
	runner := &countingRunner{results: []Result{Retry, Retry, Success}}
	locks := memory.NewLockManager()
	defer locks.Stop()

	s := NewScheduler(runner, locks, schedulerConfig(), logging.Discard())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.count() == 3 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, runner.count())

	_, last := s.LastRun()
	assert.Equal(t, Success, last)
}

func TestScheduler_FailureIsNotRetried(t *testing.T) {
	runner := &countingRunner{results: []Result{Failure}}
	locks := memory.NewLockManager()
	defer locks.Stop()

	s := NewScheduler(runner, locks, schedulerConfig(), logging.Discard())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, runner.count())

	_, last := s.LastRun()
	assert.Equal(t, Failure, last)
}

func TestScheduler_FailureCancelsPendingRetry(t *testing.T) {
	runner := &countingRunner{results: []Result{Retry, Failure}}
	locks := memory.NewLockManager()
	defer locks.Stop()

	cfg := schedulerConfig()
	cfg.RetryBackoff = 200 * time.Millisecond
	cfg.MaxRetryBackoff = time.Second
	s := NewScheduler(runner, locks, cfg, logging.Discard())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		locked, _ := locks.IsLocked(context.Background(), LocationWorkName)
		return runner.count() == 1 && !locked
	}, time.Second, time.Millisecond)

	res, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Failure, res)

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, 2, runner.count())
}

func TestNewScheduler_NonPositiveRetryBackoff(t *testing.T) {
	cfg := schedulerConfig()
	cfg.RetryBackoff = 0
	cfg.MaxRetryBackoff = 0
	s := NewScheduler(&countingRunner{}, nil, cfg, logging.Discard())

	assert.Equal(t, defaultRetryBackoff, s.retryBase)
	assert.Equal(t, defaultMaxRetryBackoff, s.retryMax)
}

func TestScheduler_RunNowIsSingleFlight(t *testing.T) {
	runner := &countingRunner{block: make(chan struct{})}
	locks := memory.NewLockManager()
	defer locks.Stop()
	s := NewScheduler(runner, locks, schedulerConfig(), logging.Discard())

	done := make(chan Result)
	go func() {
		res, _ := s.RunNow(context.Background())
		done <- res
	}()

	assert.Eventually(t, func() bool {
		locked, _ := locks.IsLocked(context.Background(), LocationWorkName)
		return locked
	}, time.Second, time.Millisecond)

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(runner.block)
	assert.Equal(t, Success, <-done)
	assert.Equal(t, 1, runner.count())
}

func TestScheduler_BadSpec(t *testing.T) {
	cfg := schedulerConfig()
	cfg.Schedule = "not a schedule"
	locks := memory.NewLockManager()
	defer locks.Stop()
	s := NewScheduler(&countingRunner{}, locks, cfg, logging.Discard())
	assert.Error(t, s.Start(context.Background()))
	s.Stop()
}
