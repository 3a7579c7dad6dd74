package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"smallbasket/internal/config"
	"smallbasket/internal/logging"
	"smallbasket/internal/repository"
)

// LocationWorkName is the unique name periodic location work runs under.
const LocationWorkName = "location_update_work"

// DefaultLockTTL bounds how long a crashed run can hold the work lock.
const DefaultLockTTL = 10 * time.Minute

// Retry backoff used when the configured one is not positive.
const (
	defaultRetryBackoff    = 30 * time.Second
	defaultMaxRetryBackoff = 5 * time.Minute
)

// ErrAlreadyRunning is returned by RunNow while another run holds the lock.
var ErrAlreadyRunning = errors.New("work already running")

// Scheduler runs a Runner on a cron spec, never more than one run at a time
// per work name, and reschedules a one-off rerun when a run asks to retry.
//
// Go Learning Note — robfig/cron:
// cron.New(cron.WithChain(cron.SkipIfStillRunning(...))) wraps every job so
// a tick that fires while the previous run is still going is dropped rather
// than queued. The lock manager extends the same guarantee to runs started
// outside cron (retries, manual triggers).
type Scheduler struct {
	runner    Runner
	locks     repository.LockManager
	name      string
	spec      string
	lockTTL   time.Duration
	retryBase time.Duration
	retryMax  time.Duration
	log       *logrus.Entry

	cron *cron.Cron

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	retries    int
	retryTimer *time.Timer
	lastResult Result
	lastRun    time.Time
	running    bool
	wg         sync.WaitGroup
}

func NewScheduler(runner Runner, locks repository.LockManager, cfg config.LocationConfig, logger logrus.FieldLogger) *Scheduler {
	log := logging.Component(logger, "scheduler")
	spec := cfg.Schedule
	if spec == "" {
		spec = "@every 15m"
	}
	retryBase, retryMax := cfg.RetryBackoff, cfg.MaxRetryBackoff
	if retryBase <= 0 {
		retryBase = defaultRetryBackoff
	}
	if retryMax <= 0 {
		retryMax = defaultMaxRetryBackoff
	}
	return &Scheduler{
		runner:    runner,
		locks:     locks,
		name:      LocationWorkName,
		spec:      spec,
		lockTTL:   DefaultLockTTL,
		retryBase: retryBase,
		retryMax:  retryMax,
		log:       log.WithField("work", LocationWorkName),
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(log)),
			cron.SkipIfStillRunning(cron.PrintfLogger(log)),
		)),
	}
}

// Start registers the periodic job and kicks off a first run. Calling Start
// on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, func() { s.trigger("periodic") }); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.mu.Unlock()

	s.cron.Start()
	s.log.WithField("spec", s.spec).Info("periodic location work scheduled")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.trigger("initial")
	}()
	return nil
}

// Stop cancels pending retries, waits for the running job and stops cron.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopRetryTimer()
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// RunNow runs the work once outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) (Result, error) {
	return s.run(ctx, "manual")
}

// LastRun reports when the work last finished and how.
func (s *Scheduler) LastRun() (time.Time, Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastResult
}

func (s *Scheduler) trigger(reason string) {
	s.mu.Lock()
	ctx := s.ctx
	running := s.running
	s.mu.Unlock()
	if !running {
		return
	}
	if _, err := s.run(ctx, reason); err != nil {
		s.log.WithField("trigger", reason).WithError(err).Debug("run skipped")
	}
}

func (s *Scheduler) run(ctx context.Context, reason string) (Result, error) {
	ok, err := s.locks.AcquireLock(ctx, s.name, s.lockTTL)
	if err != nil {
		return Retry, fmt.Errorf("acquire %s: %w", s.name, err)
	}
	if !ok {
		return Retry, ErrAlreadyRunning
	}
	defer func() {
		if err := s.locks.ReleaseLock(context.Background(), s.name); err != nil {
			s.log.WithError(err).Warn("failed to release work lock")
		}
	}()

	s.log.WithField("trigger", reason).Debug("running location work")
	res := s.runner.DoWork(ctx)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastResult = res
	s.mu.Unlock()

	switch res {
	case Retry:
		s.scheduleRetry()
	default:
		s.resetRetries()
	}
	return res, nil
}

// scheduleRetry arms a one-off rerun after an exponential backoff.
func (s *Scheduler) scheduleRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	delay := backoff(s.retryBase, s.retries, s.retryMax)
	s.retries++
	s.stopRetryTimer()
	s.wg.Add(1)
	s.retryTimer = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		s.trigger("retry")
	})
	s.log.WithFields(logrus.Fields{
		"delay":   delay,
		"attempt": s.retries,
	}).Info("location work retry scheduled")
}

// stopRetryTimer disarms a pending retry. Callers hold s.mu.
func (s *Scheduler) stopRetryTimer() {
	if s.retryTimer == nil {
		return
	}
	if s.retryTimer.Stop() {
		s.wg.Done()
	}
	s.retryTimer = nil
}

// resetRetries drops any pending rerun. After Success or Failure the next
// run is the periodic one.
func (s *Scheduler) resetRetries() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retries = 0
	s.stopRetryTimer()
}
