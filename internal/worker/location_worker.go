// Package worker runs the background location sync.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"smallbasket/internal/auth"
	"smallbasket/internal/config"
	"smallbasket/internal/domain/entities"
	"smallbasket/internal/location"
	"smallbasket/internal/logging"
	"smallbasket/internal/metrics"
	"smallbasket/internal/services"
)

// Result is the outcome of one run, as a job scheduler sees it.
//
// Go Learning Note — Enums with iota:
// Go has no enum keyword. A named integer type plus iota constants and a
// String method gives the same safety at call sites and readable logs.
type Result int

const (
	Success Result = iota
	Retry
	Failure
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Retry:
		return "retry"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Runner is a unit of work the Scheduler can run.
type Runner interface {
	DoWork(ctx context.Context) Result
}

// LocationWorker obtains the device's position and pushes it to the backend.
type LocationWorker struct {
	tokens   auth.TokenSource
	provider location.Provider
	store    *services.LocationService
	cfg      config.LocationConfig
	metrics  *metrics.Metrics
	log      *logrus.Entry
	now      func() time.Time
}

func NewLocationWorker(
	tokens auth.TokenSource,
	provider location.Provider,
	store *services.LocationService,
	cfg config.LocationConfig,
	m *metrics.Metrics,
	logger logrus.FieldLogger,
) *LocationWorker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &LocationWorker{
		tokens:   tokens,
		provider: provider,
		store:    store,
		cfg:      cfg,
		metrics:  m,
		log:      logging.Component(logger, "location-worker"),
		now:      time.Now,
	}
}

// DoWork runs one sync. Every exit path maps to a Result; nothing here is
// fatal to the caller.
func (w *LocationWorker) DoWork(ctx context.Context) Result {
	res := w.doWork(ctx)
	w.metrics.WorkerResult(res.String())
	w.log.WithField("result", res).Info("location work finished")
	return res
}

func (w *LocationWorker) doWork(ctx context.Context) Result {
	if err := sleep(ctx, w.cfg.InitDelay); err != nil {
		return Retry
	}

	session, err := auth.CurrentSession(ctx, w.tokens, w.now())
	switch {
	case errors.Is(err, auth.ErrNoToken):
		w.log.Debug("no user signed in, skipping location sync")
		return Success
	case errors.Is(err, auth.ErrTokenExpired):
		w.log.Warn("token expired, skipping location sync")
		return Success
	case err != nil:
		w.log.WithError(err).Warn("token unavailable")
		return Retry
	}
	log := w.log.WithField("uid", session.UID)

	enabled, err := w.store.TrackingEnabled(ctx)
	if err != nil {
		log.WithError(err).Warn("could not read tracking preference")
		return Retry
	}
	if !enabled {
		log.Debug("location tracking disabled")
		return Success
	}

	if !w.cfg.PermissionGranted {
		log.Error("location permission not granted")
		return Failure
	}

	if !w.provider.Enabled(ctx) {
		log.Warn("location services disabled")
		return Retry
	}

	fix, err := w.obtainFix(ctx)
	if err != nil {
		log.WithError(err).Warn("no location fix")
		return Retry
	}

	if err := w.store.SaveFix(ctx, fix); err != nil {
		log.WithError(err).Debug("ignoring local save failure")
	}

	if err := w.syncWithRetry(ctx, fix); err != nil {
		log.WithError(err).Error("location sync failed after retries")
		return Retry
	}
	return Success
}

// obtainFix prefers a recent cached fix over asking the provider.
func (w *LocationWorker) obtainFix(ctx context.Context) (entities.Fix, error) {
	if cached, ok, err := w.store.LastFix(ctx); err == nil && ok && cached.Age(w.now()) < w.cfg.CacheMaxAge {
		w.log.WithField("age", cached.Age(w.now())).Debug("using cached fix")
		return cached, nil
	}

	fixCtx := ctx
	if w.cfg.FixTimeout > 0 {
		var cancel context.CancelFunc
		fixCtx, cancel = context.WithTimeout(ctx, w.cfg.FixTimeout)
		defer cancel()
	}
	return w.provider.CurrentFix(fixCtx)
}

// syncWithRetry makes up to MaxAttempts calls, waiting BaseBackoff·2^(n-1)
// between attempt n and n+1.
func (w *LocationWorker) syncWithRetry(ctx context.Context, fix entities.Fix) error {
	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		_, err := w.store.Sync(ctx, fix)
		w.metrics.LocationSyncAttempt(err)
		if err == nil {
			w.log.WithField("attempt", attempt).Info("location synced")
			return nil
		}
		lastErr = err
		w.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"error":   services.UserMessage(err),
		}).Warn("location sync attempt failed")

		if attempt < w.cfg.MaxAttempts {
			if err := sleep(ctx, backoff(w.cfg.BaseBackoff, attempt-1, 0)); err != nil {
				return err
			}
		}
	}
	return lastErr
}

// backoff returns base·2^n, capped at max when max > 0.
func backoff(base time.Duration, n int, max time.Duration) time.Duration {
	d := base
	for i := 0; i < n; i++ {
		d *= 2
		if max > 0 && d >= max {
			return max
		}
	}
	if max > 0 && d > max {
		return max
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
