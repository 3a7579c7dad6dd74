// Package agent wires configuration, stores, services and background
// workers into one runnable unit.
//
// Go Learning Note — Composition Root:
// All constructors are called here and nowhere else. Every other package
// receives its collaborators as arguments, which is what keeps them testable
// with fakes and httptest servers.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"smallbasket/internal/api"
	"smallbasket/internal/api/handlers"
	"smallbasket/internal/auth"
	"smallbasket/internal/client"
	"smallbasket/internal/config"
	"smallbasket/internal/connectivity"
	"smallbasket/internal/location"
	"smallbasket/internal/metrics"
	"smallbasket/internal/repository"
	"smallbasket/internal/repository/file"
	"smallbasket/internal/repository/memory"
	"smallbasket/internal/repository/redisstore"
	"smallbasket/internal/services"
	"smallbasket/internal/worker"
)

const shutdownTimeout = 5 * time.Second

// Agent holds the wired components. Commands that only talk to the backend
// use the services; Run starts the background parts.
type Agent struct {
	Config  *config.Config
	Log     *logrus.Logger
	Metrics *metrics.Metrics
	Tokens  auth.TokenSource
	API     *client.Client

	Orders        *services.OrderService
	Maps          *services.MapService
	Locations     *services.LocationService
	Notifications *services.NotificationService

	Worker    *worker.LocationWorker
	Scheduler *worker.Scheduler

	locks   repository.LockManager
	closers []func() error
}

// New builds an Agent from cfg. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Agent, error) {
	a := &Agent{
		Config:  cfg,
		Log:     logger,
		Metrics: metrics.New(),
		Tokens:  auth.NewTokenSource(cfg.Auth),
	}

	apiClient, err := client.New(client.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
	}, a.Tokens, client.WithLogger(logger), client.WithMetrics(a.Metrics))
	if err != nil {
		return nil, err
	}
	a.API = apiClient

	stores, err := a.openStores(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	provider, err := location.NewProvider(cfg.Location)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Orders = services.NewOrderService(apiClient, logger)
	a.Maps = services.NewMapService(apiClient, cfg.Map, a.Metrics, logger)
	a.Locations = services.NewLocationService(a.Maps, stores.locations, logger)
	a.Notifications = services.NewNotificationService(
		stores.notifications,
		stores.tokens,
		a.Orders,
		a.Tokens,
		cfg.Notifications.MaxItems,
		a.Metrics,
		logger,
	)

	a.Worker = worker.NewLocationWorker(a.Tokens, provider, a.Locations, cfg.Location, a.Metrics, logger)
	a.Scheduler = worker.NewScheduler(a.Worker, a.locks, cfg.Location, logger)
	return a, nil
}

type stores struct {
	notifications repository.NotificationRepository
	tokens        repository.TokenRepository
	locations     repository.LocationRepository
}

// openStores picks the notification history backend. The location
// preference and last fix stay local unless everything is in memory.
func (a *Agent) openStores(ctx context.Context) (*stores, error) {
	cfg := a.Config
	if cfg.Notifications.Store == "memory" {
		notifications := memory.NewNotificationRepository()
		lm := memory.NewLockManager()
		a.locks = lm
		a.closers = append(a.closers, func() error { lm.Stop(); return nil })
		return &stores{
			notifications: notifications,
			tokens:        notifications,
			locations:     memory.NewLocationRepository(cfg.Location.TrackingEnabled),
		}, nil
	}

	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	fs, err := file.NewStore(dir, cfg.Location.TrackingEnabled)
	if err != nil {
		return nil, err
	}
	out := &stores{notifications: fs, tokens: fs, locations: fs}

	if cfg.Notifications.Store == "redis" {
		rs, err := redisstore.Dial(ctx, cfg.Notifications.RedisAddr, cfg.Notifications.RedisKey)
		if err != nil {
			return nil, fmt.Errorf("connect notification store: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		a.locks = rs
		out.notifications = rs
		out.tokens = rs
		a.Log.WithField("addr", cfg.Notifications.RedisAddr).Info("using redis notification store")
		return out, nil
	}

	lm := memory.NewLockManager()
	a.locks = lm
	a.closers = append(a.closers, func() error { lm.Stop(); return nil })
	a.Log.WithField("dir", dir).Debug("using file stores")
	return out, nil
}

// ConnectivityOptions builds the connectivity manager's collaborators from
// this agent: the order service reports, the system probe checks the
// backend health endpoint.
func (a *Agent) ConnectivityOptions(ctx context.Context) connectivity.Options {
	cfg := a.Config
	probe := connectivity.NewSystemProbe(func(ctx context.Context) error {
		_, err := a.API.Health(ctx)
		return err
	}, cfg.Connectivity.ProbeTimeout)

	return connectivity.Options{
		Reporter:           a.Orders,
		Probe:              probe,
		Device:             connectivity.DetectDevice(ctx, cfg.Device, a.Log),
		Config:             cfg.Connectivity,
		LocationPermission: cfg.Location.PermissionGranted,
		Metrics:            a.Metrics,
		Logger:             a.Log,
	}
}

// Run starts the control API immediately and the background work after
// the startup delay, then blocks until ctx is canceled. The caller owns
// manager: the process entrypoint passes connectivity.Instance, tests pass
// connectivity.New.
func (a *Agent) Run(ctx context.Context, manager *connectivity.Manager) error {
	cfg := a.Config
	log := a.Log.WithField("component", "agent")

	srv := a.controlServer(manager)
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("control API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return a.shutdown(srv, manager)
	case err := <-errCh:
		return fmt.Errorf("control API: %w", err)
	case <-time.After(cfg.Server.StartupDelay):
	}

	manager.Start(ctx)
	if err := a.Scheduler.Start(ctx); err != nil {
		log.WithError(err).Error("location work not scheduled")
	}
	if ok, err := a.Notifications.RegisterToken(ctx); err != nil && !errors.Is(err, services.ErrNoPushToken) {
		log.WithError(err).Warn("push token registration failed")
	} else if ok {
		log.Info("push token registered")
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		runErr = fmt.Errorf("control API: %w", err)
	}
	if err := a.shutdown(srv, manager); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (a *Agent) controlServer(manager *connectivity.Manager) *http.Server {
	if !a.Log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(
		handlers.NewStatusHandler(manager),
		handlers.NewLocationHandler(a.Locations, a.Scheduler),
		handlers.NewNotificationHandler(a.Notifications),
		a.Metrics.Handler(),
		a.Config.Server.ControlToken,
		a.Log.WithField("component", "control-api"),
	)
	engine := gin.New()
	engine.Use(gin.Recovery())
	router.Setup(engine)

	return &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      engine,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// shutdown stops the scheduler, reports offline, then closes the API.
func (a *Agent) shutdown(srv *http.Server, manager *connectivity.Manager) error {
	a.Scheduler.Stop()
	manager.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown control API: %w", err)
	}
	a.Log.Info("agent stopped")
	return nil
}

// Close releases stores and background helpers.
func (a *Agent) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
