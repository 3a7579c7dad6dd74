// Package connectivity keeps the backend informed about whether this device
// is online and can be counted as reachable.
package connectivity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"smallbasket/internal/config"
	"smallbasket/internal/domain/entities"
	"smallbasket/internal/logging"
	"smallbasket/internal/metrics"
)

// ErrInvalidDevice is returned when the device id cannot be reported.
var ErrInvalidDevice = errors.New("invalid device id")

// Reporter sends a connectivity update to the backend.
type Reporter interface {
	UpdateConnectivity(ctx context.Context, req *entities.ConnectivityUpdateRequest) (*entities.SuccessResponse, error)
}

// EventKind names a network transition.
type EventKind string

const (
	EventAvailable EventKind = "available"
	EventLost      EventKind = "lost"
	EventValidated EventKind = "validated"
)

// Event is published to subscribers on every network transition.
type Event struct {
	Kind      EventKind `json:"kind"`
	Connected bool      `json:"connected"`
	At        time.Time `json:"at"`
}

// Ack is what the backend said about the last report.
type Ack struct {
	IsReachable   bool      `json:"is_reachable"`
	IsConnected   bool      `json:"is_connected"`
	DeviceTracked bool      `json:"device_tracked"`
	ReceivedAt    time.Time `json:"received_at"`
}

// Status is a snapshot for the control API.
type Status struct {
	Monitoring            bool      `json:"monitoring"`
	DeviceID              string    `json:"device_id"`
	LastUpdate            time.Time `json:"last_update"`
	LastReportedConnected *bool     `json:"last_reported_connected,omitempty"`
	LastAck               *Ack      `json:"last_ack,omitempty"`
}

// Options carries the manager's collaborators.
type Options struct {
	Reporter           Reporter
	Probe              Probe
	Device             Device
	Config             config.ConnectivityConfig
	LocationPermission bool
	Metrics            *metrics.Metrics
	Logger             logrus.FieldLogger
}

// Manager reports connectivity periodically and on network transitions.
//
// Go Learning Note — Goroutine Lifecycle:
// Start launches two goroutines (the periodic loop and the network watcher)
// under one cancelable context and a WaitGroup. Stop cancels the context and
// waits on the WaitGroup, so no goroutine outlives the manager.
type Manager struct {
	reporter   Reporter
	probe      Probe
	device     Device
	cfg        config.ConnectivityConfig
	permission bool
	metrics    *metrics.Metrics
	log        *logrus.Entry
	now        func() time.Time

	mu            sync.Mutex
	monitoring    bool
	cancel        context.CancelFunc
	lastAttempt   time.Time
	lastUpdate    time.Time
	lastConnected *bool
	lastAck       *Ack
	subscribers   []chan Event
	wg            sync.WaitGroup
}

var (
	instance     *Manager
	instanceOnce sync.Once
)

// Instance returns the process-wide manager, creating it from opts on the
// first call. Later calls ignore opts.
func Instance(opts Options) *Manager {
	instanceOnce.Do(func() {
		instance = New(opts)
	})
	return instance
}

// New creates a standalone manager.
func New(opts Options) *Manager {
	return &Manager{
		reporter:   opts.Reporter,
		probe:      opts.Probe,
		device:     opts.Device,
		cfg:        opts.Config,
		permission: opts.LocationPermission,
		metrics:    opts.Metrics,
		log:        logging.Component(opts.Logger, "connectivity"),
		now:        time.Now,
	}
}

// Start begins monitoring. It is a no-op when already monitoring.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.monitoring {
		m.mu.Unlock()
		m.log.Debug("already monitoring")
		return
	}
	m.monitoring = true
	m.lastAttempt = m.now()
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	m.log.WithField("device_id", m.device.ID).Info("starting connectivity monitoring")

	m.wg.Add(3)
	go m.watch(ctx)
	go m.loop(ctx)
	go func() {
		defer m.wg.Done()
		_ = m.Update(ctx)
	}()
}

// Stop ends monitoring and tells the backend this device went offline. It
// is a no-op when not monitoring.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.monitoring {
		m.mu.Unlock()
		return
	}
	m.monitoring = false
	cancel := m.cancel
	m.mu.Unlock()

	m.log.Info("stopping connectivity monitoring")
	cancel()
	m.wg.Wait()

	ctx, done := context.WithTimeout(context.Background(), m.stopTimeout())
	defer done()
	if err := m.reportOffline(ctx); err != nil {
		m.log.WithError(err).Error("failed to report offline status")
	} else {
		m.log.Debug("reported offline before stopping")
	}

	m.mu.Lock()
	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil
	m.mu.Unlock()
}

// ForceUpdate reports the current status right away.
func (m *Manager) ForceUpdate(ctx context.Context) error {
	m.log.Debug("forcing connectivity update")
	return m.Update(ctx)
}

// Subscribe returns a channel of network transitions. Slow readers miss
// events rather than block the watcher. The channel is closed by Stop.
func (m *Manager) Subscribe() <-chan Event {
	ch := make(chan Event, 8)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

// Status returns a snapshot of the manager's state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{
		Monitoring: m.monitoring,
		DeviceID:   m.device.ID,
		LastUpdate: m.lastUpdate,
	}
	if m.lastConnected != nil {
		c := *m.lastConnected
		st.LastReportedConnected = &c
	}
	if m.lastAck != nil {
		a := *m.lastAck
		st.LastAck = &a
	}
	return st
}

// Update probes the network and reports the result.
func (m *Manager) Update(ctx context.Context) error {
	st, err := m.probe.Check(ctx)
	if err != nil {
		m.log.WithError(err).Warn("network probe failed")
	}
	connected := st.Connected()

	entry := m.log.WithFields(logrus.Fields{
		"connected":           connected,
		"location_permission": m.permission,
		"device_id":           m.device.ID,
		"reachable":           connected && m.permission,
	})
	entry.Debug("updating connectivity status")

	if !m.device.Valid() {
		entry.Error("invalid device id, cannot update connectivity")
		return ErrInvalidDevice
	}

	info := m.device.Info
	resp, err := m.reporter.UpdateConnectivity(ctx, &entities.ConnectivityUpdateRequest{
		IsConnected:               connected,
		LocationPermissionGranted: m.permission,
		DeviceID:                  m.device.ID,
		DeviceInfo:                &info,
	})
	m.metrics.ConnectivityReport(connected, err)
	if err != nil {
		entry.WithError(err).Error("failed to update connectivity")
		return err
	}

	ack := parseAck(resp, m.now())
	m.mu.Lock()
	m.lastUpdate = m.now()
	m.lastConnected = &connected
	m.lastAck = ack
	m.mu.Unlock()

	if ack != nil {
		entry = entry.WithFields(logrus.Fields{
			"is_reachable":   ack.IsReachable,
			"device_tracked": ack.DeviceTracked,
		})
	}
	entry.Info("connectivity updated on backend")
	return nil
}

func (m *Manager) reportOffline(ctx context.Context) error {
	if !m.device.Valid() {
		return ErrInvalidDevice
	}
	_, err := m.reporter.UpdateConnectivity(ctx, &entities.ConnectivityUpdateRequest{
		IsConnected:               false,
		LocationPermissionGranted: false,
		DeviceID:                  m.device.ID,
	})
	m.metrics.ConnectivityReport(false, err)
	return err
}

// loop re-reports on a fixed tick, more often while offline.
func (m *Manager) loop(ctx context.Context) {
	defer m.wg.Done()
	for {
		wait := m.cfg.Tick
		if err := m.tick(ctx); err != nil {
			m.log.WithError(err).Error("periodic connectivity check failed")
			wait = m.cfg.ErrorBackoff
		}
		if sleep(ctx, wait) != nil {
			return
		}
	}
}

func (m *Manager) tick(ctx context.Context) error {
	st, err := m.probe.Check(ctx)
	if err != nil {
		return err
	}
	interval := m.cfg.OfflineInterval
	if st.Connected() {
		interval = m.cfg.OnlineInterval
	}

	now := m.now()
	m.mu.Lock()
	due := now.Sub(m.lastAttempt) >= interval
	if due {
		m.lastAttempt = now
	}
	m.mu.Unlock()

	if due {
		_ = m.Update(ctx)
	}
	return nil
}

// watch polls the probe and reacts to transitions.
func (m *Manager) watch(ctx context.Context) {
	defer m.wg.Done()

	prev, _ := m.probe.Check(ctx)
	for {
		if sleep(ctx, m.cfg.WatchInterval) != nil {
			return
		}
		cur, err := m.probe.Check(ctx)
		if err != nil {
			m.log.WithError(err).Debug("watcher probe failed")
			continue
		}

		switch {
		case !prev.Internet && cur.Internet:
			m.log.Info("network available")
			m.publish(Event{Kind: EventAvailable, Connected: true, At: m.now()})
			m.updateAfter(ctx, m.cfg.AvailableDelay)
		case prev.Internet && !cur.Internet:
			m.log.Info("network lost")
			m.publish(Event{Kind: EventLost, Connected: false, At: m.now()})
			m.updateAfter(ctx, 0)
		case cur.Connected() && !prev.Validated && !m.reportedConnected():
			m.log.Info("network validated after being offline")
			m.publish(Event{Kind: EventValidated, Connected: true, At: m.now()})
			m.updateAfter(ctx, m.cfg.ValidatedDelay)
		}
		prev = cur
	}
}

func (m *Manager) updateAfter(ctx context.Context, delay time.Duration) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if sleep(ctx, delay) != nil {
			return
		}
		_ = m.Update(ctx)
	}()
}

func (m *Manager) reportedConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastConnected != nil && *m.lastConnected
}

func (m *Manager) publish(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (m *Manager) stopTimeout() time.Duration {
	if m.cfg.StopTimeout > 0 {
		return m.cfg.StopTimeout
	}
	return 5 * time.Second
}

// parseAck reads the acknowledgement fields the backend returns in data.
func parseAck(resp *entities.SuccessResponse, at time.Time) *Ack {
	if resp == nil || len(resp.Data) == 0 || !gjson.ValidBytes(resp.Data) {
		return nil
	}
	data := gjson.ParseBytes(resp.Data)
	return &Ack{
		IsReachable:   data.Get("is_reachable").Bool(),
		IsConnected:   data.Get("is_connected").Bool(),
		DeviceTracked: data.Get("device_tracked").Bool(),
		ReceivedAt:    at,
	}
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
