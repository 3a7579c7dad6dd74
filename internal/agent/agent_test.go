package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smallbasket/internal/config"
	"smallbasket/internal/connectivity"
	"smallbasket/internal/logging"
	"smallbasket/internal/worker"
)

func testConfig(t *testing.T, backendURL string) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.API.BaseURL = backendURL
	cfg.Auth.Token = "user-token"
	cfg.DataDir = t.TempDir()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.StartupDelay = time.Hour
	cfg.Location.InitDelay = 0
	cfg.Location.Latitude = 12.97
	cfg.Location.Longitude = 77.59
	return cfg
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/location/update-gps":
			_, _ = w.Write([]byte(`{"success":true,"fast_mode":true}`))
		default:
			_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewWiresFileStores(t *testing.T) {
	backend := newBackend(t)
	cfg := testConfig(t, backend.URL)

	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Notifications.SaveToken(context.Background(), "push-1"))

	// A second agent on the same data dir sees the persisted token.
	b, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer b.Close()

	token, err := b.Notifications.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "push-1", token)
}

func TestNewMemoryStoreRunsLocationWork(t *testing.T) {
	backend := newBackend(t)
	cfg := testConfig(t, backend.URL)
	cfg.Notifications.Store = "memory"

	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	result, err := a.Scheduler.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, worker.Success, result)

	_, ok, err := a.Locations.LastFix(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRejectsBadLocationSource(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Location.Source = "gps"

	_, err := New(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestNewRedisUnavailable(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Notifications.Store = "redis"
	cfg.Notifications.RedisAddr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, cfg, logging.Discard())
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	backend := newBackend(t)
	cfg := testConfig(t, backend.URL)
	cfg.Notifications.Store = "memory"

	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	manager := connectivity.New(a.ConnectivityOptions(ctx))
	go func() { done <- a.Run(ctx, manager) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunUsesGivenManager(t *testing.T) {
	backend := newBackend(t)

	run := func(deviceID string) {
		cfg := testConfig(t, backend.URL)
		cfg.Notifications.Store = "memory"
		cfg.Device.ID = deviceID

		a, err := New(context.Background(), cfg, logging.Discard())
		require.NoError(t, err)
		defer a.Close()

		manager := connectivity.New(a.ConnectivityOptions(context.Background()))
		assert.Equal(t, deviceID, manager.Status().DeviceID)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, a.Run(ctx, manager))
	}

	// Each agent in one process keeps its own collaborators.
	run("device-a")
	run("device-b")
}
