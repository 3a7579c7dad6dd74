package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"smallbasket/internal/api/handlers"
	"smallbasket/internal/auth"
	"smallbasket/internal/client"
	"smallbasket/internal/config"
	"smallbasket/internal/connectivity"
	"smallbasket/internal/domain/entities"
	"smallbasket/internal/location"
	"smallbasket/internal/logging"
	"smallbasket/internal/metrics"
	"smallbasket/internal/repository/memory"
	"smallbasket/internal/services"
	"smallbasket/internal/worker"
)

type testServer struct {
	engine      *gin.Engine
	backendHits *int32
}

func setupTestServer(t *testing.T, controlToken string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var hits int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/user/connectivity/update":
			_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"is_reachable":true,"device_tracked":true}}`))
		case "/location/update-gps":
			_, _ = w.Write([]byte(`{"success":true,"fast_mode":true,"data":{"primary_area":"North"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backend.Close)

	cfg := config.NewDefaultConfig()
	cfg.Location.InitDelay = 0
	cfg.Location.Latitude = 12.97
	cfg.Location.Longitude = 77.59

	m := metrics.New()
	logger := logging.Discard()
	tokens := auth.StaticToken("user-token")

	api, err := client.New(client.Config{BaseURL: backend.URL, Timeout: time.Second}, tokens, client.WithMetrics(m))
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}

	notificationRepo := memory.NewNotificationRepository()
	locationRepo := memory.NewLocationRepository(true)
	lockManager := memory.NewLockManager()
	t.Cleanup(lockManager.Stop)

	orderService := services.NewOrderService(api, logger)
	mapService := services.NewMapService(api, cfg.Map, m, logger)
	locationService := services.NewLocationService(mapService, locationRepo, logger)
	notificationService := services.NewNotificationService(notificationRepo, notificationRepo, orderService, tokens, cfg.Notifications.MaxItems, m, logger)

	provider, err := location.NewProvider(cfg.Location)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	locationWorker := worker.NewLocationWorker(tokens, provider, locationService, cfg.Location, m, logger)
	scheduler := worker.NewScheduler(locationWorker, lockManager, cfg.Location, logger)

	manager := connectivity.New(connectivity.Options{
		Reporter:           orderService,
		Probe:              staticProbe{connectivity.State{Internet: true, Validated: true}},
		Device:             connectivity.Device{ID: "dev-1"},
		Config:             cfg.Connectivity,
		LocationPermission: true,
		Metrics:            m,
		Logger:             logger,
	})

	router := NewRouter(
		handlers.NewStatusHandler(manager),
		handlers.NewLocationHandler(locationService, scheduler),
		handlers.NewNotificationHandler(notificationService),
		m.Handler(),
		controlToken,
		logger,
	)
	engine := gin.New()
	router.Setup(engine)

	return &testServer{engine: engine, backendHits: &hits}
}

type staticProbe struct{ st connectivity.State }

func (p staticProbe) Check(ctx context.Context) (connectivity.State, error) { return p.st, nil }

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	s := setupTestServer(t, "secret")

	w := s.do("GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestControlTokenRequired(t *testing.T) {
	s := setupTestServer(t, "secret")

	if w := s.do("GET", "/status", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
	if w := s.do("GET", "/status", "", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong token, got %d", w.Code)
	}
	if w := s.do("GET", "/status", "", "secret"); w.Code != http.StatusOK {
		t.Errorf("Expected 200 with token, got %d. Body: %s", w.Code, w.Body.String())
	}
}

func TestOpenWithoutControlToken(t *testing.T) {
	s := setupTestServer(t, "")

	if w := s.do("GET", "/status", "", ""); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestStatusRefreshEndpoint(t *testing.T) {
	s := setupTestServer(t, "")

	w := s.do("POST", "/status/refresh", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	resp := decode(t, w)
	if resp["last_reported_connected"] != true {
		t.Errorf("Expected last_reported_connected true, got %v", resp["last_reported_connected"])
	}
	ack, _ := resp["last_ack"].(map[string]interface{})
	if ack == nil || ack["is_reachable"] != true {
		t.Errorf("Expected is_reachable ack, got %v", resp["last_ack"])
	}
}

func TestLocationSyncEndpoint(t *testing.T) {
	s := setupTestServer(t, "")

	w := s.do("POST", "/location/sync", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if resp := decode(t, w); resp["result"] != "success" {
		t.Errorf("Expected result success, got %v", resp["result"])
	}

	resp := decode(t, s.do("GET", "/location", "", ""))
	if resp["last_fix"] == nil {
		t.Error("Expected last_fix after sync")
	}
	if resp["last_run"] == nil {
		t.Error("Expected last_run after sync")
	}
}

func TestLocationTrackingEndpoint(t *testing.T) {
	s := setupTestServer(t, "")

	if w := s.do("PUT", "/location/tracking", `{}`, ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing enabled, got %d", w.Code)
	}
	if w := s.do("PUT", "/location/tracking", `{"enabled":false}`, ""); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	before := atomic.LoadInt32(s.backendHits)
	resp := decode(t, s.do("POST", "/location/sync", "", ""))
	if resp["result"] != "success" {
		t.Errorf("Expected skipped run to succeed, got %v", resp["result"])
	}
	if atomic.LoadInt32(s.backendHits) != before {
		t.Error("Expected no backend call with tracking disabled")
	}
}

func TestNotificationEndpoints(t *testing.T) {
	s := setupTestServer(t, "")

	push := `{"data":{"type":"new_request","title":"New delivery","request_id":"r-1"}}`
	w := s.do("POST", "/notifications", push, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["channel"] != entities.ChannelNewRequests {
		t.Errorf("Expected channel %s, got %v", entities.ChannelNewRequests, resp["channel"])
	}
	saved := resp["notification"].(map[string]interface{})
	id := saved["id"].(string)

	if w := s.do("POST", "/notifications", `not json`, ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad payload, got %d", w.Code)
	}

	if resp := decode(t, s.do("GET", "/notifications/unread-count", "", "")); resp["unread"] != float64(1) {
		t.Errorf("Expected 1 unread, got %v", resp["unread"])
	}

	if w := s.do("PATCH", "/notifications/"+id+"/read", "", ""); w.Code != http.StatusOK {
		t.Errorf("Expected 200 marking read, got %d", w.Code)
	}
	if resp := decode(t, s.do("GET", "/notifications/unread-count", "", "")); resp["unread"] != float64(0) {
		t.Errorf("Expected 0 unread, got %v", resp["unread"])
	}

	if w := s.do("PATCH", "/notifications/missing/read", "", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown id, got %d", w.Code)
	}

	if w := s.do("PATCH", "/notifications/read-all", "", ""); w.Code != http.StatusOK {
		t.Errorf("Expected 200 for read-all, got %d", w.Code)
	}

	if w := s.do("DELETE", "/notifications/"+id, "", ""); w.Code != http.StatusOK {
		t.Errorf("Expected 200 deleting, got %d", w.Code)
	}
	resp = decode(t, s.do("GET", "/notifications", "", ""))
	if resp["total"] != float64(0) {
		t.Errorf("Expected empty history, got %v", resp["total"])
	}

	if w := s.do("DELETE", "/notifications", "", ""); w.Code != http.StatusOK {
		t.Errorf("Expected 200 clearing, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestServer(t, "secret")
	s.do("POST", "/status/refresh", "", "secret")

	w := s.do("GET", "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("smallbasket_connectivity_reports_total")) {
		t.Error("Expected connectivity report counter in metrics output")
	}
}
