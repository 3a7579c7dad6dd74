package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveAPI("GET", "user/stats", 200, 20*time.Millisecond)
	m.ObserveAPI("GET", "user/stats", 0, time.Second)
	m.ConnectivityReport(true, nil)
	m.ConnectivityReport(false, errors.New("boom"))
	m.LocationSyncAttempt(nil)
	m.WorkerResult("success")
	m.NotificationReceived("new_request")
	m.RateLimited("reachable_count")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "user/stats", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "user/stats", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectivityReports.WithLabelValues("false", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.workerResults.WithLabelValues("success")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", 200, time.Millisecond)
	m.ConnectivityReport(true, nil)
	m.WorkerResult("retry")
	assert.NotNil(t, m.Handler())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.WorkerResult("failure")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "smallbasket_location_worker_results_total"))
}
