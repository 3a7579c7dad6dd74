package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smallbasket/internal/auth"
	"smallbasket/internal/client"
	"smallbasket/internal/config"
	"smallbasket/internal/domain/entities"
	"smallbasket/internal/logging"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc, token string) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api, err := client.New(client.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, auth.StaticToken(token))
	require.NoError(t, err)
	return api
}

func newTestMapService(api *client.Client, every time.Duration, burst int) *MapService {
	return NewMapService(api, config.MapConfig{
		NearbyRadiusMeters: 5000,
		ReachableEvery:     every,
		ReachableBurst:     burst,
	}, nil, logging.Discard())
}

func TestOrderService_ListOrdersTranslatesStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"pending", "open"},
		{"delivered", "completed"},
		{"picked_up", "completed"},
		{"accepted", "accepted"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			var got string
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Query().Get("status")
				_, _ = w.Write([]byte(`[]`))
			}, "tok")

			_, err := NewOrderService(api, logging.Discard()).ListOrders(context.Background(), tt.status, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	var body entities.UpdateOrderStatusRequest
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/request/update-status", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"request_id":"r-9","status":"completed"}`))
	}, "tok")

	order, err := NewOrderService(api, logging.Discard()).UpdateOrderStatus(context.Background(), "r-9", "delivered")
	require.NoError(t, err)
	assert.Equal(t, "completed", body.Status)
	assert.Equal(t, "r-9", body.RequestID)
	assert.Equal(t, "r-9", order.ID)
}

func TestOrderService_MyOrdersRequiresSession(t *testing.T) {
	called := false
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, _ = w.Write([]byte(`[]`))
	}, "")

	_, err := NewOrderService(api, logging.Discard()).MyOrders(context.Background())
	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, MsgNotAuthenticated, err.Error())
	assert.True(t, errors.Is(err, ErrNotAuthenticated))

	_, err = NewOrderService(api, logging.Discard()).AcceptedOrders(context.Background())
	assert.Equal(t, MsgNotAuthenticated, err.Error())
}

func TestOrderService_ServerErrorMessage(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("db down"))
	}, "tok")

	_, err := NewOrderService(api, logging.Discard()).UserStats(context.Background())
	require.Error(t, err)

	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, "Server error. Please try again later.\nDetails: db down", f.Message)
	assert.Equal(t, http.StatusInternalServerError, client.StatusCode(err))
}

func TestOrderService_ValidatesLocally(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call to %s", r.URL.Path)
	}, "tok")
	svc := NewOrderService(api, logging.Discard())
	ctx := context.Background()

	_, err := svc.CreateRating(ctx, "r-1", 6, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRating))
	assert.Equal(t, "Rating must be between 1 and 5", UserMessage(err))

	_, err = svc.UpdateRating(ctx, "rt-1", 0, "")
	assert.True(t, errors.Is(err, ErrInvalidRating))

	_, err = svc.AcceptOrder(ctx, "  ")
	assert.True(t, errors.Is(err, ErrMissingRequestID))
	assert.Equal(t, "Request id is required", err.Error())
}

func TestOrderService_CreateRating(t *testing.T) {
	var body entities.CreateRatingRequest
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rating/create", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"rating_id":"rt-1","rating":5}`))
	}, "tok")

	rating, err := NewOrderService(api, logging.Discard()).CreateRating(context.Background(), "r-1", 5, "quick")
	require.NoError(t, err)
	assert.Equal(t, "r-1", body.RequestID)
	assert.Equal(t, "quick", body.Comment)
	assert.Equal(t, 5, rating.Rating)
}

func TestOrderService_AvailableAreas(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"areas":["North","South"],"total":2}`))
	}, "tok")

	areas, err := NewOrderService(api, logging.Discard()).AvailableAreas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, areas)
}
