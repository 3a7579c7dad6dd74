package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"smallbasket/internal/client"
	"smallbasket/internal/domain/entities"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", &client.APIError{StatusCode: http.StatusUnauthorized}, MsgUnauthorized},
		{"forbidden", &client.APIError{StatusCode: http.StatusForbidden}, MsgForbidden},
		{"too many requests", &client.APIError{StatusCode: http.StatusTooManyRequests}, MsgRateLimited},
		{"server error", &client.APIError{StatusCode: 500, Body: "boom"}, "Server error. Please try again later.\nDetails: boom"},
		{"server error empty body", &client.APIError{StatusCode: 500}, "Server error. Please try again later.\nDetails: Unknown error"},
		{"other status", &client.APIError{StatusCode: 404, Body: "missing"}, "Error 404: missing"},
		{"other status empty body", &client.APIError{StatusCode: 418}, "Error 418: Unknown error"},
		{"network", &client.NetworkError{Method: "GET", Path: "user/stats", Err: errors.New("connection refused")}, "Network error: connection refused"},
		{"not authenticated", ErrNotAuthenticated, MsgNotAuthenticated},
		{"client throttle", ErrRateLimited, MsgRateLimited},
		{"wrapped api error", fmt.Errorf("load: %w", &client.APIError{StatusCode: 403}), MsgForbidden},
		{"anything else", errors.New("eof"), "Network error: eof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestShortMessage(t *testing.T) {
	assert.Equal(t, "Too many requests. Please wait.", ShortMessage(&client.APIError{StatusCode: 429}))
	assert.Equal(t, "Too many requests. Please wait.", ShortMessage(fail(ErrRateLimited)))
	assert.Equal(t, "Request timed out. Try again.", ShortMessage(&client.NetworkError{Err: context.DeadlineExceeded}))
	assert.Equal(t, "Network error. Check connection.", ShortMessage(&client.NetworkError{Err: errors.New("refused")}))
	assert.Equal(t, "Failed to load count", ShortMessage(&client.APIError{StatusCode: 404}))
	assert.Empty(t, ShortMessage(nil))
}

func TestFail(t *testing.T) {
	assert.Nil(t, fail(nil))

	cause := &client.APIError{StatusCode: 401}
	err := fail(cause)
	var f *Failure
	assert.True(t, errors.As(err, &f))
	assert.Same(t, cause, errors.Unwrap(err))

	// Already classified errors pass through untouched.
	assert.Same(t, f, fail(fmt.Errorf("again: %w", err)))
}

func TestToDeliveryRequest(t *testing.T) {
	o := &entities.Order{
		ID:           "r-1",
		Items:        []string{"milk", "bread"},
		PickupLoc:    "Gate 2",
		PickupArea:   "North",
		DropArea:     "South",
		Reward:       25.9,
		Deadline:     "30m",
		PriorityFlag: true,
		PosterName:   "Asha",
	}

	got := ToDeliveryRequest(o)
	assert.Equal(t, "r-1", got.OrderID)
	assert.Equal(t, "milk, bread", got.Title)
	assert.Equal(t, "Gate 2, North", got.Pickup)
	assert.Equal(t, "South", got.Dropoff)
	assert.Equal(t, "₹25", got.Fee)
	assert.Equal(t, "30 min", got.Time)
	assert.True(t, got.Priority)
	assert.Equal(t, 25, got.RewardPercentage)
	assert.Equal(t, "Asha", got.RequesterName)

	assert.Len(t, ToDeliveryRequests([]*entities.Order{o, o}), 2)
	assert.Empty(t, ToDeliveryRequests(nil))
}
