package repository

import (
	"context"
	"errors"
	"time"

	"smallbasket/internal/domain/entities"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("not found")

// NotificationRepository stores the local notification history, newest first.
type NotificationRepository interface {
	// Add prepends n and trims the history to at most limit entries.
	Add(ctx context.Context, n *entities.SavedNotification, limit int) error
	List(ctx context.Context) ([]*entities.SavedNotification, error)
	// Replace overwrites the whole history, keeping the given order.
	Replace(ctx context.Context, items []*entities.SavedNotification) error
	Clear(ctx context.Context) error
}

// TokenRepository keeps the device's push token.
type TokenRepository interface {
	SaveToken(ctx context.Context, token string) error
	// GetToken returns "" when no token is stored.
	GetToken(ctx context.Context) (string, error)
	DeleteToken(ctx context.Context) error
}

// LocationRepository keeps the last known fix and the tracking preference.
type LocationRepository interface {
	SaveLastFix(ctx context.Context, fix entities.Fix) error
	// GetLastFix returns ErrNotFound when nothing was saved yet.
	GetLastFix(ctx context.Context) (entities.Fix, error)
	SetTrackingEnabled(ctx context.Context, enabled bool) error
	TrackingEnabled(ctx context.Context) (bool, error)
}

// LockManager provides named locks with a TTL.
type LockManager interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
	IsLocked(ctx context.Context, key string) (bool, error)
}
