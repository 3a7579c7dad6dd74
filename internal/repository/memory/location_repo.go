package memory

import (
	"context"
	"sync"

	"smallbasket/internal/domain/entities"
	"smallbasket/internal/repository"
)

// LocationRepository keeps the last known fix and the tracking preference in
// process memory.
type LocationRepository struct {
	mu       sync.RWMutex
	lastFix  *entities.Fix
	tracking bool
}

// NewLocationRepository starts with tracking set to trackingEnabled and no fix.
func NewLocationRepository(trackingEnabled bool) *LocationRepository {
	return &LocationRepository{tracking: trackingEnabled}
}

func (r *LocationRepository) SaveLastFix(ctx context.Context, fix entities.Fix) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastFix = &fix
	return nil
}

func (r *LocationRepository) GetLastFix(ctx context.Context) (entities.Fix, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.lastFix == nil {
		return entities.Fix{}, repository.ErrNotFound
	}
	return *r.lastFix, nil
}

func (r *LocationRepository) SetTrackingEnabled(ctx context.Context, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracking = enabled
	return nil
}

func (r *LocationRepository) TrackingEnabled(ctx context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.tracking, nil
}
