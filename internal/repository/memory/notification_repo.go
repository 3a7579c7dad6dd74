package memory

import (
	"context"
	"sync"

	"smallbasket/internal/domain/entities"
)

// NotificationRepository is an in-memory notification history plus push
// token. It implements both repository.NotificationRepository and
// repository.TokenRepository.
//
// Go Learning Note — Copy on the Way Out:
// List returns copies of the stored records. Handing out the internal
// pointers would let callers mutate history without holding the lock.
type NotificationRepository struct {
	mu    sync.RWMutex
	items []*entities.SavedNotification
	token string
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Add(ctx context.Context, n *entities.SavedNotification, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *n
	items := make([]*entities.SavedNotification, 0, len(r.items)+1)
	items = append(items, &cp)
	items = append(items, r.items...)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	r.items = items
	return nil
}

func (r *NotificationRepository) List(ctx context.Context) ([]*entities.SavedNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return copyNotifications(r.items), nil
}

func (r *NotificationRepository) Replace(ctx context.Context, items []*entities.SavedNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = copyNotifications(items)
	return nil
}

func (r *NotificationRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = nil
	return nil
}

func (r *NotificationRepository) SaveToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.token = token
	return nil
}

func (r *NotificationRepository) GetToken(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.token, nil
}

func (r *NotificationRepository) DeleteToken(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.token = ""
	return nil
}

func copyNotifications(in []*entities.SavedNotification) []*entities.SavedNotification {
	out := make([]*entities.SavedNotification, 0, len(in))
	for _, n := range in {
		cp := *n
		out = append(out, &cp)
	}
	return out
}
