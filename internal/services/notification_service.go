package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"smallbasket/internal/auth"
	"smallbasket/internal/domain/entities"
	"smallbasket/internal/logging"
	"smallbasket/internal/metrics"
	"smallbasket/internal/repository"
	"smallbasket/pkg/utils"
)

// DefaultMaxNotifications caps the local history.
const DefaultMaxNotifications = 100

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoPushToken          = errors.New("no push token saved")
)

// NotificationService keeps the local notification history and the push
// token registration in step with the backend.
type NotificationService struct {
	history  repository.NotificationRepository
	tokens   repository.TokenRepository
	orders   *OrderService
	session  auth.TokenSource
	metrics  *metrics.Metrics
	log      *logrus.Entry
	maxItems int
	now      func() time.Time
}

func NewNotificationService(
	history repository.NotificationRepository,
	tokens repository.TokenRepository,
	orders *OrderService,
	session auth.TokenSource,
	maxItems int,
	m *metrics.Metrics,
	logger logrus.FieldLogger,
) *NotificationService {
	if maxItems <= 0 {
		maxItems = DefaultMaxNotifications
	}
	return &NotificationService{
		history:  history,
		tokens:   tokens,
		orders:   orders,
		session:  session,
		metrics:  m,
		log:      logging.Component(logger, "notifications"),
		maxItems: maxItems,
		now:      time.Now,
	}
}

// Save records a received push as an unread history entry.
func (s *NotificationService) Save(ctx context.Context, msg *entities.PushMessage) (*entities.SavedNotification, error) {
	n := &entities.SavedNotification{
		ID:        utils.GenerateID(),
		Type:      msg.Type,
		Title:     msg.Title,
		Body:      msg.Body,
		OrderID:   msg.OrderID,
		Timestamp: s.now(),
		IsRead:    false,
		Priority:  msg.Priority,
	}
	if err := s.history.Add(ctx, n, s.maxItems); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"type":     n.Type,
		"order_id": n.OrderID,
	}).Info("notification saved")
	return n, nil
}

// HandlePush parses a raw push payload, stores it and returns both the
// parsed message and the stored entry.
func (s *NotificationService) HandlePush(ctx context.Context, raw []byte) (*entities.PushMessage, *entities.SavedNotification, error) {
	msg, err := ParsePush(raw)
	if err != nil {
		return nil, nil, err
	}
	s.metrics.NotificationReceived(msg.Type)
	saved, err := s.Save(ctx, msg)
	if err != nil {
		return msg, nil, err
	}
	s.log.WithFields(logrus.Fields{
		"channel":  msg.Channel(),
		"priority": msg.Priority,
	}).Debug("push routed")
	return msg, saved, nil
}

// List returns the history, newest first.
func (s *NotificationService) List(ctx context.Context) ([]*entities.SavedNotification, error) {
	return s.history.List(ctx)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.update(ctx, func(items []*entities.SavedNotification) ([]*entities.SavedNotification, error) {
		for _, n := range items {
			if n.ID == id {
				n.IsRead = true
				return items, nil
			}
		}
		return nil, ErrNotificationNotFound
	})
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return s.update(ctx, func(items []*entities.SavedNotification) ([]*entities.SavedNotification, error) {
		for _, n := range items {
			n.IsRead = true
		}
		return items, nil
	})
}

func (s *NotificationService) Delete(ctx context.Context, id string) error {
	return s.update(ctx, func(items []*entities.SavedNotification) ([]*entities.SavedNotification, error) {
		kept := items[:0]
		found := false
		for _, n := range items {
			if n.ID == id {
				found = true
				continue
			}
			kept = append(kept, n)
		}
		if !found {
			return nil, ErrNotificationNotFound
		}
		return kept, nil
	})
}

func (s *NotificationService) Clear(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return err
	}
	s.log.Info("notification history cleared")
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	items, err := s.history.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range items {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

// update is a read-modify-write of the whole history.
// TODO: serialise concurrent updates across agents sharing a redis history.
func (s *NotificationService) update(ctx context.Context, fn func([]*entities.SavedNotification) ([]*entities.SavedNotification, error)) error {
	items, err := s.history.List(ctx)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return s.history.Replace(ctx, items)
}

// ---------- Push token ----------

// SaveToken stores a new push token locally. Call RegisterToken to send it.
func (s *NotificationService) SaveToken(ctx context.Context, token string) error {
	if err := s.tokens.SaveToken(ctx, token); err != nil {
		return err
	}
	s.log.Debug("push token saved locally")
	return nil
}

func (s *NotificationService) Token(ctx context.Context) (string, error) {
	return s.tokens.GetToken(ctx)
}

// RegisterToken sends the saved push token to the backend. It is a no-op
// returning (false, nil) when nobody is signed in.
func (s *NotificationService) RegisterToken(ctx context.Context) (bool, error) {
	if !s.signedIn(ctx) {
		s.log.Warn("user not signed in, skipping push token registration")
		return false, nil
	}
	token, err := s.tokens.GetToken(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, ErrNoPushToken
	}
	resp, err := s.orders.RegisterPushToken(ctx, token)
	if err != nil {
		s.log.WithError(err).Error("push token registration failed")
		return false, err
	}
	s.log.WithField("message", resp.Message).Info("push token registered")
	return true, nil
}

// Unregister removes the push token from the backend and then clears all
// local notification data, whatever the backend said.
func (s *NotificationService) Unregister(ctx context.Context) error {
	var backendErr error
	if s.signedIn(ctx) {
		if _, err := s.orders.UnregisterPushToken(ctx); err != nil {
			s.log.WithError(err).Error("push token unregister failed")
			backendErr = err
		}
	} else {
		s.log.Warn("user not signed in, skipping backend unregister")
	}

	if err := s.clearLocal(ctx); err != nil {
		return err
	}
	return backendErr
}

func (s *NotificationService) clearLocal(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return err
	}
	if err := s.tokens.DeleteToken(ctx); err != nil {
		return err
	}
	s.log.Info("local notification data cleared")
	return nil
}

func (s *NotificationService) signedIn(ctx context.Context) bool {
	if s.session == nil {
		return false
	}
	_, err := auth.CurrentSession(ctx, s.session, s.now())
	return err == nil
}
