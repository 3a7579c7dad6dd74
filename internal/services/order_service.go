package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"smallbasket/internal/auth"
	"smallbasket/internal/client"
	"smallbasket/internal/domain/entities"
	"smallbasket/internal/logging"
	"smallbasket/pkg/utils"
)

// OrderService wraps the order, profile, area, push-token and rating
// endpoints. Every error it returns is a *Failure.
type OrderService struct {
	api *client.Client
	log *logrus.Entry
	now func() time.Time
}

func NewOrderService(api *client.Client, logger logrus.FieldLogger) *OrderService {
	return &OrderService{
		api: api,
		log: logging.Component(logger, "orders"),
		now: time.Now,
	}
}

// requireSession fails fast when nobody is signed in or the token expired.
func (s *OrderService) requireSession(ctx context.Context) error {
	session, err := auth.CurrentSession(ctx, s.api.Tokens(), s.now())
	switch {
	case errors.Is(err, auth.ErrNoToken), errors.Is(err, auth.ErrTokenExpired):
		s.log.WithError(err).Warn("no signed-in user")
		return ErrNotAuthenticated
	case err != nil:
		return err
	}
	s.log.WithField("uid", session.UID).Debug("session ok")
	return nil
}

// ---------- Orders ----------

func (s *OrderService) CreateOrder(ctx context.Context, req *entities.CreateOrderRequest) (*entities.Order, error) {
	order, err := s.api.CreateOrder(ctx, req)
	if err != nil {
		return nil, fail(err)
	}
	s.log.WithField("request_id", order.ID).Info("order created")
	return order, nil
}

// ListOrders lists orders, translating a client-side status filter into the
// backend vocabulary.
func (s *OrderService) ListOrders(ctx context.Context, status, pickupArea string) ([]*entities.Order, error) {
	filter := entities.OrderFilter{
		Status:     utils.ToBackendStatus(status),
		PickupArea: pickupArea,
	}
	orders, err := s.api.ListOrders(ctx, filter)
	if err != nil {
		return nil, fail(err)
	}
	return orders, nil
}

// MyOrders lists the signed-in user's posted orders.
func (s *OrderService) MyOrders(ctx context.Context) ([]*entities.Order, error) {
	if err := s.requireSession(ctx); err != nil {
		return nil, fail(err)
	}
	orders, err := s.api.MyOrders(ctx)
	if err != nil {
		s.log.WithError(err).Error("list my orders failed")
		return nil, fail(err)
	}
	s.log.WithField("count", len(orders)).Debug("loaded my orders")
	return orders, nil
}

// AcceptedOrders lists orders the signed-in user is delivering.
func (s *OrderService) AcceptedOrders(ctx context.Context) ([]*entities.Order, error) {
	if err := s.requireSession(ctx); err != nil {
		return nil, fail(err)
	}
	orders, err := s.api.AcceptedOrders(ctx)
	if err != nil {
		s.log.WithError(err).Error("list accepted orders failed")
		return nil, fail(err)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, requestID string) (*entities.Order, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, fail(ErrMissingRequestID)
	}
	order, err := s.api.GetOrder(ctx, requestID)
	if err != nil {
		return nil, fail(err)
	}
	return order, nil
}

func (s *OrderService) AcceptOrder(ctx context.Context, requestID string) (*entities.Order, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, fail(ErrMissingRequestID)
	}
	order, err := s.api.AcceptOrder(ctx, requestID)
	if err != nil {
		return nil, fail(err)
	}
	s.log.WithField("request_id", requestID).Info("order accepted")
	return order, nil
}

// UpdateOrderStatus sets a new status, translating client-side values
// such as "delivered" into what the backend accepts.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, requestID, status string) (*entities.Order, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, fail(ErrMissingRequestID)
	}
	backend := utils.ToBackendStatus(status)
	order, err := s.api.UpdateOrderStatus(ctx, requestID, backend)
	if err != nil {
		return nil, fail(err)
	}
	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     backend,
	}).Info("order status updated")
	return order, nil
}

// ---------- User ----------

func (s *OrderService) UserStats(ctx context.Context) (*entities.RequestStats, error) {
	stats, err := s.api.UserStats(ctx)
	if err != nil {
		return nil, fail(err)
	}
	return stats, nil
}

func (s *OrderService) UserProfile(ctx context.Context) (*entities.UserProfile, error) {
	profile, err := s.api.UserProfile(ctx)
	if err != nil {
		return nil, fail(err)
	}
	return profile, nil
}

func (s *OrderService) UpdateConnectivity(ctx context.Context, req *entities.ConnectivityUpdateRequest) (*entities.SuccessResponse, error) {
	resp, err := s.api.UpdateConnectivity(ctx, req)
	if err != nil {
		return nil, fail(err)
	}
	return resp, nil
}

// ---------- Areas ----------

func (s *OrderService) AvailableAreas(ctx context.Context) ([]string, error) {
	areas, err := s.api.AvailableAreas(ctx)
	if err != nil {
		return nil, fail(err)
	}
	return areas.Areas, nil
}

func (s *OrderService) SetPreferredAreas(ctx context.Context, areas []string) (*entities.SuccessResponse, error) {
	resp, err := s.api.UpdatePreferredAreas(ctx, areas)
	if err != nil {
		return nil, fail(err)
	}
	return resp, nil
}

// ---------- Push token ----------

func (s *OrderService) RegisterPushToken(ctx context.Context, token string) (*entities.SuccessResponse, error) {
	resp, err := s.api.RegisterPushToken(ctx, token)
	if err != nil {
		return nil, fail(err)
	}
	return resp, nil
}

func (s *OrderService) UnregisterPushToken(ctx context.Context) (*entities.SuccessResponse, error) {
	resp, err := s.api.UnregisterPushToken(ctx)
	if err != nil {
		return nil, fail(err)
	}
	return resp, nil
}

// HealthCheck reports whether the backend answers GET /.
func (s *OrderService) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	out, err := s.api.Health(ctx)
	if err != nil {
		return nil, fail(err)
	}
	return out, nil
}

// ---------- Ratings ----------

func (s *OrderService) CreateRating(ctx context.Context, requestID string, rating int, comment string) (*entities.Rating, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, fail(ErrMissingRequestID)
	}
	if err := validateRating(rating); err != nil {
		return nil, fail(err)
	}
	out, err := s.api.CreateRating(ctx, &entities.CreateRatingRequest{
		RequestID: requestID,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		return nil, fail(err)
	}
	return out, nil
}

func (s *OrderService) UpdateRating(ctx context.Context, ratingID string, rating int, comment string) (*entities.Rating, error) {
	if err := validateRating(rating); err != nil {
		return nil, fail(err)
	}
	out, err := s.api.UpdateRating(ctx, ratingID, &entities.UpdateRatingRequest{Rating: rating, Comment: comment})
	if err != nil {
		return nil, fail(err)
	}
	return out, nil
}

func (s *OrderService) DeleteRating(ctx context.Context, ratingID string) (*entities.SuccessResponse, error) {
	out, err := s.api.DeleteRating(ctx, ratingID)
	if err != nil {
		return nil, fail(err)
	}
	return out, nil
}

func (s *OrderService) DelivererRatings(ctx context.Context, uid string) (*entities.UserRatings, error) {
	out, err := s.api.DelivererRatings(ctx, uid)
	if err != nil {
		return nil, fail(err)
	}
	return out, nil
}

func (s *OrderService) MyDelivererRatings(ctx context.Context) (*entities.UserRatings, error) {
	out, err := s.api.MyDelivererRatings(ctx)
	if err != nil {
		return nil, fail(err)
	}
	return out, nil
}

func (s *OrderService) RatingSummary(ctx context.Context, uid string) (*entities.RatingStats, error) {
	out, err := s.api.RatingSummary(ctx, uid)
	if err != nil {
		return nil, fail(err)
	}
	return out, nil
}

func (s *OrderService) MyRatingSummary(ctx context.Context) (*entities.RatingStats, error) {
	out, err := s.api.MyRatingSummary(ctx)
	if err != nil {
		return nil, fail(err)
	}
	return out, nil
}
