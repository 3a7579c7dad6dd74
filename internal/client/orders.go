package client

import (
	"context"
	"net/url"

	"smallbasket/internal/domain/entities"
)

// CreateOrder posts a new delivery request.
func (c *Client) CreateOrder(ctx context.Context, req *entities.CreateOrderRequest) (*entities.Order, error) {
	var out entities.Order
	if err := c.post(ctx, "request/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders calls GET request/all. Status values must already be in the
// backend vocabulary.
func (c *Client) ListOrders(ctx context.Context, filter entities.OrderFilter) ([]*entities.Order, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.PickupArea != "" {
		q.Set("pickup_area", filter.PickupArea)
	}
	if filter.DropArea != "" {
		q.Set("drop_area", filter.DropArea)
	}
	var out []*entities.Order
	if err := c.get(ctx, "request/all", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyOrders lists orders posted by the signed-in user.
func (c *Client) MyOrders(ctx context.Context) ([]*entities.Order, error) {
	var out []*entities.Order
	if err := c.get(ctx, "request/mine", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptedOrders lists orders the signed-in user accepted.
func (c *Client) AcceptedOrders(ctx context.Context) ([]*entities.Order, error) {
	var out []*entities.Order
	if err := c.get(ctx, "request/accepted", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrder fetches one order by request id.
func (c *Client) GetOrder(ctx context.Context, requestID string) (*entities.Order, error) {
	var out entities.Order
	if err := c.get(ctx, "request/status/"+segment(requestID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptOrder accepts an open order on behalf of the signed-in user.
func (c *Client) AcceptOrder(ctx context.Context, requestID string) (*entities.Order, error) {
	var out entities.Order
	if err := c.post(ctx, "request/accept", &entities.AcceptOrderRequest{RequestID: requestID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrderStatus sets an order's status. status must already be in the
// backend vocabulary.
func (c *Client) UpdateOrderStatus(ctx context.Context, requestID, status string) (*entities.Order, error) {
	var out entities.Order
	req := &entities.UpdateOrderStatusRequest{RequestID: requestID, Status: status}
	if err := c.post(ctx, "request/update-status", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
