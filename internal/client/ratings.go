package client

import (
	"context"

	"smallbasket/internal/domain/entities"
)

func (c *Client) CreateRating(ctx context.Context, req *entities.CreateRatingRequest) (*entities.Rating, error) {
	var out entities.Rating
	if err := c.post(ctx, "rating/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRating(ctx context.Context, ratingID string, req *entities.UpdateRatingRequest) (*entities.Rating, error) {
	var out entities.Rating
	if err := c.put(ctx, "rating/"+segment(ratingID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DelivererRatings(ctx context.Context, uid string) (*entities.UserRatings, error) {
	var out entities.UserRatings
	if err := c.get(ctx, "rating/deliverer/"+segment(uid), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyDelivererRatings(ctx context.Context) (*entities.UserRatings, error) {
	var out entities.UserRatings
	if err := c.get(ctx, "rating/my-deliverer-ratings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RatingSummary(ctx context.Context, uid string) (*entities.RatingStats, error) {
	var out entities.RatingStats
	if err := c.get(ctx, "rating/summary/"+segment(uid), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyRatingSummary(ctx context.Context) (*entities.RatingStats, error) {
	var out entities.RatingStats
	if err := c.get(ctx, "rating/my-summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRating(ctx context.Context, ratingID string) (*entities.SuccessResponse, error) {
	var out entities.SuccessResponse
	if err := c.delete(ctx, "rating/"+segment(ratingID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
