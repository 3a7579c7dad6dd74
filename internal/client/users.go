package client

import (
	"context"

	"smallbasket/internal/domain/entities"
)

func (c *Client) UserStats(ctx context.Context) (*entities.RequestStats, error) {
	var out entities.RequestStats
	if err := c.get(ctx, "user/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UserProfile(ctx context.Context) (*entities.UserProfile, error) {
	var out entities.UserProfile
	if err := c.get(ctx, "user/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateConnectivity reports the device's connectivity state.
func (c *Client) UpdateConnectivity(ctx context.Context, req *entities.ConnectivityUpdateRequest) (*entities.SuccessResponse, error) {
	var out entities.SuccessResponse
	if err := c.post(ctx, "user/connectivity/update", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AvailableAreas(ctx context.Context) (*entities.AreasList, error) {
	var out entities.AreasList
	if err := c.get(ctx, "areas/list", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePreferredAreas(ctx context.Context, areas []string) (*entities.SuccessResponse, error) {
	if areas == nil {
		areas = []string{}
	}
	var out entities.SuccessResponse
	if err := c.put(ctx, "user/preferred-areas", &entities.PreferredAreasRequest{PreferredAreas: areas}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterPushToken registers the device's push token for the signed-in user.
func (c *Client) RegisterPushToken(ctx context.Context, token string) (*entities.SuccessResponse, error) {
	var out entities.SuccessResponse
	if err := c.post(ctx, "notifications/register", &entities.FCMTokenRequest{FCMToken: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UnregisterPushToken(ctx context.Context) (*entities.SuccessResponse, error) {
	var out entities.SuccessResponse
	if err := c.delete(ctx, "notifications/unregister", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
