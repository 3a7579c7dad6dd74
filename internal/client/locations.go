package client

import (
	"context"
	"net/url"
	"strconv"

	"smallbasket/internal/domain/entities"
)

// DefaultNearbyRadius is used when NearbyUsers is called with radius <= 0.
const DefaultNearbyRadius = 5000.0

// UpdateGPS pushes a location fix.
func (c *Client) UpdateGPS(ctx context.Context, req *entities.UpdateGPSLocationRequest) (*entities.UpdateGPSLocationResponse, error) {
	var out entities.UpdateGPSLocationResponse
	if err := c.post(ctx, "location/update-gps", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyGPSLocation(ctx context.Context) (*entities.MyGPSLocation, error) {
	var out entities.MyGPSLocation
	if err := c.get(ctx, "location/my-gps", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) NearbyUsers(ctx context.Context, lat, lng, radiusMeters float64) (*entities.NearbyUsers, error) {
	if radiusMeters <= 0 {
		radiusMeters = DefaultNearbyRadius
	}
	req := &entities.NearbyUsersRequest{Latitude: lat, Longitude: lng, RadiusMeters: radiusMeters}
	var out entities.NearbyUsers
	if err := c.post(ctx, "location/nearby-users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UsersInArea(ctx context.Context, area string, includeEdge bool) (*entities.UsersInArea, error) {
	q := url.Values{}
	q.Set("include_edge_users", strconv.FormatBool(includeEdge))
	var out entities.UsersInArea
	if err := c.get(ctx, "location/users-in-area/"+segment(area), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReachableCount asks how many users can currently be reached in area. An
// empty area leaves the filter off and counts everywhere.
func (c *Client) ReachableCount(ctx context.Context, area string, countByDevice, includeNearby bool) (*entities.ReachableCount, error) {
	q := url.Values{}
	if area != "" {
		q.Set("area", area)
	}
	q.Set("count_by_device", strconv.FormatBool(countByDevice))
	q.Set("include_nearby", strconv.FormatBool(includeNearby))
	var out entities.ReachableCount
	if err := c.get(ctx, "users/reachable-count", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReachableByArea(ctx context.Context, countByDevice, includeNearby bool) (*entities.ReachableByArea, error) {
	q := url.Values{}
	q.Set("count_by_device", strconv.FormatBool(countByDevice))
	q.Set("include_nearby", strconv.FormatBool(includeNearby))
	var out entities.ReachableByArea
	if err := c.get(ctx, "users/reachable-by-area", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
