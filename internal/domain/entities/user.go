package entities

import "encoding/json"

// UserProfile is returned by GET user/profile.
type UserProfile struct {
	UID                       string   `json:"uid"`
	Email                     string   `json:"email"`
	Name                      string   `json:"name,omitempty"`
	Phone                     string   `json:"phone,omitempty"`
	EmailVerified             bool     `json:"email_verified"`
	PreferredAreas            []string `json:"preferred_areas,omitempty"`
	CurrentArea               string   `json:"current_area,omitempty"`
	IsReachable               bool     `json:"is_reachable"`
	IsConnected               bool     `json:"is_connected"`
	LocationPermissionGranted bool     `json:"location_permission_granted"`
	DeviceID                  string   `json:"device_id,omitempty"`
	CreatedAt                 string   `json:"created_at"`
	LastLogin                 string   `json:"last_login"`
}

// RequestStats is returned by GET user/stats.
type RequestStats struct {
	TotalPosted    int `json:"total_posted"`
	TotalAccepted  int `json:"total_accepted"`
	ActiveRequests int `json:"active_requests"`
}

// AreasList is returned by GET areas/list.
type AreasList struct {
	Areas []string `json:"areas"`
	Total int      `json:"total"`
}

// PreferredAreasRequest is the body of PUT user/preferred-areas.
type PreferredAreasRequest struct {
	PreferredAreas []string `json:"preferred_areas"`
}

// SuccessResponse is the backend's generic acknowledgement. Data varies by
// endpoint and is kept raw.
type SuccessResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}
