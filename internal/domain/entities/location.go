package entities

import "time"

// Fix is a single position reading from a location provider.
//
// Go Learning Note — Value Types vs Reference Types:
// Fix is small and immutable, so providers return it by value. Callers that
// need "no fix" use a pointer (*Fix) and check for nil.
type Fix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Time      time.Time `json:"time"`
}

// Age reports how old the fix is at now.
func (f Fix) Age(now time.Time) time.Duration {
	return now.Sub(f.Time)
}

// GPSLocation is the backend's view of a stored position.
type GPSLocation struct {
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
	LastUpdated string   `json:"last_updated,omitempty"`
}

// UpdateGPSLocationRequest is the body of POST location/update-gps.
type UpdateGPSLocationRequest struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	FastMode  bool     `json:"fast_mode"`
}

// LocationUpdateData is the area resolution the backend computed for a fix.
type LocationUpdateData struct {
	PrimaryArea      string   `json:"primary_area,omitempty"`
	AllMatchingAreas []string `json:"all_matching_areas,omitempty"`
	IsOnEdge         *bool    `json:"is_on_edge,omitempty"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
}

// UpdateGPSLocationResponse is returned by POST location/update-gps.
type UpdateGPSLocationResponse struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	FastMode bool                `json:"fast_mode"`
	Data     *LocationUpdateData `json:"data,omitempty"`
}

// MyGPSLocation is returned by GET location/my-gps.
type MyGPSLocation struct {
	HasLocation      bool         `json:"has_location"`
	GPSLocation      *GPSLocation `json:"gps_location,omitempty"`
	PrimaryArea      string       `json:"primary_area,omitempty"`
	AllMatchingAreas []string     `json:"all_matching_areas,omitempty"`
	IsOnEdge         *bool        `json:"is_on_edge,omitempty"`
	NearbyAreas      []string     `json:"nearby_areas,omitempty"`
}

// NearbyUsersRequest is the body of POST location/nearby-users.
type NearbyUsersRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}

// MapUser is another user's position as shown on the map.
type MapUser struct {
	UserID           string   `json:"user_id"`
	DisplayName      string   `json:"display_name,omitempty"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	PrimaryArea      string   `json:"primary_area,omitempty"`
	AllMatchingAreas []string `json:"all_matching_areas,omitempty"`
	IsOnEdge         *bool    `json:"is_on_edge,omitempty"`
	DistanceMeters   *float64 `json:"distance_meters,omitempty"`
	LastUpdated      string   `json:"last_updated,omitempty"`
}

// NearbyUsers is returned by POST location/nearby-users.
type NearbyUsers struct {
	Total int        `json:"total"`
	Users []*MapUser `json:"users"`
}

// UsersInArea is returned by GET location/users-in-area/{area}.
type UsersInArea struct {
	Area             string     `json:"area"`
	Total            int        `json:"total"`
	IncludeEdgeUsers bool       `json:"include_edge_users"`
	Users            []*MapUser `json:"users"`
}

// ReachableCount is returned by GET users/reachable-count.
type ReachableCount struct {
	Count          int    `json:"count"`
	CountingMethod string `json:"counting_method"`
	Area           string `json:"area"`
	Message        string `json:"message"`
}

// ReachableByArea is returned by GET users/reachable-by-area.
type ReachableByArea struct {
	AreaCounts     map[string]int `json:"area_counts"`
	CountingMethod string         `json:"counting_method"`
	Note           string         `json:"note"`
}
