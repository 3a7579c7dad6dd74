package entities

// DeviceInfo describes the reporting device.
type DeviceInfo struct {
	OS           string `json:"os,omitempty"`
	Model        string `json:"model,omitempty"`
	AppVersion   string `json:"app_version,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

// ConnectivityUpdateRequest is the body of POST user/connectivity/update.
type ConnectivityUpdateRequest struct {
	IsConnected               bool        `json:"is_connected"`
	LocationPermissionGranted bool        `json:"location_permission_granted"`
	DeviceID                  string      `json:"device_id,omitempty"`
	DeviceInfo                *DeviceInfo `json:"device_info,omitempty"`
}
