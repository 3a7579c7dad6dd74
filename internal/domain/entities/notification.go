package entities

import "time"

// Push notification types sent by the backend.
const (
	NotificationNewRequest       = "new_request"
	NotificationRequestAccepted  = "request_accepted"
	NotificationRequestCompleted = "request_completed"
	NotificationRequestCancelled = "request_cancelled"
	NotificationGeneral          = "general"
)

// Delivery channels a push is routed to.
const (
	ChannelNewRequests  = "new_delivery_requests"
	ChannelOrderUpdates = "order_updates"
	ChannelGeneral      = "general_notifications"
)

// Notification priorities.
const (
	PriorityHigh    = "HIGH"
	PriorityDefault = "DEFAULT"
)

// PushMessage is a parsed push payload.
type PushMessage struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	OrderID     string `json:"order_id,omitempty"`
	Priority    string `json:"priority"`
	PickupArea  string `json:"pickup_area,omitempty"`
	DropArea    string `json:"drop_area,omitempty"`
	Reward      string `json:"reward,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	ClickAction string `json:"click_action,omitempty"`
}

// Channel returns the delivery channel for the message type.
func (m *PushMessage) Channel() string {
	switch m.Type {
	case NotificationNewRequest:
		return ChannelNewRequests
	case NotificationRequestAccepted, NotificationRequestCompleted, NotificationRequestCancelled:
		return ChannelOrderUpdates
	default:
		return ChannelGeneral
	}
}

// SavedNotification is an entry in the local notification history.
type SavedNotification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	OrderID   string    `json:"order_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"is_read"`
	Priority  string    `json:"priority"`
}

// FCMTokenRequest is the body of POST notifications/register.
type FCMTokenRequest struct {
	FCMToken string `json:"fcm_token"`
}
