package services

import (
	"errors"

	"github.com/tidwall/gjson"

	"smallbasket/internal/domain/entities"
)

var ErrInvalidPush = errors.New("invalid push payload")

// ParsePush reads a push payload. Two shapes are accepted: the full message
// {"data": {...}, "notification": {"title", "body"}} and a bare data map.
// Data values win over the notification block.
func ParsePush(raw []byte) (*entities.PushMessage, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidPush
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, ErrInvalidPush
	}

	data := root.Get("data")
	if !data.IsObject() {
		data = root
	}
	notification := root.Get("notification")

	str := func(key string) string {
		if v := data.Get(key); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
		return ""
	}
	firstOf := func(vals ...string) string {
		for _, v := range vals {
			if v != "" {
				return v
			}
		}
		return ""
	}

	msg := &entities.PushMessage{
		Type:       firstOf(str("type"), entities.NotificationGeneral),
		Title:      firstOf(str("title"), notification.Get("title").String(), "New Notification"),
		Body:       firstOf(str("body"), notification.Get("body").String()),
		OrderID:    firstOf(str("order_id"), str("request_id")),
		PickupArea: str("pickup_area"),
		DropArea:   str("drop_area"),
		Reward:     str("reward"),
		Deadline:   str("deadline"),
	}
	msg.Priority = entities.PriorityDefault
	if msg.Type == entities.NotificationNewRequest {
		msg.Priority = entities.PriorityHigh
	}
	msg.ClickAction = clickAction(msg.Type)
	return msg, nil
}

// clickAction names the screen a tapped notification opens.
func clickAction(kind string) string {
	switch kind {
	case entities.NotificationNewRequest:
		return "request_detail"
	case entities.NotificationRequestAccepted, entities.NotificationRequestCompleted, entities.NotificationRequestCancelled:
		return "my_logs"
	default:
		return "home"
	}
}
