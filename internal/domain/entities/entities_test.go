package entities

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOrder_Priority(t *testing.T) {
	o := &Order{PriorityFlag: true}
	if o.Priority() != "emergency" {
		t.Errorf("Expected emergency, got %s", o.Priority())
	}
	o.PriorityFlag = false
	if o.Priority() != "normal" {
		t.Errorf("Expected normal, got %s", o.Priority())
	}
}

func TestOrder_DecodeBackendPayload(t *testing.T) {
	payload := `{
		"request_id": "r-1",
		"posted_by": "u-1",
		"poster_email": "a@b.c",
		"item": ["milk", "bread"],
		"pickup_location": "Gate 2",
		"pickup_area": "North",
		"drop_location": "Block C",
		"drop_area": "South",
		"reward": 25.5,
		"item_price": 120,
		"time_requested": "18:00",
		"deadline": "30m",
		"priority": true,
		"status": "open",
		"created_at": "2024-01-01T10:00:00Z"
	}`

	var o Order
	if err := json.Unmarshal([]byte(payload), &o); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if o.ID != "r-1" || len(o.Items) != 2 || o.BestBefore != "18:00" {
		t.Errorf("Unexpected order: %+v", o)
	}
	if !o.PriorityFlag || o.IsExpired {
		t.Errorf("Unexpected flags: priority=%v expired=%v", o.PriorityFlag, o.IsExpired)
	}
}

func TestPushMessage_Channel(t *testing.T) {
	tests := map[string]string{
		NotificationNewRequest:       ChannelNewRequests,
		NotificationRequestAccepted:  ChannelOrderUpdates,
		NotificationRequestCompleted: ChannelOrderUpdates,
		NotificationRequestCancelled: ChannelOrderUpdates,
		NotificationGeneral:          ChannelGeneral,
		"something_else":             ChannelGeneral,
	}
	for typ, want := range tests {
		m := &PushMessage{Type: typ}
		if got := m.Channel(); got != want {
			t.Errorf("Channel(%q) = %q, want %q", typ, got, want)
		}
	}
}

func TestFix_Age(t *testing.T) {
	now := time.Now()
	f := Fix{Time: now.Add(-5 * time.Minute)}
	if f.Age(now) != 5*time.Minute {
		t.Errorf("Expected 5m, got %v", f.Age(now))
	}
}
