package utils

import (
	"math"
	"testing"
	"time"
)

func TestToBackendStatus(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"pending", "open"},
		{"picked_up", "completed"},
		{"delivered", "completed"},
		{"accepted", "accepted"},
		{"cancelled", "cancelled"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToBackendStatus(tt.in); got != tt.want {
			t.Errorf("ToBackendStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"accepted", "Accepted"},
		{"ACCEPTED", "Accepted"},
		{"in_progress", "In Progress"},
		{"in progress", "In Progress"},
		{"completed", "Completed"},
		{"delivering", "Delivering"},
		{"open", "Open"},
		{"cancelled", "Cancelled"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StatusLabel(tt.in); got != tt.want {
			t.Errorf("StatusLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimeDisplay(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "ASAP"},
		{"30m", "30 min"},
		{"30", "30 min"},
		{"1h", "1 hour"},
		{"60", "1 hour"},
		{"2h", "2 hours"},
		{"120", "2 hours"},
		{"4h", "4 hours"},
		{"240", "4 hours"},
		{"asap", "ASAP"},
		{"As soon as possible (ASAP)", "ASAP"},
		// "30" is checked first
		{"2030-01-01", "30 min"},
		{"tomorrow", "tomorrow"},
	}
	for _, tt := range tests {
		if got := TimeDisplay(tt.in); got != tt.want {
			t.Errorf("TimeDisplay(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatFee(t *testing.T) {
	tests := []struct {
		reward float64
		want   string
	}{
		{25.9, "₹25"},
		{1, "₹1"},
		{0.5, "₹0"},
		{0, "₹0"},
		{-10, "₹0"},
	}
	for _, tt := range tests {
		if got := FormatFee(tt.reward); got != tt.want {
			t.Errorf("FormatFee(%v) = %q, want %q", tt.reward, got, tt.want)
		}
	}
}

func TestJoinLocation(t *testing.T) {
	tests := []struct {
		loc, area, want string
	}{
		{"", "", "Unknown"},
		{"  ", " ", "Unknown"},
		{"", "North", "North"},
		{"Gate 2", "", "Gate 2"},
		{"Gate 2", "North", "Gate 2, North"},
	}
	for _, tt := range tests {
		if got := JoinLocation(tt.loc, tt.area); got != tt.want {
			t.Errorf("JoinLocation(%q, %q) = %q, want %q", tt.loc, tt.area, got, tt.want)
		}
	}

	if got := ShortLocation("Gate 2", "North"); got != "Gate 2" {
		t.Errorf("ShortLocation = %q, want Gate 2", got)
	}
	if got := ShortLocation("", "North"); got != "North" {
		t.Errorf("ShortLocation = %q, want North", got)
	}
}

func TestIsPriority(t *testing.T) {
	for _, p := range []string{"emergency", "HIGH", "Urgent"} {
		if !IsPriority(p) {
			t.Errorf("Expected %q to be priority", p)
		}
	}
	for _, p := range []string{"normal", "", "low"} {
		if IsPriority(p) {
			t.Errorf("Expected %q not to be priority", p)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"seconds", now.Add(-30 * time.Second), "Just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-2 * 24 * time.Hour), "2d ago"},
		{"same year", time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC), "Jan 3"},
		{"older", time.Date(2022, 11, 20, 9, 0, 0, 0, time.UTC), "Nov 20, 2022"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeTime(tt.ts, now); got != tt.want {
				t.Errorf("RelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGreeting(t *testing.T) {
	tests := map[int]string{
		0:  "Good Morning",
		11: "Good Morning",
		12: "Good Afternoon",
		16: "Good Afternoon",
		17: "Good Evening",
		23: "Good Evening",
	}
	for hour, want := range tests {
		if got := Greeting(hour); got != want {
			t.Errorf("Greeting(%d) = %q, want %q", hour, got, want)
		}
	}
}

func TestCustomDeadline(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 0, 30, 0, time.UTC)

	minutes, err := CustomDeadline(now, 15, 0)
	if err != nil {
		t.Fatalf("CustomDeadline failed: %v", err)
	}
	if minutes != 59 {
		t.Errorf("Expected 59 minutes, got %d", minutes)
	}

	// already passed today, rolls to tomorrow
	minutes, err = CustomDeadline(now, 13, 0)
	if err != nil {
		t.Fatalf("CustomDeadline failed: %v", err)
	}
	if minutes != 23*60-1 {
		t.Errorf("Expected %d minutes, got %d", 23*60-1, minutes)
	}

	if _, err := CustomDeadline(now, 14, 5); err != ErrDeadlineTooSoon {
		t.Errorf("Expected ErrDeadlineTooSoon, got %v", err)
	}
	if _, err := CustomDeadline(now, 25, 0); err == nil {
		t.Error("Expected error for invalid hour")
	}
}

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lon1      float64
		lat2      float64
		lon2      float64
		expected  float64
		tolerance float64
	}{
		{"Same location", 12.9716, 77.5946, 12.9716, 77.5946, 0, 0.001},
		{"Bengaluru to Mysuru", 12.9716, 77.5946, 12.2958, 76.6394, 127, 5},
		{"NYC to LA", 40.7128, -74.0060, 34.0522, -118.2437, 3940, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HaversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(result-tt.expected) > tt.tolerance {
				t.Errorf("HaversineDistance() = %v, expected %v (+/- %v)", result, tt.expected, tt.tolerance)
			}
		})
	}

	if m := HaversineMeters(12.9716, 77.5946, 12.9716, 77.5946); m != 0 {
		t.Errorf("Expected 0 meters, got %v", m)
	}
}

func TestValidCoordinates(t *testing.T) {
	if !ValidCoordinates(12.97, 77.59) {
		t.Error("Expected valid coordinates")
	}
	if ValidCoordinates(91, 0) || ValidCoordinates(0, 181) || ValidCoordinates(math.NaN(), 0) {
		t.Error("Expected invalid coordinates")
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("Expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("Expected a 36 character uuid, got %q", a)
	}
}

func BenchmarkHaversineDistance(b *testing.B) {
	for i := 0; i < b.N; i++ {
		HaversineDistance(12.9716, 77.5946, 12.2958, 76.6394)
	}
}
