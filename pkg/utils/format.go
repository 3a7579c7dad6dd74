package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinCustomDeadline is the shortest custom deadline a poster may pick.
const MinCustomDeadline = 10 * time.Minute

// ErrDeadlineTooSoon is returned by CustomDeadline for times under
// MinCustomDeadline away.
var ErrDeadlineTooSoon = errors.New("Please select a time at least 10 minutes from now")

// TimeDisplay turns a deadline string into the short label shown on order
// cards. The checks run in order, so "30" wins over anything after it.
func TimeDisplay(deadline string) string {
	switch {
	case deadline == "":
		return "ASAP"
	case strings.Contains(deadline, "30"):
		return "30 min"
	case strings.Contains(deadline, "1h") || strings.Contains(deadline, "60"):
		return "1 hour"
	case strings.Contains(deadline, "2h") || strings.Contains(deadline, "120"):
		return "2 hours"
	case strings.Contains(deadline, "4h") || strings.Contains(deadline, "240"):
		return "4 hours"
	case strings.Contains(strings.ToLower(deadline), "asap"):
		return "ASAP"
	default:
		return deadline
	}
}

// RewardAmount truncates a reward to whole rupees.
func RewardAmount(reward float64) int {
	return int(reward)
}

// FormatFee renders a reward as "₹N", or "₹0" when it is not positive.
func FormatFee(reward float64) string {
	if n := RewardAmount(reward); n > 0 {
		return fmt.Sprintf("₹%d", n)
	}
	return "₹0"
}

// JoinLocation combines a free-text location with its area.
func JoinLocation(location, area string) string {
	loc, ar := strings.TrimSpace(location), strings.TrimSpace(area)
	switch {
	case loc == "" && ar == "":
		return "Unknown"
	case loc == "":
		return area
	case ar == "":
		return location
	default:
		return location + ", " + area
	}
}

// ShortLocation is the activity-log variant of JoinLocation: it shows the
// location alone when both parts are present.
func ShortLocation(location, area string) string {
	loc, ar := strings.TrimSpace(location), strings.TrimSpace(area)
	switch {
	case loc == "" && ar == "":
		return "Unknown"
	case loc == "":
		return area
	default:
		return location
	}
}

// IsPriority reports whether a priority label marks an urgent order.
func IsPriority(priority string) bool {
	switch strings.ToLower(priority) {
	case "emergency", "high", "urgent":
		return true
	}
	return false
}

// RelativeTime renders ts relative to now for notification lists.
func RelativeTime(ts, now time.Time) string {
	diff := now.Sub(ts)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	case ts.Year() == now.Year():
		return ts.Format("Jan 2")
	default:
		return ts.Format("Jan 2, 2006")
	}
}

// Greeting picks the home screen salutation for an hour of the day.
func Greeting(hour int) string {
	switch {
	case hour >= 0 && hour <= 11:
		return "Good Morning"
	case hour >= 12 && hour <= 16:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}

// CustomDeadline returns the whole minutes from now until the next
// occurrence of hour:minute. A time that is not in the future today rolls
// over to tomorrow.
func CustomDeadline(now time.Time, hour, minute int) (int, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %02d:%02d", hour, minute)
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	minutes := int(target.Sub(now) / time.Minute)
	if time.Duration(minutes)*time.Minute < MinCustomDeadline {
		return 0, ErrDeadlineTooSoon
	}
	return minutes, nil
}
