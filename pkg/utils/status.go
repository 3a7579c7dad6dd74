package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ToBackendStatus translates the client status vocabulary into the values
// the backend accepts. Unknown statuses pass through unchanged.
func ToBackendStatus(status string) string {
	switch status {
	case "pending":
		return "open"
	case "picked_up", "delivered":
		return "completed"
	default:
		return status
	}
}

// StatusLabel returns the human label for an order status.
func StatusLabel(status string) string {
	switch strings.ToLower(status) {
	case "accepted":
		return "Accepted"
	case "in_progress", "in progress":
		return "In Progress"
	case "completed":
		return "Completed"
	case "delivering":
		return "Delivering"
	default:
		return capitalize(status)
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
