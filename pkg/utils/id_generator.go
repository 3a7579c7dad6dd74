// Package utils holds the pure helpers shared by the CLI, the agent and the
// control API: identifiers, status vocabulary, display formatting and
// distance math.
//
// Go Learning Note — "pkg/" Directory Convention:
// Code under pkg/ is intended to be importable by other modules, unlike
// internal/ which the compiler keeps private. Nothing here depends on the
// agent's internals, so a UI written in Go could reuse these helpers.
package utils

import (
	"github.com/google/uuid"
)

// GenerateID creates a new UUID v4 string. Local notifications and the
// fallback device id use it.
//
// Go Learning Note — "github.com/google/uuid":
// uuid.New() creates a random v4 UUID like "550e8400-e29b-41d4-a716-446655440000".
// They can be generated without coordination, which is what a device-local
// store needs.
func GenerateID() string {
	return uuid.New().String()
}
