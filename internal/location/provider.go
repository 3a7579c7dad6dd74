// Package location supplies position fixes to the sync worker.
//
// Go Learning Note — Small Interfaces:
// The worker only needs two questions answered: "is location available?"
// and "where am I?". Keeping Provider that small lets a fixed coordinate,
// a file written by another process, or a test fake stand in equally well.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"smallbasket/internal/config"
	"smallbasket/internal/domain/entities"
	"smallbasket/pkg/utils"
)

var (
	// ErrUnavailable means location services are off or not configured.
	ErrUnavailable = errors.New("location services unavailable")
	// ErrNoFix means the provider is enabled but has no position yet.
	ErrNoFix = errors.New("no location fix")
)

// Provider yields the device's current position.
type Provider interface {
	Enabled(ctx context.Context) bool
	CurrentFix(ctx context.Context) (entities.Fix, error)
}

// Static reports a fixed coordinate, stamped with the time of each call.
type Static struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Now       func() time.Time
}

func (s *Static) Enabled(ctx context.Context) bool {
	return utils.ValidCoordinates(s.Latitude, s.Longitude) && !(s.Latitude == 0 && s.Longitude == 0)
}

func (s *Static) CurrentFix(ctx context.Context) (entities.Fix, error) {
	if !s.Enabled(ctx) {
		return entities.Fix{}, ErrUnavailable
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return entities.Fix{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Accuracy:  s.Accuracy,
		Time:      now(),
	}, nil
}

// File reads the latest fix from a JSON file such as
// {"latitude": 12.97, "longitude": 77.59, "accuracy": 10, "time": "..."}.
// A fix without a time takes the file's modification time.
type File struct {
	Path string
}

func (f *File) Enabled(ctx context.Context) bool {
	if f.Path == "" {
		return false
	}
	_, err := os.Stat(f.Path)
	return err == nil
}

func (f *File) CurrentFix(ctx context.Context) (entities.Fix, error) {
	if f.Path == "" {
		return entities.Fix{}, ErrUnavailable
	}
	info, err := os.Stat(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return entities.Fix{}, ErrUnavailable
	}
	if err != nil {
		return entities.Fix{}, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return entities.Fix{}, fmt.Errorf("read fix %s: %w", f.Path, err)
	}
	if len(data) == 0 {
		return entities.Fix{}, ErrNoFix
	}
	var fix entities.Fix
	if err := json.Unmarshal(data, &fix); err != nil {
		return entities.Fix{}, fmt.Errorf("decode fix %s: %w", f.Path, err)
	}
	if !utils.ValidCoordinates(fix.Latitude, fix.Longitude) {
		return entities.Fix{}, fmt.Errorf("%w: invalid coordinates in %s", ErrNoFix, f.Path)
	}
	if fix.Time.IsZero() {
		fix.Time = info.ModTime()
	}
	return fix, nil
}

// NewProvider builds the provider named by cfg.Source.
func NewProvider(cfg config.LocationConfig) (Provider, error) {
	switch cfg.Source {
	case "", "static":
		return &Static{Latitude: cfg.Latitude, Longitude: cfg.Longitude, Accuracy: cfg.Accuracy}, nil
	case "file":
		if cfg.File == "" {
			return nil, errors.New("location: source \"file\" needs location.file")
		}
		return &File{Path: cfg.File}, nil
	default:
		return nil, fmt.Errorf("location: unknown source %q", cfg.Source)
	}
}
