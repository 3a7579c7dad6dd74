// Package file persists agent state as JSON documents in a directory, the
// on-disk counterpart of the phone's shared preferences.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"smallbasket/internal/domain/entities"
	"smallbasket/internal/repository"
)

const (
	notificationsFile = "notifications.json"
	tokenFile         = "push_token.json"
	locationFile      = "location.json"
)

type tokenDoc struct {
	Token   string    `json:"fcm_token"`
	SavedAt time.Time `json:"saved_at"`
}

type locationDoc struct {
	LastFix         *entities.Fix `json:"last_fix,omitempty"`
	TrackingEnabled bool          `json:"location_tracking_enabled"`
}

// Store implements NotificationRepository, TokenRepository and
// LocationRepository on top of a directory. One mutex guards every
// read-modify-write cycle.
type Store struct {
	dir             string
	defaultTracking bool
	mu              sync.Mutex
}

// NewStore creates dir (0o700) if needed. defaultTracking is reported until
// the tracking preference is first written.
func NewStore(dir string, defaultTracking bool) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir, defaultTracking: defaultTracking}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// ---------- Notifications ----------

func (s *Store) Add(ctx context.Context, n *entities.SavedNotification, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*entities.SavedNotification
	if err := readJSON(s.path(notificationsFile), &items); err != nil {
		return err
	}
	items = append([]*entities.SavedNotification{n}, items...)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return writeJSON(s.path(notificationsFile), items, 0o600)
}

func (s *Store) List(ctx context.Context) ([]*entities.SavedNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*entities.SavedNotification
	if err := readJSON(s.path(notificationsFile), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entities.SavedNotification{}
	}
	return items, nil
}

func (s *Store) Replace(ctx context.Context, items []*entities.SavedNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items == nil {
		items = []*entities.SavedNotification{}
	}
	return writeJSON(s.path(notificationsFile), items, 0o600)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return removeIfExists(s.path(notificationsFile))
}

// ---------- Push token ----------

func (s *Store) SaveToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(s.path(tokenFile), tokenDoc{Token: token, SavedAt: time.Now()}, 0o600)
}

func (s *Store) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc tokenDoc
	if err := readJSON(s.path(tokenFile), &doc); err != nil {
		return "", err
	}
	return doc.Token, nil
}

func (s *Store) DeleteToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return removeIfExists(s.path(tokenFile))
}

// ---------- Location ----------

func (s *Store) loadLocation() (locationDoc, error) {
	doc := locationDoc{TrackingEnabled: s.defaultTracking}
	err := readJSON(s.path(locationFile), &doc)
	return doc, err
}

func (s *Store) SaveLastFix(ctx context.Context, fix entities.Fix) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocation()
	if err != nil {
		return err
	}
	doc.LastFix = &fix
	return writeJSON(s.path(locationFile), doc, 0o600)
}

func (s *Store) GetLastFix(ctx context.Context) (entities.Fix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocation()
	if err != nil {
		return entities.Fix{}, err
	}
	if doc.LastFix == nil {
		return entities.Fix{}, repository.ErrNotFound
	}
	return *doc.LastFix, nil
}

func (s *Store) SetTrackingEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocation()
	if err != nil {
		return err
	}
	doc.TrackingEnabled = enabled
	return writeJSON(s.path(locationFile), doc, 0o600)
}

func (s *Store) TrackingEnabled(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocation()
	if err != nil {
		return false, err
	}
	return doc.TrackingEnabled, nil
}

// readJSON reads path into out; a missing file leaves out untouched.
func readJSON(path string, out interface{}) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON writes through a temp file and a rename so readers never see a
// half-written document.
func writeJSON(path string, v interface{}, mode os.FileMode) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, mode); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
