package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"smallbasket/internal/domain/entities"
	"smallbasket/internal/logging"
	"smallbasket/internal/repository"
)

// LocationService keeps the device's last fix and tracking preference, and
// pushes fixes to the backend.
type LocationService struct {
	maps *MapService
	repo repository.LocationRepository
	log  *logrus.Entry
}

func NewLocationService(maps *MapService, repo repository.LocationRepository, logger logrus.FieldLogger) *LocationService {
	return &LocationService{
		maps: maps,
		repo: repo,
		log:  logging.Component(logger, "location"),
	}
}

// SaveFix stores fix as the last known location.
func (s *LocationService) SaveFix(ctx context.Context, fix entities.Fix) error {
	if err := s.repo.SaveLastFix(ctx, fix); err != nil {
		s.log.WithError(err).Warn("failed to save fix")
		return err
	}
	return nil
}

// LastFix returns the last saved fix. ok is false when none was saved.
func (s *LocationService) LastFix(ctx context.Context) (fix entities.Fix, ok bool, err error) {
	fix, err = s.repo.GetLastFix(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return entities.Fix{}, false, nil
	}
	if err != nil {
		return entities.Fix{}, false, err
	}
	return fix, true, nil
}

func (s *LocationService) TrackingEnabled(ctx context.Context) (bool, error) {
	return s.repo.TrackingEnabled(ctx)
}

func (s *LocationService) SetTrackingEnabled(ctx context.Context, enabled bool) error {
	if err := s.repo.SetTrackingEnabled(ctx, enabled); err != nil {
		return err
	}
	s.log.WithField("enabled", enabled).Info("location tracking preference updated")
	return nil
}

// Sync sends fix once in fast mode.
func (s *LocationService) Sync(ctx context.Context, fix entities.Fix) (*entities.UpdateGPSLocationResponse, error) {
	entry := s.log.WithFields(logrus.Fields{
		"lat":      fix.Latitude,
		"lng":      fix.Longitude,
		"accuracy": fix.Accuracy,
	})
	resp, err := s.maps.UpdateGPS(ctx, fix, true)
	if err != nil {
		entry.WithError(err).Warn("gps sync failed")
		return nil, err
	}
	if resp.Data != nil {
		entry = entry.WithField("area", resp.Data.PrimaryArea)
	}
	entry.Debug("gps synced")
	return resp, nil
}
