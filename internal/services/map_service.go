package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"smallbasket/internal/client"
	"smallbasket/internal/config"
	"smallbasket/internal/domain/entities"
	"smallbasket/internal/logging"
	"smallbasket/internal/metrics"
	"smallbasket/pkg/utils"
)

// MapService wraps the map, GPS and reachability endpoints.
//
// Go Learning Note — "golang.org/x/time/rate":
// rate.Limiter is a token bucket. Allow() takes a token if one is available
// and never blocks, which suits a UI refresh that should fail fast instead
// of queueing behind earlier refreshes.
type MapService struct {
	api          *client.Client
	log          *logrus.Entry
	metrics      *metrics.Metrics
	limiter      *rate.Limiter
	nearbyRadius float64
}

func NewMapService(api *client.Client, cfg config.MapConfig, m *metrics.Metrics, logger logrus.FieldLogger) *MapService {
	radius := cfg.NearbyRadiusMeters
	if radius <= 0 {
		radius = client.DefaultNearbyRadius
	}
	return &MapService{
		api:          api,
		log:          logging.Component(logger, "map"),
		metrics:      m,
		limiter:      rate.NewLimiter(rate.Every(cfg.ReachableEvery), cfg.ReachableBurst),
		nearbyRadius: radius,
	}
}

func (s *MapService) allow(call string) error {
	if s.limiter.Allow() {
		return nil
	}
	s.metrics.RateLimited(call)
	s.log.WithField("call", call).Warn("throttled by client-side rate limit")
	return ErrRateLimited
}

// NearbyUsers lists users around lat/lng. A radius <= 0 uses the configured
// default. Distances the backend leaves out are filled in locally.
func (s *MapService) NearbyUsers(ctx context.Context, lat, lng, radiusMeters float64) (*entities.NearbyUsers, error) {
	if radiusMeters <= 0 {
		radiusMeters = s.nearbyRadius
	}
	start := time.Now()
	out, err := s.api.NearbyUsers(ctx, lat, lng, radiusMeters)
	s.log.WithField("duration", time.Since(start)).Debug("nearby users")
	if err != nil {
		return nil, fail(err)
	}
	for _, u := range out.Users {
		if u.DistanceMeters == nil {
			d := utils.HaversineMeters(lat, lng, u.Latitude, u.Longitude)
			u.DistanceMeters = &d
		}
	}
	return out, nil
}

func (s *MapService) MyGPSLocation(ctx context.Context) (*entities.MyGPSLocation, error) {
	out, err := s.api.MyGPSLocation(ctx)
	if err != nil {
		return nil, fail(err)
	}
	return out, nil
}

func (s *MapService) UsersInArea(ctx context.Context, area string, includeEdge bool) (*entities.UsersInArea, error) {
	start := time.Now()
	out, err := s.api.UsersInArea(ctx, area, includeEdge)
	s.log.WithFields(logrus.Fields{"area": area, "duration": time.Since(start)}).Debug("users in area")
	if err != nil {
		return nil, fail(err)
	}
	return out, nil
}

// ReachableCount returns how many users (or devices) can be reached in
// area. An empty area counts everywhere.
func (s *MapService) ReachableCount(ctx context.Context, area string, countByDevice, includeNearby bool) (int, error) {
	if err := s.allow("reachable_count"); err != nil {
		return 0, fail(err)
	}
	start := time.Now()
	out, err := s.api.ReachableCount(ctx, area, countByDevice, includeNearby)
	entry := s.log.WithFields(logrus.Fields{"area": area, "duration": time.Since(start)})
	if err != nil {
		entry.WithError(err).Warn("reachable count failed")
		return 0, fail(err)
	}
	entry.WithField("count", out.Count).Debug("reachable count")
	return out.Count, nil
}

// ReachableByArea returns reachable counts keyed by area name.
func (s *MapService) ReachableByArea(ctx context.Context, countByDevice, includeNearby bool) (map[string]int, error) {
	if err := s.allow("reachable_by_area"); err != nil {
		return nil, fail(err)
	}
	start := time.Now()
	out, err := s.api.ReachableByArea(ctx, countByDevice, includeNearby)
	entry := s.log.WithField("duration", time.Since(start))
	if err != nil {
		entry.WithError(err).Warn("reachable by area failed")
		return nil, fail(err)
	}
	entry.WithField("areas", len(out.AreaCounts)).Debug("reachable by area")
	if out.AreaCounts == nil {
		return map[string]int{}, nil
	}
	return out.AreaCounts, nil
}

// UpdateGPS sends one fix to the backend.
func (s *MapService) UpdateGPS(ctx context.Context, fix entities.Fix, fastMode bool) (*entities.UpdateGPSLocationResponse, error) {
	req := &entities.UpdateGPSLocationRequest{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		FastMode:  fastMode,
	}
	if fix.Accuracy > 0 {
		acc := fix.Accuracy
		req.Accuracy = &acc
	}
	out, err := s.api.UpdateGPS(ctx, req)
	if err != nil {
		return nil, fail(err)
	}
	return out, nil
}
