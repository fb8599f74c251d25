package matching

import (
	"context"
	"sort"
	"time"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
	"service-dispatch/internal/logx"
)

// Candidate is one ranked courier for a pickup point.
type Candidate struct {
	Driver     domain.Driver
	DistanceKm float64
}

// Service ranks available couriers for a pickup point under the radius,
// capacity and re-offer filters.
type Service struct {
	drivers   driverSource
	offers    offerSource
	locations locationSource
	settings  domain.AssignmentSettings
	logger    logx.Logger
	now       func() time.Time
}

// NewService creates a matching Service. locations may be nil; stored driver
// coordinates are used then.
func NewService(drivers driverSource, offers offerSource, locations locationSource, settings domain.AssignmentSettings, logger logx.Logger) *Service {
	return &Service{
		drivers:   drivers,
		offers:    offers,
		locations: locations,
		settings:  settings,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Candidates returns the top candidate for the pickup point, or the top
// FanOutCount candidates when fan-out is enabled. clusterID, when set,
// activates the no-re-offer filter against that cluster's offer history.
// An empty result is not an error: the caller records it as "no candidate
// this cycle".
func (s *Service) Candidates(ctx context.Context, pickup domain.Coordinates, clusterID *int64) ([]Candidate, error) {
	pool, err := s.drivers.ListDispatchable(ctx)
	if err != nil {
		return nil, err
	}

	excluded, err := s.excludedDrivers(ctx, clusterID)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(pool))
	for _, d := range pool {
		if excluded[d.ID] {
			continue
		}

		dist := geo.VendorToDriverKm(pickup, s.position(ctx, d))
		if dist > s.settings.MaxDriverDistanceKm {
			continue
		}

		n, err := s.offers.CountPendingOffersByDriver(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		if n >= s.settings.MaxOffersPerDriver {
			continue
		}

		candidates = append(candidates, Candidate{Driver: d, DistanceKm: dist})
	}

	if s.settings.AssignNearestFirst {
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].DistanceKm != candidates[j].DistanceKm {
				return candidates[i].DistanceKm < candidates[j].DistanceKm
			}
			// deterministic tie-break
			return candidates[i].Driver.ID < candidates[j].Driver.ID
		})
	}

	limit := 1
	if s.settings.AllowMultipleDrivers {
		limit = s.settings.FanOutCount
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// excludedDrivers collects drivers who must not see this cluster again:
// anyone holding a live offer for it, and anyone who declined or let one
// expire, unless reassignment is on and the cool-down has passed.
func (s *Service) excludedDrivers(ctx context.Context, clusterID *int64) (map[int64]bool, error) {
	excluded := make(map[int64]bool)
	if clusterID == nil {
		return excluded, nil
	}

	history, err := s.offers.OffersByCluster(ctx, *clusterID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, o := range history {
		switch o.Status {
		case domain.OfferPending:
			excluded[o.DriverID] = true
		case domain.OfferDeclined, domain.OfferExpired:
			if !s.settings.EnableReassignment {
				excluded[o.DriverID] = true
				continue
			}
			respondedAt := o.ExpiresAt
			if o.ResponseTime != nil {
				respondedAt = *o.ResponseTime
			}
			if now.Sub(respondedAt) < s.settings.RetryDelay {
				excluded[o.DriverID] = true
			}
		}
	}
	return excluded, nil
}

// position prefers the cached live coordinate over the stored one.
func (s *Service) position(ctx context.Context, d domain.Driver) domain.Coordinates {
	if s.locations == nil {
		return d.Location
	}
	loc, err := s.locations.Get(ctx, d.ID)
	if err != nil {
		s.logger.Warn("driver position cache read failed",
			logx.Int64("driver_id", d.ID),
			logx.Any("err", err),
		)
		return d.Location
	}
	if loc == nil {
		return d.Location
	}
	return *loc
}
