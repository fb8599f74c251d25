package matching

import (
	"context"

	"service-dispatch/internal/domain"
)

// driverSource lists couriers eligible to receive work.
type driverSource interface {
	ListDispatchable(ctx context.Context) ([]domain.Driver, error)
}

// offerSource exposes the offer history needed for capacity and
// re-offer filtering.
type offerSource interface {
	CountPendingOffersByDriver(ctx context.Context, driverID int64) (int, error)
	OffersByCluster(ctx context.Context, clusterID int64) ([]domain.Offer, error)
}

// locationSource returns the freshest known driver position, nil on a miss.
type locationSource interface {
	Get(ctx context.Context, driverID int64) (*domain.Coordinates, error)
}
