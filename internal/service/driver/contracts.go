package driver

import (
	"context"
	"time"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/gateway/drivers"
)

// driverRepository is the drivers table surface.
type driverRepository interface {
	Get(ctx context.Context, id int64) (*domain.Driver, error)
	List(ctx context.Context, limit, offset *int) ([]domain.Driver, error)
	ListDispatchable(ctx context.Context) ([]domain.Driver, error)
	Create(ctx context.Context, d *domain.Driver) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate) (bool, error)
	UpdateLocation(ctx context.Context, id int64, loc domain.Coordinates, at time.Time) (bool, error)
	SetAvailability(ctx context.Context, id int64, available bool) (bool, error)
}

// locationCache keeps the latest driver position for matching.
type locationCache interface {
	Set(ctx context.Context, driverID int64, loc domain.Coordinates) error
	Remove(ctx context.Context, driverID int64) error
}

// offerWithdrawer pulls back every pending offer of a driver going offline.
type offerWithdrawer interface {
	CancelForDriver(ctx context.Context, driverID int64) (int64, error)
}

// profileGateway reads courier profiles from the marketplace profile service.
type profileGateway interface {
	GetByID(ctx context.Context, id int64) (*drivers.Profile, error)
}
