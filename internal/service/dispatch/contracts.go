package dispatch

import (
	"context"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/ports/dispatchtx"
	"service-dispatch/internal/service/matching"
)

// repository is the storage surface the orchestrator needs.
type repository interface {
	WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) error
	GetCluster(ctx context.Context, id int64) (*domain.DeliveryCluster, error)
	GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error)
}

// candidateSource ranks drivers for a pickup point.
type candidateSource interface {
	Candidates(ctx context.Context, pickup domain.Coordinates, clusterID *int64) ([]matching.Candidate, error)
}

// offerDispatcher turns ranked candidates into pending offers.
type offerDispatcher interface {
	Dispatch(ctx context.Context, clusterID int64, candidates []matching.Candidate) ([]domain.Offer, error)
	DispatchDirect(ctx context.Context, deliveryID int64, candidates []matching.Candidate) ([]domain.Offer, error)
}

// driverSource resolves a driver for the manual assignment path.
type driverSource interface {
	Get(ctx context.Context, id int64) (*domain.Driver, error)
}

// statusPublisher emits cluster status change events.
type statusPublisher interface {
	PublishClusterStatus(ctx context.Context, e domain.ClusterStatusEvent) error
}
