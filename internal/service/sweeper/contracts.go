package sweeper

import (
	"context"
	"time"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/ports/dispatchtx"
)

// expirer flips overdue pending offers to expired.
type expirer interface {
	ExpireOverdue(ctx context.Context) ([]domain.Offer, error)
}

// repository is the storage surface of a sweep cycle.
type repository interface {
	WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) error
	ClustersForRetry(ctx context.Context, cutoff time.Time) ([]domain.DeliveryCluster, error)
	IncrementClusterRetry(ctx context.Context, clusterID int64, at time.Time) error
	DeliveriesForRetry(ctx context.Context, cutoff time.Time) ([]domain.Delivery, error)
	IncrementDeliveryRetry(ctx context.Context, deliveryID int64, at time.Time) error
}

// assigner re-dispatches an unassigned cluster or legless delivery.
type assigner interface {
	AutoAssign(ctx context.Context, clusterID int64, pickupOverride *domain.Coordinates) ([]domain.Offer, error)
	AutoAssignDirect(ctx context.Context, deliveryID int64) ([]domain.Offer, error)
}

// statusPublisher emits cluster status change events.
type statusPublisher interface {
	PublishClusterStatus(ctx context.Context, e domain.ClusterStatusEvent) error
}

// counter is the subset of prometheus.Counter the sweeper needs.
type counter interface {
	Inc()
}
