package offer

import (
	"context"
	"time"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/ports/dispatchtx"
)

// repository combines the transactional port with the pool-level offer
// queries the lifecycle uses outside a transaction.
type repository interface {
	WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) error
	PendingOffersByDriver(ctx context.Context, driverID int64) ([]domain.Offer, error)
	CancelPendingOffersByDriver(ctx context.Context, driverID int64, at time.Time) (int64, error)
	ExpireOverdueOffers(ctx context.Context, now time.Time) ([]domain.Offer, error)
}

// statusPublisher emits cluster status change events.
type statusPublisher interface {
	PublishClusterStatus(ctx context.Context, e domain.ClusterStatusEvent) error
}

// counter is the subset of prometheus.Counter the service needs.
type counter interface {
	Inc()
}
