//go:generate mockgen -source=contracts.go -destination=delivery_mocks_test.go -package=delivery

package delivery

import (
	"context"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/ports/dispatchtx"
)

// repository is the storage surface for the delivery flow.
type repository interface {
	WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) error
	GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error)
	GetDeliveryByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error)
}

// clusterBuilder splits a delivery into per-vendor clusters.
type clusterBuilder interface {
	BuildForDelivery(ctx context.Context, deliveryID int64, legs []domain.VendorLeg) ([]domain.DeliveryCluster, error)
}

// assigner triggers dispatch for a fresh cluster or direct delivery.
type assigner interface {
	AutoAssign(ctx context.Context, clusterID int64, pickupOverride *domain.Coordinates) ([]domain.Offer, error)
	AutoAssignDirect(ctx context.Context, deliveryID int64) ([]domain.Offer, error)
}

// statusPublisher emits cluster status change events.
type statusPublisher interface {
	PublishClusterStatus(ctx context.Context, e domain.ClusterStatusEvent) error
}
