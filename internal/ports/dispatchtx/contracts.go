// Package dispatchtx defines the transactional storage port of the dispatch
// engine. All offer/cluster transitions run through it so that driver actions
// and the sweeper serialize on the same rows.
package dispatchtx

import (
	"context"
	"time"

	"service-dispatch/internal/domain"
)

// Repository is the set of storage operations available inside one
// transaction. Conditional mutations (TransitionOffer, AssignCluster) report
// false instead of overwriting when the precondition no longer holds.
type Repository interface {
	InsertDelivery(ctx context.Context, d *domain.Delivery) (int64, error)
	GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error)
	GetDeliveryByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error)
	UpdateDeliveryStatus(ctx context.Context, id int64, status domain.DeliveryStatus) error
	AssignDelivery(ctx context.Context, id int64, at time.Time) (bool, error)

	InsertCluster(ctx context.Context, c *domain.DeliveryCluster) (int64, error)
	GetCluster(ctx context.Context, id int64) (*domain.DeliveryCluster, error)
	GetClusterForUpdate(ctx context.Context, id int64) (*domain.DeliveryCluster, error)
	ClustersByDelivery(ctx context.Context, deliveryID int64) ([]domain.DeliveryCluster, error)
	UpdateClusterStatus(ctx context.Context, id int64, status domain.ClusterStatus) error
	AssignCluster(ctx context.Context, clusterID, driverID int64, at time.Time) (bool, error)
	IncrementClusterRetry(ctx context.Context, clusterID int64, at time.Time) error

	InsertTracking(ctx context.Context, t *domain.ClusterTracking) error
	UpdateTracking(ctx context.Context, clusterID int64, status, location string) error

	InsertOffer(ctx context.Context, o *domain.Offer) (int64, error)
	GetOffer(ctx context.Context, id int64) (*domain.Offer, error)
	TransitionOffer(ctx context.Context, id int64, from, to domain.OfferStatus, at time.Time) (bool, error)
	CancelSiblingOffers(ctx context.Context, clusterID, winnerOfferID int64, at time.Time) (int64, error)
	CancelPendingOffersForDelivery(ctx context.Context, deliveryID int64, at time.Time) (int64, error)
	CountPendingOffersByDriver(ctx context.Context, driverID int64) (int, error)
	CountLiveOffersByCluster(ctx context.Context, clusterID int64) (int, error)
	OffersByCluster(ctx context.Context, clusterID int64) ([]domain.Offer, error)
}
