package handlers

import (
	"context"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/repository"
	clustersvc "service-dispatch/internal/service/cluster"
	dispatchsvc "service-dispatch/internal/service/dispatch"
	driversvc "service-dispatch/internal/service/driver"
	offersvc "service-dispatch/internal/service/offer"
)

type offerUsecase interface {
	Accept(ctx context.Context, offerID, driverID int64) (*domain.Offer, error)
	Decline(ctx context.Context, offerID, driverID int64) error
	Cancel(ctx context.Context, offerID, driverID int64) error
	PendingOffers(ctx context.Context, driverID int64) ([]domain.Offer, error)
}

// NewOfferUsecase wires the offer service into an offerUsecase.
func NewOfferUsecase(svc *offersvc.Service) offerUsecase {
	return svc
}

type clusterUsecase interface {
	CreateCluster(ctx context.Context, deliveryID int64, leg domain.VendorLeg) (int64, error)
	Split(ctx context.Context, deliveryID, clusterID, driverID int64) (*domain.DeliveryCluster, error)
}

// NewClusterUsecase wires the cluster builder into a clusterUsecase.
func NewClusterUsecase(svc *clustersvc.Builder) clusterUsecase {
	return svc
}

type assignUsecase interface {
	AutoAssign(ctx context.Context, clusterID int64, pickupOverride *domain.Coordinates) ([]domain.Offer, error)
	AssignDriver(ctx context.Context, clusterID, driverID int64) error
}

// NewAssignUsecase wires the dispatch service into an assignUsecase.
func NewAssignUsecase(svc *dispatchsvc.Service) assignUsecase {
	return svc
}

type clusterQueries interface {
	UnassignedClusters(ctx context.Context) ([]domain.DeliveryCluster, error)
	GetTracking(ctx context.Context, clusterID int64) (*domain.ClusterTracking, error)
}

// NewClusterQueries exposes the read-side cluster queries.
func NewClusterQueries(repo *repository.DispatchRepo) clusterQueries {
	return repo
}

type driverUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Driver, error)
	List(ctx context.Context, limit, offset *int) ([]domain.Driver, error)
	Create(ctx context.Context, d *domain.Driver) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate) error
	UpdateLocation(ctx context.Context, id int64, loc domain.Coordinates) error
	SetAvailability(ctx context.Context, id int64, available bool) error
	SyncProfile(ctx context.Context, id int64) (*domain.Driver, error)
}

// NewDriverUsecase wires the driver service into a driverUsecase.
func NewDriverUsecase(svc *driversvc.Service) driverUsecase {
	return svc
}
