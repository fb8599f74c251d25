// Package dispatch glues matching and the offer lifecycle together: rank
// drivers for a pickup point, then turn the winners into offers. It also
// carries the operator's manual assignment override.
package dispatch

import (
	"context"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/dispatchtx"
)

// Service orchestrates driver assignment for clusters and direct deliveries.
type Service struct {
	repo      repository
	matcher   candidateSource
	offers    offerDispatcher
	drivers   driverSource
	publisher statusPublisher
	logger    logx.Logger
	now       func() time.Time
}

// NewService creates a dispatch Service.
func NewService(repo repository, matcher candidateSource, offers offerDispatcher, drivers driverSource, publisher statusPublisher, logger logx.Logger) *Service {
	return &Service{
		repo:      repo,
		matcher:   matcher,
		offers:    offers,
		drivers:   drivers,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AutoAssign ranks drivers around the cluster's pickup point and offers the
// cluster to the winners. pickupOverride replaces the vendor location when the
// operator dispatches from a different point. Returns ErrNoCandidate when no
// driver passes the filters; the caller decides whether that means retry.
func (s *Service) AutoAssign(ctx context.Context, clusterID int64, pickupOverride *domain.Coordinates) ([]domain.Offer, error) {
	c, err := s.repo.GetCluster(ctx, clusterID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	if !c.Status.Matchable() {
		return nil, apperr.ErrConflict
	}

	pickup := c.VendorLocation
	if pickupOverride != nil {
		if !pickupOverride.Valid() {
			return nil, apperr.ErrInvalid
		}
		pickup = *pickupOverride
	}

	candidates, err := s.matcher.Candidates(ctx, pickup, &clusterID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		s.logger.Debug("no candidate for cluster",
			logx.Int64("cluster_id", clusterID),
		)
		return nil, apperr.ErrNoCandidate
	}

	return s.offers.Dispatch(ctx, clusterID, candidates)
}

// AutoAssignDirect offers a clusterless delivery from its own pickup point.
func (s *Service) AutoAssignDirect(ctx context.Context, deliveryID int64) ([]domain.Offer, error) {
	d, err := s.repo.GetDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	if d.Status != domain.DeliveryPending && d.Status != domain.DeliveryDispatching {
		return nil, apperr.ErrConflict
	}

	candidates, err := s.matcher.Candidates(ctx, d.Pickup, nil)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperr.ErrNoCandidate
	}

	return s.offers.DispatchDirect(ctx, deliveryID, candidates)
}

// AssignDriver is the operator's manual override: claim the cluster for the
// given driver directly, withdrawing any outstanding offers. The driver must
// still be dispatchable; the radius and capacity filters do not apply.
func (s *Service) AssignDriver(ctx context.Context, clusterID, driverID int64) error {
	driver, err := s.drivers.Get(ctx, driverID)
	if err != nil {
		return err
	}
	if driver == nil {
		return apperr.ErrNotFound
	}
	if !driver.Dispatchable() {
		return apperr.ErrConflict
	}

	var evt domain.ClusterStatusEvent
	err = s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		c, err := tx.GetClusterForUpdate(ctx, clusterID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.ErrNotFound
		}

		now := s.now()
		ok, err := tx.AssignCluster(ctx, clusterID, driverID, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrConflict
		}

		// withdraw every outstanding offer; nobody accepted first
		if _, err := tx.CancelSiblingOffers(ctx, clusterID, 0, now); err != nil {
			return err
		}
		if err := tx.UpdateTracking(ctx, clusterID, string(domain.ClusterAssigned), "driver en route to pickup"); err != nil {
			return err
		}
		if err := s.rollUpDelivery(ctx, tx, c.DeliveryID, clusterID); err != nil {
			return err
		}

		evt = domain.ClusterStatusEvent{
			DeliveryID: c.DeliveryID,
			ClusterID:  &clusterID,
			Status:     string(domain.ClusterAssigned),
			DriverID:   &driverID,
			At:         now,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, evt)
	s.logger.Info("driver assigned manually",
		logx.String("event", "manual_assignment"),
		logx.Int64("cluster_id", clusterID),
		logx.Int64("driver_id", driverID),
	)
	return nil
}

// rollUpDelivery marks the delivery assigned once its last open cluster got a
// driver.
func (s *Service) rollUpDelivery(ctx context.Context, tx dispatchtx.Repository, deliveryID, justAssigned int64) error {
	clusters, err := tx.ClustersByDelivery(ctx, deliveryID)
	if err != nil {
		return err
	}
	for _, c := range clusters {
		if c.ID == justAssigned {
			continue
		}
		if c.AssignedDriverID == nil && !c.Status.Terminal() {
			return nil
		}
	}
	return tx.UpdateDeliveryStatus(ctx, deliveryID, domain.DeliveryAssigned)
}

func (s *Service) publish(ctx context.Context, e domain.ClusterStatusEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishClusterStatus(ctx, e); err != nil {
		s.logger.Warn("cluster status event publish failed",
			logx.Int64("delivery_id", e.DeliveryID),
			logx.String("status", e.Status),
			logx.Any("err", err),
		)
	}
}
