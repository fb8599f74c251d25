// Package delivery handles the inbound order flow: new deliveries coming off
// the checkout stream get split into clusters and dispatched, cancellations
// tear the open legs and offers down again.
package delivery

import (
	"context"
	"errors"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/dispatchtx"
)

// NewDelivery is a delivery request from checkout.
type NewDelivery struct {
	OrderID        string
	Pickup         domain.Coordinates
	Dropoff        domain.Coordinates
	DropoffAddress string
	Fee            float64
	Legs           []domain.VendorLeg
}

// Service processes delivery creation and cancellation.
type Service struct {
	repo      repository
	builder   clusterBuilder
	assigner  assigner
	publisher statusPublisher
	logger    logx.Logger
	now       func() time.Time
}

// NewService creates a delivery Service.
func NewService(repo repository, builder clusterBuilder, assigner assigner, publisher statusPublisher, logger logx.Logger) *Service {
	return &Service{
		repo:      repo,
		builder:   builder,
		assigner:  assigner,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a delivery, builds its clusters and kicks off dispatch.
// Replayed order events are absorbed: an order already known returns its
// existing delivery ID untouched. Dispatch finding no driver is not an error
// here; the sweeper keeps retrying.
func (s *Service) Create(ctx context.Context, in NewDelivery) (int64, error) {
	if in.OrderID == "" || !in.Pickup.Valid() || !in.Dropoff.Valid() {
		return 0, apperr.ErrInvalid
	}
	for _, leg := range in.Legs {
		if leg.VendorID <= 0 || !leg.Location.Valid() {
			return 0, apperr.ErrInvalid
		}
	}

	existing, err := s.repo.GetDeliveryByOrderID(ctx, in.OrderID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		s.logger.Debug("delivery event replayed",
			logx.String("order_id", in.OrderID),
			logx.Int64("delivery_id", existing.ID),
		)
		// A replay can land after the insert committed but before the split
		// ran. Pending means dispatch never started; finish the job here.
		// BuildForDelivery returns existing clusters untouched, so a replay
		// of a completed create is still a no-op.
		if existing.Status == domain.DeliveryPending {
			if len(in.Legs) == 0 {
				s.tryAssignDirect(ctx, existing.ID)
				return existing.ID, nil
			}
			clusters, err := s.builder.BuildForDelivery(ctx, existing.ID, in.Legs)
			if err != nil {
				return 0, err
			}
			for _, c := range clusters {
				s.tryAssign(ctx, c.ID)
			}
		}
		return existing.ID, nil
	}

	var deliveryID int64
	err = s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		id, err := tx.InsertDelivery(ctx, &domain.Delivery{
			OrderID:        in.OrderID,
			Pickup:         in.Pickup,
			Dropoff:        in.Dropoff,
			DropoffAddress: in.DropoffAddress,
			Fee:            in.Fee,
			Status:         domain.DeliveryPending,
		})
		if err != nil {
			return err
		}
		deliveryID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("delivery created",
		logx.String("event", "delivery_created"),
		logx.String("order_id", in.OrderID),
		logx.Int64("delivery_id", deliveryID),
		logx.Int("legs", len(in.Legs)),
	)

	if len(in.Legs) == 0 {
		s.tryAssignDirect(ctx, deliveryID)
		return deliveryID, nil
	}

	clusters, err := s.builder.BuildForDelivery(ctx, deliveryID, in.Legs)
	if err != nil {
		return 0, err
	}
	for _, c := range clusters {
		s.tryAssign(ctx, c.ID)
	}
	return deliveryID, nil
}

// Cancel tears a delivery down: pending offers withdrawn, open clusters
// cancelled, the delivery itself marked cancelled. Already-cancelled
// deliveries are a no-op, delivered ones a conflict.
func (s *Service) Cancel(ctx context.Context, orderID string) error {
	d, err := s.repo.GetDeliveryByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if d == nil {
		return apperr.ErrNotFound
	}
	return s.cancelByID(ctx, d.ID)
}

// CancelByID cancels a delivery addressed by its own ID.
func (s *Service) CancelByID(ctx context.Context, deliveryID int64) error {
	d, err := s.repo.GetDelivery(ctx, deliveryID)
	if err != nil {
		return err
	}
	if d == nil {
		return apperr.ErrNotFound
	}
	return s.cancelByID(ctx, deliveryID)
}

func (s *Service) cancelByID(ctx context.Context, deliveryID int64) error {
	var events []domain.ClusterStatusEvent
	err := s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		d, err := tx.GetDelivery(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.Status == domain.DeliveryCancelled {
			return nil
		}
		if d.Status.Terminal() {
			return apperr.ErrConflict
		}

		now := s.now()
		if _, err := tx.CancelPendingOffersForDelivery(ctx, deliveryID, now); err != nil {
			return err
		}

		clusters, err := tx.ClustersByDelivery(ctx, deliveryID)
		if err != nil {
			return err
		}
		for _, c := range clusters {
			if c.Status.Terminal() {
				continue
			}
			if err := tx.UpdateClusterStatus(ctx, c.ID, domain.ClusterCancelled); err != nil {
				return err
			}
			if err := tx.UpdateTracking(ctx, c.ID, string(domain.ClusterCancelled), "delivery cancelled"); err != nil {
				return err
			}
			clusterID := c.ID
			events = append(events, domain.ClusterStatusEvent{
				DeliveryID: deliveryID,
				ClusterID:  &clusterID,
				Status:     string(domain.ClusterCancelled),
				DriverID:   c.AssignedDriverID,
				At:         now,
			})
		}

		return tx.UpdateDeliveryStatus(ctx, deliveryID, domain.DeliveryCancelled)
	})
	if err != nil {
		return err
	}

	for _, e := range events {
		s.publish(ctx, e)
	}
	s.logger.Info("delivery cancelled",
		logx.String("event", "delivery_cancelled"),
		logx.Int64("delivery_id", deliveryID),
		logx.Int("clusters", len(events)),
	)
	return nil
}

// tryAssign dispatches a cluster, treating "no driver right now" and races as
// normal outcomes.
func (s *Service) tryAssign(ctx context.Context, clusterID int64) {
	_, err := s.assigner.AutoAssign(ctx, clusterID, nil)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNoCandidate), errors.Is(err, apperr.ErrConflict):
		s.logger.Debug("initial dispatch deferred",
			logx.Int64("cluster_id", clusterID),
			logx.Any("reason", err),
		)
	default:
		s.logger.Error("initial dispatch failed",
			logx.Int64("cluster_id", clusterID),
			logx.Any("err", err),
		)
	}
}

func (s *Service) tryAssignDirect(ctx context.Context, deliveryID int64) {
	_, err := s.assigner.AutoAssignDirect(ctx, deliveryID)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNoCandidate), errors.Is(err, apperr.ErrConflict):
		s.logger.Debug("initial dispatch deferred",
			logx.Int64("delivery_id", deliveryID),
			logx.Any("reason", err),
		)
	default:
		s.logger.Error("initial dispatch failed",
			logx.Int64("delivery_id", deliveryID),
			logx.Any("err", err),
		)
	}
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
