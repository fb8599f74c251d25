// Package offer owns the offer lifecycle: creation, driver responses and
// cancellation. Every transition is a conditional write inside a transaction,
// so a driver accept and a sweeper expiry can never both win the same row.
package offer

import (
	"context"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/dispatchtx"
	"service-dispatch/internal/service/matching"
)

// Service drives offers through their state machine.
type Service struct {
	repo       repository
	publisher  statusPublisher
	settings   domain.AssignmentSettings
	logger     logx.Logger
	dispatched counter
	now        func() time.Time
}

// NewService creates an offer Service. publisher may be nil; events are
// dropped then.
func NewService(repo repository, publisher statusPublisher, settings domain.AssignmentSettings, dispatched counter, logger logx.Logger) *Service {
	return &Service{
		repo:       repo,
		publisher:  publisher,
		settings:   settings,
		logger:     logger,
		dispatched: dispatched,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch creates a pending offer per candidate for a cluster and moves the
// cluster to offered. The cluster must still be matchable and its delivery
// alive, checked under a row lock so a concurrent cancel wins cleanly.
func (s *Service) Dispatch(ctx context.Context, clusterID int64, candidates []matching.Candidate) ([]domain.Offer, error) {
	if len(candidates) == 0 {
		return nil, apperr.ErrNoCandidate
	}

	var (
		out        []domain.Offer
		deliveryID int64
	)
	err := s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		c, err := tx.GetClusterForUpdate(ctx, clusterID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.ErrNotFound
		}
		if !c.Status.Matchable() {
			return apperr.ErrConflict
		}

		d, err := tx.GetDelivery(ctx, c.DeliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.Status.Terminal() {
			return apperr.ErrConflict
		}
		deliveryID = d.ID

		now := s.now()
		for _, cand := range candidates {
			o := domain.Offer{
				Kind:         domain.OfferKindCluster,
				DeliveryID:   c.DeliveryID,
				ClusterID:    &clusterID,
				DriverID:     cand.Driver.ID,
				Status:       domain.OfferPending,
				OfferedPrice: c.EstimatedPrice,
				OfferTime:    now,
				ExpiresAt:    now.Add(s.settings.OfferExpiry),
			}
			id, err := tx.InsertOffer(ctx, &o)
			if err != nil {
				return err
			}
			o.ID = id
			out = append(out, o)
		}

		if c.Status == domain.ClusterPending {
			if err := tx.UpdateClusterStatus(ctx, clusterID, domain.ClusterOffered); err != nil {
				return err
			}
		}
		return tx.UpdateTracking(ctx, clusterID, string(domain.ClusterOffered), "awaiting driver response")
	})
	if err != nil {
		return nil, err
	}

	for range out {
		s.dispatched.Inc()
	}
	s.publish(ctx, domain.ClusterStatusEvent{
		DeliveryID: deliveryID,
		ClusterID:  &clusterID,
		Status:     string(domain.ClusterOffered),
		At:         s.now(),
	})

	s.logger.Info("offers dispatched",
		logx.String("event", "offers_dispatched"),
		logx.Int64("cluster_id", clusterID),
		logx.Int("offers", len(out)),
	)
	return out, nil
}

// DispatchDirect offers a whole single-leg delivery without a cluster. The
// offered price is the delivery fee.
func (s *Service) DispatchDirect(ctx context.Context, deliveryID int64, candidates []matching.Candidate) ([]domain.Offer, error) {
	if len(candidates) == 0 {
		return nil, apperr.ErrNoCandidate
	}

	var out []domain.Offer
	err := s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		d, err := tx.GetDelivery(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.Status != domain.DeliveryPending && d.Status != domain.DeliveryDispatching {
			return apperr.ErrConflict
		}

		now := s.now()
		for _, cand := range candidates {
			o := domain.Offer{
				Kind:         domain.OfferKindDirect,
				DeliveryID:   deliveryID,
				DriverID:     cand.Driver.ID,
				Status:       domain.OfferPending,
				OfferedPrice: d.Fee,
				OfferTime:    now,
				ExpiresAt:    now.Add(s.settings.OfferExpiry),
			}
			id, err := tx.InsertOffer(ctx, &o)
			if err != nil {
				return err
			}
			o.ID = id
			out = append(out, o)
		}
		return tx.UpdateDeliveryStatus(ctx, deliveryID, domain.DeliveryDispatching)
	})
	if err != nil {
		return nil, err
	}

	for range out {
		s.dispatched.Inc()
	}
	s.logger.Info("direct offers dispatched",
		logx.String("event", "offers_dispatched"),
		logx.Int64("delivery_id", deliveryID),
		logx.Int("offers", len(out)),
	)
	return out, nil
}

// Accept is the driver's acceptance of an offer. It wins only when the offer
// is still pending, not past its deadline, and nobody holds the cluster yet.
// Every losing path returns ErrConflict and leaves all rows untouched.
func (s *Service) Accept(ctx context.Context, offerID, driverID int64) (*domain.Offer, error) {
	var (
		accepted *domain.Offer
		evt      domain.ClusterStatusEvent
	)
	err := s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		o, err := tx.GetOffer(ctx, offerID)
		if err != nil {
			return err
		}
		if o == nil || o.DriverID != driverID {
			return apperr.ErrNotFound
		}
		if o.Status != domain.OfferPending {
			return apperr.ErrConflict
		}

		now := s.now()
		if o.ExpiredAt(now) {
			// past the deadline; the sweeper flips the row
			return apperr.ErrConflict
		}

		d, err := tx.GetDelivery(ctx, o.DeliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.Status.Terminal() {
			return apperr.ErrConflict
		}

		if o.Kind == domain.OfferKindCluster {
			if err := s.acceptCluster(ctx, tx, o, now); err != nil {
				return err
			}
		} else {
			if err := s.acceptDirect(ctx, tx, o, now); err != nil {
				return err
			}
		}

		o.Status = domain.OfferAccepted
		o.ResponseTime = &now
		accepted = o
		evt = domain.ClusterStatusEvent{
			DeliveryID: o.DeliveryID,
			ClusterID:  o.ClusterID,
			Status:     string(domain.ClusterAssigned),
			DriverID:   &driverID,
			At:         now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, evt)
	s.logger.Info("offer accepted",
		logx.String("event", "offer_accepted"),
		logx.Int64("offer_id", offerID),
		logx.Int64("driver_id", driverID),
	)
	return accepted, nil
}

// acceptCluster runs the cluster half of an acceptance under the cluster row
// lock: flip the offer, claim the cluster, cancel the fan-out siblings.
func (s *Service) acceptCluster(ctx context.Context, tx dispatchtx.Repository, o *domain.Offer, now time.Time) error {
	c, err := tx.GetClusterForUpdate(ctx, *o.ClusterID)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.ErrNotFound
	}
	if c.AssignedDriverID != nil || !c.Status.Matchable() {
		return apperr.ErrConflict
	}

	ok, err := tx.TransitionOffer(ctx, o.ID, domain.OfferPending, domain.OfferAccepted, now)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrConflict
	}

	ok, err = tx.AssignCluster(ctx, *o.ClusterID, o.DriverID, now)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrConflict
	}

	if _, err := tx.CancelSiblingOffers(ctx, *o.ClusterID, o.ID, now); err != nil {
		return err
	}
	if err := tx.UpdateTracking(ctx, *o.ClusterID, string(domain.ClusterAssigned), "driver en route to pickup"); err != nil {
		return err
	}

	// once every cluster of the delivery has a driver, the delivery follows
	clusters, err := tx.ClustersByDelivery(ctx, o.DeliveryID)
	if err != nil {
		return err
	}
	for _, sibling := range clusters {
		if sibling.ID == *o.ClusterID {
			continue
		}
		if sibling.AssignedDriverID == nil && !sibling.Status.Terminal() {
			return nil
		}
	}
	return tx.UpdateDeliveryStatus(ctx, o.DeliveryID, domain.DeliveryAssigned)
}

// acceptDirect runs the legless half of an acceptance: flip the offer, claim
// the delivery with a conditional write, cancel the fan-out siblings. The
// delivery claim is the single-writer gate; the second acceptor loses there.
func (s *Service) acceptDirect(ctx context.Context, tx dispatchtx.Repository, o *domain.Offer, now time.Time) error {
	ok, err := tx.TransitionOffer(ctx, o.ID, domain.OfferPending, domain.OfferAccepted, now)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrConflict
	}

	ok, err = tx.AssignDelivery(ctx, o.DeliveryID, now)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrConflict
	}

	_, err = tx.CancelPendingOffersForDelivery(ctx, o.DeliveryID, now)
	return err
}

// Decline records the driver's refusal. A cluster left with no live offers
// drops back to pending so the sweeper re-dispatches it.
func (s *Service) Decline(ctx context.Context, offerID, driverID int64) error {
	err := s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		o, err := tx.GetOffer(ctx, offerID)
		if err != nil {
			return err
		}
		if o == nil || o.DriverID != driverID {
			return apperr.ErrNotFound
		}

		now := s.now()
		ok, err := tx.TransitionOffer(ctx, o.ID, domain.OfferPending, domain.OfferDeclined, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrConflict
		}
		if o.ClusterID == nil {
			return nil
		}
		return s.releaseCluster(ctx, tx, *o.ClusterID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("offer declined",
		logx.String("event", "offer_declined"),
		logx.Int64("offer_id", offerID),
		logx.Int64("driver_id", driverID),
	)
	return nil
}

// Cancel withdraws a driver's own pending offer. A mismatched driver gets
// not-found, same as Accept and Decline, so offer IDs leak nothing.
func (s *Service) Cancel(ctx context.Context, offerID, driverID int64) error {
	err := s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		o, err := tx.GetOffer(ctx, offerID)
		if err != nil {
			return err
		}
		if o == nil || o.DriverID != driverID {
			return apperr.ErrNotFound
		}

		ok, err := tx.TransitionOffer(ctx, o.ID, domain.OfferPending, domain.OfferCancelled, s.now())
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrConflict
		}
		if o.ClusterID == nil {
			return nil
		}
		return s.releaseCluster(ctx, tx, *o.ClusterID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("offer cancelled",
		logx.String("event", "offer_cancelled"),
		logx.Int64("offer_id", offerID),
		logx.Int64("driver_id", driverID),
	)
	return nil
}

// CancelForDriver withdraws every pending offer a driver holds, used when the
// driver goes offline. Clusters stay offered; the sweeper notices the missing
// live offers and re-dispatches them on its next cycle.
func (s *Service) CancelForDriver(ctx context.Context, driverID int64) (int64, error) {
	n, err := s.repo.CancelPendingOffersByDriver(ctx, driverID, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("driver offers withdrawn",
			logx.String("event", "offers_withdrawn"),
			logx.Int64("driver_id", driverID),
			logx.Int64("count", n),
		)
	}
	return n, nil
}

// PendingOffers returns the driver's open offers, oldest first.
func (s *Service) PendingOffers(ctx context.Context, driverID int64) ([]domain.Offer, error) {
	return s.repo.PendingOffersByDriver(ctx, driverID)
}

// ExpireOverdue flips every pending offer past its deadline to expired and
// returns the flipped rows. Only the sweeper calls this.
func (s *Service) ExpireOverdue(ctx context.Context) ([]domain.Offer, error) {
	return s.repo.ExpireOverdueOffers(ctx, s.now())
}

// releaseCluster drops an offered cluster back to pending when its last live
// offer is gone.
func (s *Service) releaseCluster(ctx context.Context, tx dispatchtx.Repository, clusterID int64) error {
	c, err := tx.GetClusterForUpdate(ctx, clusterID)
	if err != nil {
		return err
	}
	if c == nil || c.Status != domain.ClusterOffered {
		return nil
	}

	live, err := tx.CountLiveOffersByCluster(ctx, clusterID)
	if err != nil {
		return err
	}
	if live > 0 {
		return nil
	}
	if err := tx.UpdateClusterStatus(ctx, clusterID, domain.ClusterPending); err != nil {
		return err
	}
	return tx.UpdateTracking(ctx, clusterID, string(domain.ClusterPending), "awaiting dispatch")
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
