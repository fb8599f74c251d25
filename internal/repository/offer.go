package repository

import (
	"context"
	"fmt"
	"time"

	"service-dispatch/internal/domain"
)

const offerColumns = `id, kind, delivery_id, cluster_id, driver_id, status,
	offered_price, offer_time, expires_at, response_time, notes`

func scanOffer(row interface{ Scan(...any) error }) (*domain.Offer, error) {
	var o domain.Offer
	err := row.Scan(
		&o.ID, &o.Kind, &o.DeliveryID, &o.ClusterID, &o.DriverID, &o.Status,
		&o.OfferedPrice, &o.OfferTime, &o.ExpiresAt, &o.ResponseTime, &o.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// InsertOffer stores a new pending offer and returns its generated ID.
// The partial unique index on (cluster_id, driver_id) for pending rows makes
// a duplicate simultaneous offer a constraint violation.
func (s queries) InsertOffer(ctx context.Context, o *domain.Offer) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
        INSERT INTO driver_offers
            (kind, delivery_id, cluster_id, driver_id, status,
             offered_price, offer_time, expires_at, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id
    `, string(o.Kind), o.DeliveryID, o.ClusterID, o.DriverID, string(o.Status),
		o.OfferedPrice, o.OfferTime, o.ExpiresAt, o.Notes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert offer for driver %d: %w", o.DriverID, err)
	}
	return id, nil
}

// GetOffer returns an offer by ID, nil when absent.
func (s queries) GetOffer(ctx context.Context, id int64) (*domain.Offer, error) {
	o, err := scanOffer(s.q.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM driver_offers WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer %d: %w", id, err)
	}
	return o, nil
}

// TransitionOffer moves an offer from one status to another as a single
// conditional write. Returns false when the offer was no longer in the
// expected status, meaning the caller lost the race.
func (s queries) TransitionOffer(ctx context.Context, id int64, from, to domain.OfferStatus, at time.Time) (bool, error) {
	ct, err := s.q.Exec(ctx, `
        UPDATE driver_offers SET status=$3, response_time=$4
        WHERE id=$1 AND status=$2
    `, id, string(from), string(to), at)
	if err != nil {
		return false, fmt.Errorf("transition offer %d to %s: %w", id, to, err)
	}
	return ct.RowsAffected() > 0, nil
}

// CancelSiblingOffers cancels every other pending offer of a cluster after a
// fan-out acceptance. Returns the number of cancelled siblings.
func (s queries) CancelSiblingOffers(ctx context.Context, clusterID, winnerOfferID int64, at time.Time) (int64, error) {
	ct, err := s.q.Exec(ctx, `
        UPDATE driver_offers SET status='cancelled', response_time=$3
        WHERE cluster_id=$1 AND id<>$2 AND status='pending'
    `, clusterID, winnerOfferID, at)
	if err != nil {
		return 0, fmt.Errorf("cancel siblings of cluster %d: %w", clusterID, err)
	}
	return ct.RowsAffected(), nil
}

// CancelPendingOffersForDelivery cancels all pending offers of a delivery,
// used when the order flow cancels the delivery.
func (s queries) CancelPendingOffersForDelivery(ctx context.Context, deliveryID int64, at time.Time) (int64, error) {
	ct, err := s.q.Exec(ctx, `
        UPDATE driver_offers SET status='cancelled', response_time=$2
        WHERE delivery_id=$1 AND status='pending'
    `, deliveryID, at)
	if err != nil {
		return 0, fmt.Errorf("cancel offers of delivery %d: %w", deliveryID, err)
	}
	return ct.RowsAffected(), nil
}

// CancelPendingOffersByDriver cancels every pending offer held by a driver,
// used when the driver goes offline.
func (s queries) CancelPendingOffersByDriver(ctx context.Context, driverID int64, at time.Time) (int64, error) {
	ct, err := s.q.Exec(ctx, `
        UPDATE driver_offers SET status='cancelled', response_time=$2
        WHERE driver_id=$1 AND status='pending'
    `, driverID, at)
	if err != nil {
		return 0, fmt.Errorf("cancel offers of driver %d: %w", driverID, err)
	}
	return ct.RowsAffected(), nil
}

// CountPendingOffersByDriver returns how many offers a driver currently holds.
func (s queries) CountPendingOffersByDriver(ctx context.Context, driverID int64) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, `
        SELECT COUNT(*) FROM driver_offers WHERE driver_id=$1 AND status='pending'
    `, driverID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending offers of driver %d: %w", driverID, err)
	}
	return n, nil
}

// CountLiveOffersByCluster returns the number of pending offers of a cluster.
func (s queries) CountLiveOffersByCluster(ctx context.Context, clusterID int64) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, `
        SELECT COUNT(*) FROM driver_offers WHERE cluster_id=$1 AND status='pending'
    `, clusterID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count live offers of cluster %d: %w", clusterID, err)
	}
	return n, nil
}

// OffersByCluster returns the full offer history of a cluster.
func (s queries) OffersByCluster(ctx context.Context, clusterID int64) ([]domain.Offer, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+offerColumns+` FROM driver_offers
         WHERE cluster_id=$1 ORDER BY offer_time, id`, clusterID)
	if err != nil {
		return nil, fmt.Errorf("offers by cluster %d: %w", clusterID, err)
	}
	defer rows.Close()

	var out []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// PendingOffersByDriver returns the pending offers of a driver, oldest first.
func (s queries) PendingOffersByDriver(ctx context.Context, driverID int64) ([]domain.Offer, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+offerColumns+` FROM driver_offers
         WHERE driver_id=$1 AND status='pending' ORDER BY offer_time, id`, driverID)
	if err != nil {
		return nil, fmt.Errorf("pending offers of driver %d: %w", driverID, err)
	}
	defer rows.Close()

	var out []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// ExpireOverdueOffers flips every pending offer past its deadline to expired
// in one conditional statement and returns the expired rows. A concurrent
// accept that already won its row is untouched.
func (s queries) ExpireOverdueOffers(ctx context.Context, now time.Time) ([]domain.Offer, error) {
	rows, err := s.q.Query(ctx, `
        UPDATE driver_offers SET status='expired', response_time=$1
        WHERE status='pending' AND expires_at < $1
        RETURNING `+offerColumns, now)
	if err != nil {
		return nil, fmt.Errorf("expire overdue offers: %w", err)
	}
	defer rows.Close()

	var out []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
