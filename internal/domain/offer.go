package domain

import "time"

// Offer - a time-boxed proposal of a cluster or a whole single-leg delivery
// to one driver. Cluster offers carry a cluster reference; direct offers only
// reference the delivery. Both share the same lifecycle.
type Offer struct {
	ID           int64
	Kind         OfferKind
	DeliveryID   int64
	ClusterID    *int64
	DriverID     int64
	Status       OfferStatus
	OfferedPrice float64
	OfferTime    time.Time
	ExpiresAt    time.Time
	ResponseTime *time.Time
	Notes        string
}

// Terminal reports whether the offer can no longer transition.
func (o Offer) Terminal() bool { return o.Status.Terminal() }

// ExpiredAt reports whether the offer deadline has passed at the given time.
func (o Offer) ExpiredAt(now time.Time) bool { return now.After(o.ExpiresAt) }
