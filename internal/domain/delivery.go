package domain

import "time"

// Delivery - one shipment tied to a marketplace order. Multi-leg deliveries
// reference a parent delivery and carry a sequence number.
type Delivery struct {
	ID               int64
	OrderID          string
	ParentDeliveryID *int64
	SequenceOrder    int
	Pickup           Coordinates
	Dropoff          Coordinates
	DropoffAddress   string
	Fee              float64
	Status           DeliveryStatus
	RetryCount       int
	LastRetryTime    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// VendorLeg is one vendor pickup point contributing items to a delivery.
type VendorLeg struct {
	VendorID      int64
	Location      Coordinates
	SequenceOrder int
}
