package domain

import "time"

// DeliveryCluster - one vendor pickup leg of a delivery, independently
// dispatchable. Estimated values are computed before assignment; DistanceKm
// and Price hold post-assignment actuals.
type DeliveryCluster struct {
	ID                  int64
	DeliveryID          int64
	VendorID            int64
	VendorLocation      Coordinates
	Status              ClusterStatus
	EstimatedDistanceKm float64
	EstimatedPrice      float64
	DistanceKm          float64
	Price               float64
	AssignedDriverID    *int64
	AssignmentTime      *time.Time
	SequenceOrder       int
	PickupConfirmed     bool
	PickupConfirmedAt   *time.Time
	RetryCount          int
}

// ClusterTracking is the one-to-one tracking record of a cluster.
type ClusterTracking struct {
	ClusterID     int64
	Status        string
	Location      string
	LastRetryTime *time.Time
}
