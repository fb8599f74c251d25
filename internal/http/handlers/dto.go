package handlers

import "time"

type offerDTO struct {
	ID           int64      `json:"id"`
	Kind         string     `json:"kind"`
	DeliveryID   int64      `json:"delivery_id"`
	ClusterID    *int64     `json:"cluster_id,omitempty"`
	DriverID     int64      `json:"driver_id"`
	Status       string     `json:"status"`
	OfferedPrice float64    `json:"offered_price"`
	OfferTime    time.Time  `json:"offer_time"`
	ExpiresAt    time.Time  `json:"expires_at"`
	ResponseTime *time.Time `json:"response_time,omitempty"`
}

type clusterDTO struct {
	ID                  int64      `json:"id"`
	DeliveryID          int64      `json:"delivery_id"`
	VendorID            int64      `json:"vendor_id"`
	VendorLat           float64    `json:"vendor_lat"`
	VendorLon           float64    `json:"vendor_lon"`
	Status              string     `json:"status"`
	EstimatedDistanceKm float64    `json:"estimated_distance_km"`
	EstimatedPrice      float64    `json:"estimated_price"`
	AssignedDriverID    *int64     `json:"assigned_driver_id,omitempty"`
	AssignmentTime      *time.Time `json:"assignment_time,omitempty"`
	SequenceOrder       int        `json:"sequence_order"`
	RetryCount          int        `json:"retry_count"`
}

type trackingDTO struct {
	ClusterID     int64      `json:"cluster_id"`
	Status        string     `json:"status"`
	Location      string     `json:"location"`
	LastRetryTime *time.Time `json:"last_retry_time,omitempty"`
}

type driverDTO struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Available     bool    `json:"available"`
	AccountStatus string  `json:"account_status"`
	VehicleType   string  `json:"vehicle_type"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
}

type createDriverRequest struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	VehicleType string  `json:"vehicle_type"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

type updateDriverRequest struct {
	Name          *string `json:"name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Available     *bool   `json:"available,omitempty"`
	AccountStatus *string `json:"account_status,omitempty"`
	VehicleType   *string `json:"vehicle_type,omitempty"`
}

type locationRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

type driverActionRequest struct {
	DriverID int64 `json:"driver_id"`
}

type createClusterRequest struct {
	DeliveryID    int64   `json:"delivery_id"`
	VendorID      int64   `json:"vendor_id"`
	VendorLat     float64 `json:"vendor_lat"`
	VendorLon     float64 `json:"vendor_lon"`
	SequenceOrder int     `json:"sequence_order,omitempty"`
}

type autoAssignRequest struct {
	PickupLat *float64 `json:"pickup_lat,omitempty"`
	PickupLon *float64 `json:"pickup_lon,omitempty"`
}

type assignDriverRequest struct {
	DriverID int64 `json:"driver_id"`
}

type splitClusterRequest struct {
	DeliveryID int64 `json:"delivery_id"`
	DriverID   int64 `json:"driver_id"`
}
