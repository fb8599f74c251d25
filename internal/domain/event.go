package domain

import "time"

// ClusterStatusEvent is emitted to collaborators (notifications, chat,
// commissions) whenever a cluster or direct delivery changes status.
type ClusterStatusEvent struct {
	DeliveryID int64
	ClusterID  *int64
	Status     string
	DriverID   *int64
	At         time.Time
}
