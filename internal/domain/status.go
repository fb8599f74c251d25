package domain

type (
	// DeliveryStatus represents the status of a delivery.
	DeliveryStatus string
	// ClusterStatus represents the status of a delivery cluster.
	ClusterStatus string
	// OfferStatus represents the status of a driver offer.
	OfferStatus string
	// OfferKind distinguishes cluster offers from single-leg direct offers.
	OfferKind string
	// DriverAccountStatus represents the account state of a driver.
	DriverAccountStatus string
)

// List of possible delivery statuses
const (
	DeliveryPending     DeliveryStatus = "pending"
	DeliveryDispatching DeliveryStatus = "dispatching"
	DeliveryAssigned    DeliveryStatus = "assigned"
	DeliveryPickedUp    DeliveryStatus = "picked_up"
	DeliveryDelivered   DeliveryStatus = "delivered"
	DeliveryCancelled   DeliveryStatus = "cancelled"
	DeliveryFailed      DeliveryStatus = "failed"
)

// List of possible cluster statuses. Offered means the cluster has at least
// one outstanding offer; Assigned means a driver accepted one.
const (
	ClusterPending   ClusterStatus = "pending"
	ClusterOffered   ClusterStatus = "offered"
	ClusterAssigned  ClusterStatus = "assigned"
	ClusterPickedUp  ClusterStatus = "picked_up"
	ClusterDelivered ClusterStatus = "delivered"
	ClusterCancelled ClusterStatus = "cancelled"
	ClusterFailed    ClusterStatus = "failed"
)

// List of possible offer statuses. Everything except Pending is terminal;
// a retry creates a new offer row instead of reopening one.
const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferDeclined  OfferStatus = "declined"
	OfferExpired   OfferStatus = "expired"
	OfferCancelled OfferStatus = "cancelled"
)

// List of offer kinds
const (
	OfferKindCluster OfferKind = "cluster"
	OfferKindDirect  OfferKind = "direct"
)

// List of possible driver account statuses
const (
	DriverActive    DriverAccountStatus = "active"
	DriverSuspended DriverAccountStatus = "suspended"
	DriverDeleted   DriverAccountStatus = "deleted"
)

var allowedDeliveryStatuses = [...]DeliveryStatus{
	DeliveryPending, DeliveryDispatching, DeliveryAssigned,
	DeliveryPickedUp, DeliveryDelivered, DeliveryCancelled, DeliveryFailed,
}

var allowedClusterStatuses = [...]ClusterStatus{
	ClusterPending, ClusterOffered, ClusterAssigned,
	ClusterPickedUp, ClusterDelivered, ClusterCancelled, ClusterFailed,
}

var allowedOfferStatuses = [...]OfferStatus{
	OfferPending, OfferAccepted, OfferDeclined, OfferExpired, OfferCancelled,
}

var allowedDriverAccountStatuses = [...]DriverAccountStatus{
	DriverActive, DriverSuspended, DriverDeleted,
}

// Valid checks if the DeliveryStatus is valid
func (s DeliveryStatus) Valid() bool {
	for _, v := range allowedDeliveryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further delivery transitions are permitted.
func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryDelivered || s == DeliveryCancelled || s == DeliveryFailed
}

// Valid checks if the ClusterStatus is valid
func (s ClusterStatus) Valid() bool {
	for _, v := range allowedClusterStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further cluster transitions are permitted.
func (s ClusterStatus) Terminal() bool {
	return s == ClusterDelivered || s == ClusterCancelled || s == ClusterFailed
}

// Matchable reports whether the cluster may still receive offers.
func (s ClusterStatus) Matchable() bool {
	return s == ClusterPending || s == ClusterOffered
}

// Valid checks if the OfferStatus is valid
func (s OfferStatus) Valid() bool {
	for _, v := range allowedOfferStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the offer status admits no further transition.
func (s OfferStatus) Terminal() bool {
	return s != OfferPending
}

// Valid checks if the OfferKind is valid
func (k OfferKind) Valid() bool {
	return k == OfferKindCluster || k == OfferKindDirect
}

// Valid checks if the DriverAccountStatus is valid
func (s DriverAccountStatus) Valid() bool {
	for _, v := range allowedDriverAccountStatuses {
		if s == v {
			return true
		}
	}
	return false
}
