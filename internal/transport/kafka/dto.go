package kafka

import (
	"strings"
	"time"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/service/delivery"
)

// Event types carried on the delivery topic.
const (
	EventCreated   = "created"
	EventCancelled = "cancelled"
)

// VendorLegDTO is one vendor pickup point in a delivery event.
type VendorLegDTO struct {
	VendorID      int64   `json:"vendor_id"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	SequenceOrder int     `json:"sequence_order"`
}

// DeliveryEventDTO is a checkout delivery event as it travels on the wire.
type DeliveryEventDTO struct {
	Event          string         `json:"event"`
	OrderID        string         `json:"order_id"`
	PickupLat      float64        `json:"pickup_lat"`
	PickupLon      float64        `json:"pickup_lon"`
	DropoffLat     float64        `json:"dropoff_lat"`
	DropoffLon     float64        `json:"dropoff_lon"`
	DropoffAddress string         `json:"dropoff_address"`
	Fee            float64        `json:"fee"`
	Legs           []VendorLegDTO `json:"legs,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// DeliveryEvent is the decoded event handed to the handler.
type DeliveryEvent struct {
	Event     string
	OrderID   string
	Delivery  delivery.NewDelivery
	CreatedAt time.Time
}

// ToDomain converts DeliveryEventDTO to a DeliveryEvent.
func ToDomain(dto DeliveryEventDTO) DeliveryEvent {
	legs := make([]domain.VendorLeg, 0, len(dto.Legs))
	for _, l := range dto.Legs {
		legs = append(legs, domain.VendorLeg{
			VendorID:      l.VendorID,
			Location:      domain.Coordinates{Lat: l.Lat, Lon: l.Lon},
			SequenceOrder: l.SequenceOrder,
		})
	}
	orderID := strings.TrimSpace(dto.OrderID)

	return DeliveryEvent{
		Event:     strings.TrimSpace(dto.Event),
		OrderID:   orderID,
		CreatedAt: dto.CreatedAt,
		Delivery: delivery.NewDelivery{
			OrderID:        orderID,
			Pickup:         domain.Coordinates{Lat: dto.PickupLat, Lon: dto.PickupLon},
			Dropoff:        domain.Coordinates{Lat: dto.DropoffLat, Lon: dto.DropoffLon},
			DropoffAddress: strings.TrimSpace(dto.DropoffAddress),
			Fee:            dto.Fee,
			Legs:           legs,
		},
	}
}

// StatusEventDTO is a cluster status change event as published downstream.
type StatusEventDTO struct {
	EventID    string    `json:"event_id"`
	DeliveryID int64     `json:"delivery_id"`
	ClusterID  *int64    `json:"cluster_id,omitempty"`
	Status     string    `json:"status"`
	DriverID   *int64    `json:"driver_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
