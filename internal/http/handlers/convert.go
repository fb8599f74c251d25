package handlers

import "service-dispatch/internal/domain"

func offerToResponse(o domain.Offer) offerDTO {
	return offerDTO{
		ID:           o.ID,
		Kind:         string(o.Kind),
		DeliveryID:   o.DeliveryID,
		ClusterID:    o.ClusterID,
		DriverID:     o.DriverID,
		Status:       string(o.Status),
		OfferedPrice: o.OfferedPrice,
		OfferTime:    o.OfferTime,
		ExpiresAt:    o.ExpiresAt,
		ResponseTime: o.ResponseTime,
	}
}

func offersToResponse(list []domain.Offer) []offerDTO {
	out := make([]offerDTO, 0, len(list))
	for _, o := range list {
		out = append(out, offerToResponse(o))
	}
	return out
}

func clusterToResponse(c domain.DeliveryCluster) clusterDTO {
	return clusterDTO{
		ID:                  c.ID,
		DeliveryID:          c.DeliveryID,
		VendorID:            c.VendorID,
		VendorLat:           c.VendorLocation.Lat,
		VendorLon:           c.VendorLocation.Lon,
		Status:              string(c.Status),
		EstimatedDistanceKm: c.EstimatedDistanceKm,
		EstimatedPrice:      c.EstimatedPrice,
		AssignedDriverID:    c.AssignedDriverID,
		AssignmentTime:      c.AssignmentTime,
		SequenceOrder:       c.SequenceOrder,
		RetryCount:          c.RetryCount,
	}
}

func clustersToResponse(list []domain.DeliveryCluster) []clusterDTO {
	out := make([]clusterDTO, 0, len(list))
	for _, c := range list {
		out = append(out, clusterToResponse(c))
	}
	return out
}

func trackingToResponse(t domain.ClusterTracking) trackingDTO {
	return trackingDTO{
		ClusterID:     t.ClusterID,
		Status:        t.Status,
		Location:      t.Location,
		LastRetryTime: t.LastRetryTime,
	}
}

func driverToResponse(d domain.Driver) driverDTO {
	return driverDTO{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		Available:     d.Available,
		AccountStatus: string(d.AccountStatus),
		VehicleType:   d.VehicleType,
		Lat:           d.Location.Lat,
		Lon:           d.Location.Lon,
	}
}

func driversToResponse(list []domain.Driver) []driverDTO {
	out := make([]driverDTO, 0, len(list))
	for _, d := range list {
		out = append(out, driverToResponse(d))
	}
	return out
}

func (r createDriverRequest) toModel() *domain.Driver {
	return &domain.Driver{
		Name:        r.Name,
		Phone:       r.Phone,
		Available:   true,
		VehicleType: r.VehicleType,
		Location:    domain.Coordinates{Lat: r.Lat, Lon: r.Lon},
	}
}

func (r updateDriverRequest) toModel(id int64) domain.PartialDriverUpdate {
	u := domain.PartialDriverUpdate{
		ID:          id,
		Name:        r.Name,
		Phone:       r.Phone,
		Available:   r.Available,
		VehicleType: r.VehicleType,
	}
	if r.AccountStatus != nil {
		status := domain.DriverAccountStatus(*r.AccountStatus)
		u.AccountStatus = &status
	}
	return u
}

func (r createClusterRequest) toLeg() domain.VendorLeg {
	return domain.VendorLeg{
		VendorID:      r.VendorID,
		Location:      domain.Coordinates{Lat: r.VendorLat, Lon: r.VendorLon},
		SequenceOrder: r.SequenceOrder,
	}
}
