// Package geo contains pure geographic computation over coordinate pairs.
package geo

import (
	"math"

	"service-dispatch/internal/domain"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees (haversine formula).
func DistanceKm(a, b domain.Coordinates) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Midpoint returns the great-circle midpoint of two points.
func Midpoint(a, b domain.Coordinates) domain.Coordinates {
	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)

	bx := math.Cos(rLat2) * math.Cos(dLon)
	by := math.Cos(rLat2) * math.Sin(dLon)

	lat := math.Atan2(
		math.Sin(rLat1)+math.Sin(rLat2),
		math.Sqrt((math.Cos(rLat1)+bx)*(math.Cos(rLat1)+bx)+by*by),
	)
	lon := degreesToRadians(a.Lon) + math.Atan2(by, math.Cos(rLat1)+bx)

	return domain.Coordinates{
		Lat: radiansToDegrees(lat),
		Lon: radiansToDegrees(lon),
	}
}

// Leg wrappers below are plain calls to DistanceKm. They are kept distinct
// because callers reason about different legs of a delivery.

// VendorToCustomerKm returns the distance of the vendor→customer leg.
func VendorToCustomerKm(vendor, customer domain.Coordinates) float64 {
	return DistanceKm(vendor, customer)
}

// VendorToDriverKm returns the distance of the vendor→driver leg.
func VendorToDriverKm(vendor, driver domain.Coordinates) float64 {
	return DistanceKm(vendor, driver)
}

// DriverToCustomerKm returns the distance of the driver→customer leg.
func DriverToCustomerKm(driver, customer domain.Coordinates) float64 {
	return DistanceKm(driver, customer)
}

// DriverToVendorKm returns the distance of the driver→vendor leg.
func DriverToVendorKm(driver, vendor domain.Coordinates) float64 {
	return DistanceKm(driver, vendor)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
