package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"service-dispatch/internal/domain"
)

func TestDistanceKm_KnownDistances(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		a, b      domain.Coordinates
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         domain.Coordinates{Lat: 25.033, Lon: 121.565},
			b:         domain.Coordinates{Lat: 25.033, Lon: 121.565},
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name:      "Moscow center to Sheremetyevo (~28km)",
			a:         domain.Coordinates{Lat: 55.7558, Lon: 37.6173},
			b:         domain.Coordinates{Lat: 55.9736, Lon: 37.4125},
			wantKm:    27.5,
			tolerance: 2,
		},
		{
			name:      "New York to Los Angeles (~3944km)",
			a:         domain.Coordinates{Lat: 40.7128, Lon: -74.0060},
			b:         domain.Coordinates{Lat: 34.0522, Lon: -118.2437},
			wantKm:    3944,
			tolerance: 50,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DistanceKm(tt.a, tt.b)
			require.InDelta(t, tt.wantKm, got, tt.tolerance)
		})
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	t.Parallel()

	a := domain.Coordinates{Lat: 25.0, Lon: 121.0}
	b := domain.Coordinates{Lat: 26.0, Lon: 122.0}
	require.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 0.0001)
}

func TestMidpoint_EquatorHalfway(t *testing.T) {
	t.Parallel()

	a := domain.Coordinates{Lat: 0, Lon: 0}
	b := domain.Coordinates{Lat: 0, Lon: 10}

	mid := Midpoint(a, b)
	require.InDelta(t, 0, mid.Lat, 0.0001)
	require.InDelta(t, 5, mid.Lon, 0.0001)

	// midpoint is equidistant from both ends
	require.InDelta(t, DistanceKm(a, mid), DistanceKm(mid, b), 0.001)
}

func TestLegWrappers_MatchDistance(t *testing.T) {
	t.Parallel()

	vendor := domain.Coordinates{Lat: 55.75, Lon: 37.62}
	customer := domain.Coordinates{Lat: 55.80, Lon: 37.50}
	driver := domain.Coordinates{Lat: 55.70, Lon: 37.70}

	want := DistanceKm(vendor, customer)
	require.True(t, math.Abs(VendorToCustomerKm(vendor, customer)-want) < 1e-9)
	require.InDelta(t, DistanceKm(vendor, driver), VendorToDriverKm(vendor, driver), 1e-9)
	require.InDelta(t, DistanceKm(driver, customer), DriverToCustomerKm(driver, customer), 1e-9)
	require.InDelta(t, DistanceKm(driver, vendor), DriverToVendorKm(driver, vendor), 1e-9)
}
