package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOfferStatus_Terminal(t *testing.T) {
	t.Parallel()

	require.False(t, OfferPending.Terminal())
	for _, s := range []OfferStatus{OfferAccepted, OfferDeclined, OfferExpired, OfferCancelled} {
		require.True(t, s.Terminal(), string(s))
	}
}

func TestClusterStatus_Matchable(t *testing.T) {
	t.Parallel()

	require.True(t, ClusterPending.Matchable())
	require.True(t, ClusterOffered.Matchable())
	for _, s := range []ClusterStatus{ClusterAssigned, ClusterDelivered, ClusterCancelled, ClusterFailed} {
		require.False(t, s.Matchable(), string(s))
	}
}

func TestStatus_Valid(t *testing.T) {
	t.Parallel()

	require.True(t, OfferDeclined.Valid())
	require.False(t, OfferStatus("rejected").Valid())
	require.True(t, ClusterOffered.Valid())
	require.False(t, ClusterStatus("waiting").Valid())
	require.True(t, DeliveryPickedUp.Valid())
	require.False(t, DeliveryStatus("done").Valid())
	require.True(t, DriverActive.Valid())
	require.False(t, DriverAccountStatus("banned").Valid())
}

func TestCoordinates_Valid(t *testing.T) {
	t.Parallel()

	require.True(t, Coordinates{Lat: 55.75, Lon: 37.62}.Valid())
	require.False(t, Coordinates{Lat: 91, Lon: 0}.Valid())
	require.False(t, Coordinates{Lat: 0, Lon: -181}.Valid())
}

func TestOffer_ExpiredAt(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	o := Offer{OfferTime: t0, ExpiresAt: t0.Add(10 * time.Minute)}

	require.False(t, o.ExpiredAt(t0.Add(9*time.Minute)))
	require.False(t, o.ExpiredAt(t0.Add(10*time.Minute)))
	require.True(t, o.ExpiredAt(t0.Add(11*time.Minute)))
}

func TestAssignmentSettings_Normalize(t *testing.T) {
	t.Parallel()

	s := AssignmentSettings{MaxRetries: -1, MaxOffersPerDriver: 0, FanOutCount: 0}.Normalize()
	require.Equal(t, 0, s.MaxRetries)
	require.Equal(t, 1, s.MaxOffersPerDriver)
	require.Equal(t, 1, s.FanOutCount)
	require.Equal(t, time.Minute, s.OfferExpiry)
}
