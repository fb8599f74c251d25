package offer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/dispatchtx"
	"service-dispatch/internal/service/matching"
)

// fakeRepo is an in-memory repository with the same conditional-write
// semantics as the real one.
type fakeRepo struct {
	deliveries map[int64]*domain.Delivery
	clusters   map[int64]*domain.DeliveryCluster
	offers     map[int64]*domain.Offer
	tracking   map[int64]*domain.ClusterTracking
	nextID     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		deliveries: map[int64]*domain.Delivery{},
		clusters:   map[int64]*domain.DeliveryCluster{},
		offers:     map[int64]*domain.Offer{},
		tracking:   map[int64]*domain.ClusterTracking{},
	}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) InsertDelivery(_ context.Context, d *domain.Delivery) (int64, error) {
	f.nextID++
	cp := *d
	cp.ID = f.nextID
	f.deliveries[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeRepo) GetDelivery(_ context.Context, id int64) (*domain.Delivery, error) {
	if d, ok := f.deliveries[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) GetDeliveryByOrderID(_ context.Context, orderID string) (*domain.Delivery, error) {
	for _, d := range f.deliveries {
		if d.OrderID == orderID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) UpdateDeliveryStatus(_ context.Context, id int64, status domain.DeliveryStatus) error {
	f.deliveries[id].Status = status
	return nil
}

func (f *fakeRepo) AssignDelivery(_ context.Context, id int64, _ time.Time) (bool, error) {
	d := f.deliveries[id]
	if d.Status != domain.DeliveryPending && d.Status != domain.DeliveryDispatching {
		return false, nil
	}
	d.Status = domain.DeliveryAssigned
	return true, nil
}

func (f *fakeRepo) InsertCluster(_ context.Context, c *domain.DeliveryCluster) (int64, error) {
	f.nextID++
	cp := *c
	cp.ID = f.nextID
	f.clusters[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeRepo) GetCluster(_ context.Context, id int64) (*domain.DeliveryCluster, error) {
	if c, ok := f.clusters[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) GetClusterForUpdate(ctx context.Context, id int64) (*domain.DeliveryCluster, error) {
	return f.GetCluster(ctx, id)
}

func (f *fakeRepo) ClustersByDelivery(_ context.Context, deliveryID int64) ([]domain.DeliveryCluster, error) {
	var out []domain.DeliveryCluster
	for _, c := range f.clusters {
		if c.DeliveryID == deliveryID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateClusterStatus(_ context.Context, id int64, status domain.ClusterStatus) error {
	f.clusters[id].Status = status
	return nil
}

func (f *fakeRepo) AssignCluster(_ context.Context, clusterID, driverID int64, at time.Time) (bool, error) {
	c := f.clusters[clusterID]
	if c.AssignedDriverID != nil || !c.Status.Matchable() {
		return false, nil
	}
	c.AssignedDriverID = &driverID
	c.AssignmentTime = &at
	c.Status = domain.ClusterAssigned
	return true, nil
}

func (f *fakeRepo) IncrementClusterRetry(_ context.Context, clusterID int64, at time.Time) error {
	f.clusters[clusterID].RetryCount++
	if t, ok := f.tracking[clusterID]; ok {
		t.LastRetryTime = &at
	}
	return nil
}

func (f *fakeRepo) InsertTracking(_ context.Context, t *domain.ClusterTracking) error {
	cp := *t
	f.tracking[t.ClusterID] = &cp
	return nil
}

func (f *fakeRepo) UpdateTracking(_ context.Context, clusterID int64, status, location string) error {
	if t, ok := f.tracking[clusterID]; ok {
		t.Status, t.Location = status, location
	}
	return nil
}

func (f *fakeRepo) InsertOffer(_ context.Context, o *domain.Offer) (int64, error) {
	f.nextID++
	cp := *o
	cp.ID = f.nextID
	f.offers[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeRepo) GetOffer(_ context.Context, id int64) (*domain.Offer, error) {
	if o, ok := f.offers[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) TransitionOffer(_ context.Context, id int64, from, to domain.OfferStatus, at time.Time) (bool, error) {
	o, ok := f.offers[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.ResponseTime = &at
	return true, nil
}

func (f *fakeRepo) CancelSiblingOffers(_ context.Context, clusterID, winnerOfferID int64, at time.Time) (int64, error) {
	var n int64
	for _, o := range f.offers {
		if o.ClusterID != nil && *o.ClusterID == clusterID && o.ID != winnerOfferID && o.Status == domain.OfferPending {
			o.Status = domain.OfferCancelled
			o.ResponseTime = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CancelPendingOffersForDelivery(_ context.Context, deliveryID int64, at time.Time) (int64, error) {
	var n int64
	for _, o := range f.offers {
		if o.DeliveryID == deliveryID && o.Status == domain.OfferPending {
			o.Status = domain.OfferCancelled
			o.ResponseTime = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CancelPendingOffersByDriver(_ context.Context, driverID int64, at time.Time) (int64, error) {
	var n int64
	for _, o := range f.offers {
		if o.DriverID == driverID && o.Status == domain.OfferPending {
			o.Status = domain.OfferCancelled
			o.ResponseTime = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountPendingOffersByDriver(_ context.Context, driverID int64) (int, error) {
	n := 0
	for _, o := range f.offers {
		if o.DriverID == driverID && o.Status == domain.OfferPending {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountLiveOffersByCluster(_ context.Context, clusterID int64) (int, error) {
	n := 0
	for _, o := range f.offers {
		if o.ClusterID != nil && *o.ClusterID == clusterID && o.Status == domain.OfferPending {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) OffersByCluster(_ context.Context, clusterID int64) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range f.offers {
		if o.ClusterID != nil && *o.ClusterID == clusterID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeRepo) PendingOffersByDriver(_ context.Context, driverID int64) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range f.offers {
		if o.DriverID == driverID && o.Status == domain.OfferPending {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeRepo) ExpireOverdueOffers(_ context.Context, now time.Time) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range f.offers {
		if o.Status == domain.OfferPending && o.ExpiresAt.Before(now) {
			o.Status = domain.OfferExpired
			o.ResponseTime = &now
			out = append(out, *o)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	events []domain.ClusterStatusEvent
}

func (p *recordingPublisher) PublishClusterStatus(_ context.Context, e domain.ClusterStatusEvent) error {
	p.events = append(p.events, e)
	return nil
}

type nopCounter struct{}

func (nopCounter) Inc() {}

func testSettings() domain.AssignmentSettings {
	return domain.AssignmentSettings{
		MaxRetries:          5,
		PricePerKm:          5,
		MaxOffersPerDriver:  3,
		OfferExpiry:         10 * time.Minute,
		AssignNearestFirst:  true,
		FanOutCount:         3,
		MaxDriverDistanceKm: 15,
		CheckInterval:       30 * time.Second,
		RetryDelay:          time.Minute,
		EnableReassignment:  true,
	}
}

func seedClusterDelivery(repo *fakeRepo) (deliveryID, clusterID int64) {
	deliveryID, _ = repo.InsertDelivery(context.Background(), &domain.Delivery{
		OrderID: "ord-1", Status: domain.DeliveryDispatching, Fee: 40,
	})
	clusterID, _ = repo.InsertCluster(context.Background(), &domain.DeliveryCluster{
		DeliveryID: deliveryID, VendorID: 7,
		Status: domain.ClusterPending, EstimatedPrice: 25,
	})
	_ = repo.InsertTracking(context.Background(), &domain.ClusterTracking{ClusterID: clusterID})
	return deliveryID, clusterID
}

func candidates(ids ...int64) []matching.Candidate {
	out := make([]matching.Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, matching.Candidate{Driver: domain.Driver{ID: id}})
	}
	return out
}

func TestDispatch_CreatesPendingOffers(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	pub := &recordingPublisher{}
	svc := NewService(repo, pub, testSettings(), nopCounter{}, logx.Nop())

	got, err := svc.Dispatch(context.Background(), clusterID, candidates(1, 2))
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, o := range got {
		require.Equal(t, domain.OfferPending, o.Status)
		require.Equal(t, domain.OfferKindCluster, o.Kind)
		require.Equal(t, 25.0, o.OfferedPrice)
		require.Equal(t, 10*time.Minute, o.ExpiresAt.Sub(o.OfferTime))
	}
	require.Equal(t, domain.ClusterOffered, repo.clusters[clusterID].Status)
	require.Len(t, pub.events, 1)
	require.Equal(t, string(domain.ClusterOffered), pub.events[0].Status)
}

func TestDispatch_NoCandidates(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	_, err := svc.Dispatch(context.Background(), clusterID, nil)
	require.ErrorIs(t, err, apperr.ErrNoCandidate)
}

func TestDispatch_CancelledDeliveryRefused(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	deliveryID, clusterID := seedClusterDelivery(repo)
	repo.deliveries[deliveryID].Status = domain.DeliveryCancelled
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	_, err := svc.Dispatch(context.Background(), clusterID, candidates(1))
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.Empty(t, repo.offers)
}

func TestDispatchDirect_UsesDeliveryFee(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	deliveryID, _ := repo.InsertDelivery(context.Background(), &domain.Delivery{
		OrderID: "ord-2", Status: domain.DeliveryPending, Fee: 40,
	})
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	got, err := svc.DispatchDirect(context.Background(), deliveryID, candidates(1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, domain.OfferKindDirect, got[0].Kind)
	require.Nil(t, got[0].ClusterID)
	require.Equal(t, 40.0, got[0].OfferedPrice)
	require.Equal(t, domain.DeliveryDispatching, repo.deliveries[deliveryID].Status)
}

func TestAccept_AssignsClusterAndCancelsSiblings(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	deliveryID, clusterID := seedClusterDelivery(repo)
	pub := &recordingPublisher{}
	svc := NewService(repo, pub, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.Dispatch(context.Background(), clusterID, candidates(1, 2, 3))
	require.NoError(t, err)

	got, err := svc.Accept(context.Background(), offers[0].ID, 1)
	require.NoError(t, err)
	require.Equal(t, domain.OfferAccepted, got.Status)

	c := repo.clusters[clusterID]
	require.Equal(t, domain.ClusterAssigned, c.Status)
	require.NotNil(t, c.AssignedDriverID)
	require.Equal(t, int64(1), *c.AssignedDriverID)

	require.Equal(t, domain.OfferCancelled, repo.offers[offers[1].ID].Status)
	require.Equal(t, domain.OfferCancelled, repo.offers[offers[2].ID].Status)

	// last cluster assigned pulls the delivery along
	require.Equal(t, domain.DeliveryAssigned, repo.deliveries[deliveryID].Status)

	last := pub.events[len(pub.events)-1]
	require.Equal(t, string(domain.ClusterAssigned), last.Status)
	require.NotNil(t, last.DriverID)
}

func TestAccept_SecondDriverLoses(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.Dispatch(context.Background(), clusterID, candidates(1, 2))
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), offers[0].ID, 1)
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), offers[1].ID, 2)
	require.ErrorIs(t, err, apperr.ErrConflict)

	require.Equal(t, int64(1), *repo.clusters[clusterID].AssignedDriverID)
}

func TestAcceptDirect_AssignsDeliveryAndCancelsSiblings(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	deliveryID, _ := repo.InsertDelivery(context.Background(), &domain.Delivery{
		OrderID: "ord-3", Status: domain.DeliveryPending, Fee: 40,
	})
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.DispatchDirect(context.Background(), deliveryID, candidates(101, 102))
	require.NoError(t, err)
	require.Len(t, offers, 2)

	got, err := svc.Accept(context.Background(), offers[0].ID, 101)
	require.NoError(t, err)
	require.Equal(t, domain.OfferAccepted, got.Status)

	require.Equal(t, domain.DeliveryAssigned, repo.deliveries[deliveryID].Status)
	require.Equal(t, domain.OfferCancelled, repo.offers[offers[1].ID].Status)
}

func TestAcceptDirect_SecondDriverLoses(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	deliveryID, _ := repo.InsertDelivery(context.Background(), &domain.Delivery{
		OrderID: "ord-4", Status: domain.DeliveryPending, Fee: 40,
	})
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.DispatchDirect(context.Background(), deliveryID, candidates(101, 102))
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), offers[0].ID, 101)
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), offers[1].ID, 102)
	require.ErrorIs(t, err, apperr.ErrConflict)

	require.Equal(t, domain.DeliveryAssigned, repo.deliveries[deliveryID].Status)
	require.Equal(t, domain.OfferAccepted, repo.offers[offers[0].ID].Status)
}

func TestAccept_ExpiredDeadlineRejected(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.Dispatch(context.Background(), clusterID, candidates(1))
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC().Add(11 * time.Minute) }

	_, err = svc.Accept(context.Background(), offers[0].ID, 1)
	require.ErrorIs(t, err, apperr.ErrConflict)
	// the row is untouched; the sweeper flips it later
	require.Equal(t, domain.OfferPending, repo.offers[offers[0].ID].Status)
}

func TestAccept_WrongDriver(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.Dispatch(context.Background(), clusterID, candidates(1))
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), offers[0].ID, 99)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDecline_ReleasesClusterWhenLastOffer(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.Dispatch(context.Background(), clusterID, candidates(1))
	require.NoError(t, err)

	require.NoError(t, svc.Decline(context.Background(), offers[0].ID, 1))
	require.Equal(t, domain.OfferDeclined, repo.offers[offers[0].ID].Status)
	require.Equal(t, domain.ClusterPending, repo.clusters[clusterID].Status)
}

func TestDecline_ClusterStaysOfferedWhileSiblingsLive(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.Dispatch(context.Background(), clusterID, candidates(1, 2))
	require.NoError(t, err)

	require.NoError(t, svc.Decline(context.Background(), offers[0].ID, 1))
	require.Equal(t, domain.ClusterOffered, repo.clusters[clusterID].Status)
}

func TestDecline_Twice(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.Dispatch(context.Background(), clusterID, candidates(1))
	require.NoError(t, err)

	require.NoError(t, svc.Decline(context.Background(), offers[0].ID, 1))
	require.ErrorIs(t, svc.Decline(context.Background(), offers[0].ID, 1), apperr.ErrConflict)
}

func TestCancel_WithdrawsOwnPendingOffer(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.Dispatch(context.Background(), clusterID, candidates(1))
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), offers[0].ID, 1))
	require.Equal(t, domain.OfferCancelled, repo.offers[offers[0].ID].Status)
	// last live offer gone, cluster goes back to the sweeper
	require.Equal(t, domain.ClusterPending, repo.clusters[clusterID].Status)
}

func TestCancel_WrongDriver(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.Dispatch(context.Background(), clusterID, candidates(1))
	require.NoError(t, err)

	require.ErrorIs(t, svc.Cancel(context.Background(), offers[0].ID, 99), apperr.ErrNotFound)
	require.Equal(t, domain.OfferPending, repo.offers[offers[0].ID].Status)
}

func TestCancelForDriver_WithdrawsAllPending(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.Dispatch(context.Background(), clusterID, candidates(1, 2))
	require.NoError(t, err)

	n, err := svc.CancelForDriver(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Equal(t, domain.OfferCancelled, repo.offers[offers[0].ID].Status)
	require.Equal(t, domain.OfferPending, repo.offers[offers[1].ID].Status)
}

func TestExpireOverdue_FlipsOnlyOverdueRows(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	_, clusterID := seedClusterDelivery(repo)
	svc := NewService(repo, nil, testSettings(), nopCounter{}, logx.Nop())

	offers, err := svc.Dispatch(context.Background(), clusterID, candidates(1, 2))
	require.NoError(t, err)

	repo.offers[offers[0].ID].ExpiresAt = time.Now().UTC().Add(-time.Minute)

	expired, err := svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, offers[0].ID, expired[0].ID)
	require.Equal(t, domain.OfferPending, repo.offers[offers[1].ID].Status)
}
