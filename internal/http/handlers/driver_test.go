package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/http/handlers"
)

type stubDriverUsecase struct {
	getFn             func(ctx context.Context, id int64) (*domain.Driver, error)
	listFn            func(ctx context.Context, limit, offset *int) ([]domain.Driver, error)
	createFn          func(ctx context.Context, d *domain.Driver) (int64, error)
	updatePartialFn   func(ctx context.Context, u domain.PartialDriverUpdate) error
	updateLocationFn  func(ctx context.Context, id int64, loc domain.Coordinates) error
	setAvailabilityFn func(ctx context.Context, id int64, available bool) error
	syncProfileFn     func(ctx context.Context, id int64) (*domain.Driver, error)
}

func (s *stubDriverUsecase) Get(ctx context.Context, id int64) (*domain.Driver, error) {
	return s.getFn(ctx, id)
}

func (s *stubDriverUsecase) List(ctx context.Context, limit, offset *int) ([]domain.Driver, error) {
	return s.listFn(ctx, limit, offset)
}

func (s *stubDriverUsecase) Create(ctx context.Context, d *domain.Driver) (int64, error) {
	return s.createFn(ctx, d)
}

func (s *stubDriverUsecase) UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate) error {
	return s.updatePartialFn(ctx, u)
}

func (s *stubDriverUsecase) UpdateLocation(ctx context.Context, id int64, loc domain.Coordinates) error {
	return s.updateLocationFn(ctx, id, loc)
}

func (s *stubDriverUsecase) SetAvailability(ctx context.Context, id int64, available bool) error {
	return s.setAvailabilityFn(ctx, id, available)
}

func (s *stubDriverUsecase) SyncProfile(ctx context.Context, id int64) (*domain.Driver, error) {
	return s.syncProfileFn(ctx, id)
}

func TestDriverHandler_GetByID_OK(t *testing.T) {
	t.Parallel()

	expected := &domain.Driver{
		ID:        99,
		Name:      "Artem",
		Phone:     "+70000000000",
		Available: true,
	}

	uc := &stubDriverUsecase{
		getFn: func(ctx context.Context, id int64) (*domain.Driver, error) {
			require.Equal(t, expected.ID, id)
			return expected, nil
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := requestWithID(http.MethodGet, "/drivers/99", "99", "")
	rr := httptest.NewRecorder()

	h.GetByID(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Available bool   `json:"available"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, expected.ID, resp.ID)
	require.Equal(t, expected.Name, resp.Name)
	require.True(t, resp.Available)
}

func TestDriverHandler_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	uc := &stubDriverUsecase{
		getFn: func(ctx context.Context, id int64) (*domain.Driver, error) {
			return nil, apperr.ErrNotFound
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := requestWithID(http.MethodGet, "/drivers/10", "10", "")
	rr := httptest.NewRecorder()

	h.GetByID(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDriverHandler_List_OK(t *testing.T) {
	t.Parallel()

	var gotLimit, gotOffset *int

	uc := &stubDriverUsecase{
		listFn: func(ctx context.Context, limit, offset *int) ([]domain.Driver, error) {
			gotLimit, gotOffset = limit, offset
			return []domain.Driver{{ID: 1}, {ID: 2}}, nil
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/drivers?limit=10&offset=5", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotLimit)
	require.Equal(t, 10, *gotLimit)
	require.NotNil(t, gotOffset)
	require.Equal(t, 5, *gotOffset)
}

func TestDriverHandler_List_InvalidLimit(t *testing.T) {
	t.Parallel()

	h := handlers.NewDriverHandler(&stubDriverUsecase{
		listFn: func(ctx context.Context, limit, offset *int) ([]domain.Driver, error) {
			require.FailNow(t, "List must not be called when limit is invalid")
			return nil, nil
		},
	}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/drivers?limit=abc", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDriverHandler_Create_OK(t *testing.T) {
	t.Parallel()

	var gotModel *domain.Driver

	uc := &stubDriverUsecase{
		createFn: func(ctx context.Context, d *domain.Driver) (int64, error) {
			gotModel = d
			return 42, nil
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	body := `{"name":"Artem","phone":"+70000000000","vehicle_type":"bike","lat":55.75,"lon":37.62}`
	req := httptest.NewRequest(http.MethodPost, "/drivers", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "/drivers/42", rr.Header().Get("Location"))
	require.NotNil(t, gotModel)
	require.Equal(t, "Artem", gotModel.Name)
	require.True(t, gotModel.Available)
	require.Equal(t, 55.75, gotModel.Location.Lat)
}

func TestDriverHandler_Create_Invalid(t *testing.T) {
	t.Parallel()

	uc := &stubDriverUsecase{
		createFn: func(ctx context.Context, d *domain.Driver) (int64, error) {
			return 0, apperr.ErrInvalid
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	body := `{"name":"","phone":"bad"}`
	req := httptest.NewRequest(http.MethodPost, "/drivers", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDriverHandler_Create_BadJSON(t *testing.T) {
	t.Parallel()

	uc := &stubDriverUsecase{
		createFn: func(ctx context.Context, d *domain.Driver) (int64, error) {
			require.FailNow(t, "Create must not be called on invalid JSON")
			return 0, nil
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	body := `{"name":"Artem",`
	req := httptest.NewRequest(http.MethodPost, "/drivers", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDriverHandler_Update_OK(t *testing.T) {
	t.Parallel()

	var gotUpdate domain.PartialDriverUpdate

	uc := &stubDriverUsecase{
		updatePartialFn: func(ctx context.Context, u domain.PartialDriverUpdate) error {
			gotUpdate = u
			return nil
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := requestWithID(http.MethodPatch, "/drivers/1", "1", `{"name":"New Name"}`)
	rr := httptest.NewRecorder()

	h.Update(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, int64(1), gotUpdate.ID)
	require.NotNil(t, gotUpdate.Name)
	require.Equal(t, "New Name", *gotUpdate.Name)
}

func TestDriverHandler_Update_StatusChange(t *testing.T) {
	t.Parallel()

	var gotUpdate domain.PartialDriverUpdate

	uc := &stubDriverUsecase{
		updatePartialFn: func(ctx context.Context, u domain.PartialDriverUpdate) error {
			gotUpdate = u
			return nil
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := requestWithID(http.MethodPatch, "/drivers/1", "1", `{"account_status":"suspended"}`)
	rr := httptest.NewRecorder()

	h.Update(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotUpdate.AccountStatus)
	require.Equal(t, domain.DriverSuspended, *gotUpdate.AccountStatus)
}

func TestDriverHandler_Update_NotFound(t *testing.T) {
	t.Parallel()

	uc := &stubDriverUsecase{
		updatePartialFn: func(ctx context.Context, u domain.PartialDriverUpdate) error {
			return apperr.ErrNotFound
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := requestWithID(http.MethodPatch, "/drivers/123", "123", `{"name":"X"}`)
	rr := httptest.NewRecorder()

	h.Update(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDriverHandler_UpdateLocation_OK(t *testing.T) {
	t.Parallel()

	var gotID int64
	var gotLoc domain.Coordinates

	uc := &stubDriverUsecase{
		updateLocationFn: func(ctx context.Context, id int64, loc domain.Coordinates) error {
			gotID, gotLoc = id, loc
			return nil
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := requestWithID(http.MethodPut, "/drivers/4/location", "4", `{"lat":55.75,"lon":37.62}`)
	rr := httptest.NewRecorder()

	h.UpdateLocation(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, int64(4), gotID)
	require.Equal(t, 55.75, gotLoc.Lat)
	require.Equal(t, 37.62, gotLoc.Lon)
}

func TestDriverHandler_UpdateLocation_InvalidCoords(t *testing.T) {
	t.Parallel()

	uc := &stubDriverUsecase{
		updateLocationFn: func(ctx context.Context, id int64, loc domain.Coordinates) error {
			return apperr.ErrInvalid
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := requestWithID(http.MethodPut, "/drivers/4/location", "4", `{"lat":200,"lon":37.62}`)
	rr := httptest.NewRecorder()

	h.UpdateLocation(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDriverHandler_SetAvailability_OK(t *testing.T) {
	t.Parallel()

	var gotAvailable bool

	uc := &stubDriverUsecase{
		setAvailabilityFn: func(ctx context.Context, id int64, available bool) error {
			gotAvailable = available
			return nil
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := requestWithID(http.MethodPut, "/drivers/4/availability", "4", `{"available":false}`)
	rr := httptest.NewRecorder()

	h.SetAvailability(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.False(t, gotAvailable)
}

func TestDriverHandler_SyncProfile_OK(t *testing.T) {
	t.Parallel()

	uc := &stubDriverUsecase{
		syncProfileFn: func(ctx context.Context, id int64) (*domain.Driver, error) {
			require.Equal(t, int64(4), id)
			return &domain.Driver{ID: 4, Name: "Synced"}, nil
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := requestWithID(http.MethodPost, "/drivers/4/sync", "4", "")
	rr := httptest.NewRecorder()

	h.SyncProfile(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "Synced", resp.Name)
}

func TestDriverHandler_SyncProfile_NotFound(t *testing.T) {
	t.Parallel()

	uc := &stubDriverUsecase{
		syncProfileFn: func(ctx context.Context, id int64) (*domain.Driver, error) {
			return nil, apperr.ErrNotFound
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := requestWithID(http.MethodPost, "/drivers/4/sync", "4", "")
	rr := httptest.NewRecorder()

	h.SyncProfile(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDriverHandler_SyncProfile_InternalError(t *testing.T) {
	t.Parallel()

	uc := &stubDriverUsecase{
		syncProfileFn: func(ctx context.Context, id int64) (*domain.Driver, error) {
			return nil, errors.New("gateway down")
		},
	}
	h := handlers.NewDriverHandler(uc, testLogger())

	req := requestWithID(http.MethodPost, "/drivers/4/sync", "4", "")
	rr := httptest.NewRecorder()

	h.SyncProfile(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
