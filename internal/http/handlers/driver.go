package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

// DriverHandler serves the driver CRUD and status endpoints.
type DriverHandler struct {
	uc     driverUsecase
	logger logx.Logger
}

// NewDriverHandler wires a driverUsecase into HTTP handlers.
func NewDriverHandler(uc driverUsecase, logger logx.Logger) *DriverHandler {
	return &DriverHandler{uc: uc, logger: logger}
}

// GetByID handles GET /drivers/{id}.
func (h *DriverHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	d, err := h.uc.Get(ctx, id)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, driverToResponse(*d))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "driver not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// List handles GET /drivers with optional limit and offset query params.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(h.logger, w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(h.logger, w, r, "offset")
	if !ok {
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	list, err := h.uc.List(ctx, limit, offset)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, driversToResponse(list))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid pagination")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Create handles POST /drivers.
func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDriverRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	id, err := h.uc.Create(ctx, req.toModel())
	switch {
	case err == nil:
		w.Header().Set("Location", fmt.Sprintf("/drivers/%d", id))
		writeJSON(h.logger, w, r, http.StatusCreated, map[string]int64{"id": id})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid driver data")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Update handles PATCH /drivers/{id}.
func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateDriverRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	err = h.uc.UpdatePartial(ctx, req.toModel(id))
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "updated"})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid driver data")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "driver not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// UpdateLocation handles PUT /drivers/{id}/location.
func (h *DriverHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req locationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	err = h.uc.UpdateLocation(ctx, id, domain.Coordinates{Lat: req.Lat, Lon: req.Lon})
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "updated"})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid coordinates")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "driver not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// SetAvailability handles PUT /drivers/{id}/availability.
func (h *DriverHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req availabilityRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	err = h.uc.SetAvailability(ctx, id, req.Available)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]bool{"available": req.Available})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "driver not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// SyncProfile handles POST /drivers/{id}/sync.
func (h *DriverHandler) SyncProfile(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	d, err := h.uc.SyncProfile(ctx, id)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, driverToResponse(*d))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "driver not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

func queryInt(logger logx.Logger, w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid "+name)
		return nil, false
	}
	return &v, true
}
