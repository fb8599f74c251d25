package handlers

import (
	"errors"
	"net/http"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/logx"
)

// OfferHandler serves the driver offer action endpoints.
type OfferHandler struct {
	uc     offerUsecase
	logger logx.Logger
}

// NewOfferHandler wires an offerUsecase into HTTP handlers.
func NewOfferHandler(uc offerUsecase, logger logx.Logger) *OfferHandler {
	return &OfferHandler{uc: uc, logger: logger}
}

// Accept handles POST /offers/{id}/accept.
func (h *OfferHandler) Accept(w http.ResponseWriter, r *http.Request) {
	offerID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req driverActionRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.DriverID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid driver_id")
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	o, err := h.uc.Accept(ctx, offerID, req.DriverID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, offerToResponse(*o))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "offer not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "offer no longer available")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Decline handles POST /offers/{id}/decline.
func (h *OfferHandler) Decline(w http.ResponseWriter, r *http.Request) {
	offerID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req driverActionRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.DriverID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid driver_id")
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	err = h.uc.Decline(ctx, offerID, req.DriverID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "declined"})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "offer not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "offer no longer pending")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Cancel handles POST /offers/{id}/cancel.
func (h *OfferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	offerID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req driverActionRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.DriverID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid driver_id")
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	err = h.uc.Cancel(ctx, offerID, req.DriverID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "cancelled"})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "offer not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "offer no longer pending")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// PendingByDriver handles GET /drivers/{id}/offers.
func (h *OfferHandler) PendingByDriver(w http.ResponseWriter, r *http.Request) {
	driverID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	list, err := h.uc.PendingOffers(ctx, driverID)
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, offersToResponse(list))
}
