package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

// ClusterHandler serves the cluster and assignment endpoints.
type ClusterHandler struct {
	clusters clusterUsecase
	assign   assignUsecase
	queries  clusterQueries
	logger   logx.Logger
}

// NewClusterHandler wires the cluster usecases into HTTP handlers.
func NewClusterHandler(clusters clusterUsecase, assign assignUsecase, queries clusterQueries, logger logx.Logger) *ClusterHandler {
	return &ClusterHandler{clusters: clusters, assign: assign, queries: queries, logger: logger}
}

// Create handles POST /clusters.
func (h *ClusterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClusterRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.DeliveryID <= 0 || req.VendorID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "delivery_id and vendor_id are required")
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	id, err := h.clusters.CreateCluster(ctx, req.DeliveryID, req.toLeg())
	switch {
	case err == nil:
		w.Header().Set("Location", fmt.Sprintf("/clusters/%d", id))
		writeJSON(h.logger, w, r, http.StatusCreated, map[string]int64{"id": id})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid cluster data")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "delivery not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "delivery no longer accepts clusters")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// AutoAssign handles POST /clusters/{id}/auto-assign. When no driver is
// currently eligible it still returns 200 with an empty offer list; the
// background sweeper retries the cluster later.
func (h *ClusterHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	clusterID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req autoAssignRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	var override *domain.Coordinates
	if req.PickupLat != nil || req.PickupLon != nil {
		if req.PickupLat == nil || req.PickupLon == nil {
			writeError(h.logger, w, r, http.StatusBadRequest, "pickup_lat and pickup_lon must be set together")
			return
		}
		override = &domain.Coordinates{Lat: *req.PickupLat, Lon: *req.PickupLon}
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	offers, err := h.assign.AutoAssign(ctx, clusterID, override)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, offersToResponse(offers))
	case errors.Is(err, apperr.ErrNoCandidate):
		writeJSON(h.logger, w, r, http.StatusOK, offersToResponse(nil))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid pickup coordinates")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "cluster not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "cluster not matchable")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Assign handles POST /clusters/{id}/assign.
func (h *ClusterHandler) Assign(w http.ResponseWriter, r *http.Request) {
	clusterID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req assignDriverRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.DriverID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid driver_id")
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	err = h.assign.AssignDriver(ctx, clusterID, req.DriverID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "assigned"})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "cluster or driver not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "cluster already assigned or driver not dispatchable")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Split handles POST /clusters/{id}/split.
func (h *ClusterHandler) Split(w http.ResponseWriter, r *http.Request) {
	clusterID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req splitClusterRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.DeliveryID <= 0 || req.DriverID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "delivery_id and driver_id are required")
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	c, err := h.clusters.Split(ctx, req.DeliveryID, clusterID, req.DriverID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusCreated, clusterToResponse(*c))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "cluster not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "cluster belongs to another driver")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Unassigned handles GET /clusters/unassigned.
func (h *ClusterHandler) Unassigned(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	list, err := h.queries.UnassignedClusters(ctx)
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, clustersToResponse(list))
}

// Tracking handles GET /clusters/{id}/tracking.
func (h *ClusterHandler) Tracking(w http.ResponseWriter, r *http.Request) {
	clusterID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	t, err := h.queries.GetTracking(ctx, clusterID)
	switch {
	case err == nil && t != nil:
		writeJSON(h.logger, w, r, http.StatusOK, trackingToResponse(*t))
	case err == nil || errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "tracking not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
