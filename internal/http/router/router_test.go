package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"service-dispatch/internal/http/handlers"
	"service-dispatch/internal/http/router"
	"service-dispatch/internal/logx"
)

func newTestRouter() http.Handler {
	logger := logx.Nop()
	return router.New(router.Deps{
		Logger:   logger,
		Base:     handlers.New(logger),
		Offers:   handlers.NewOfferHandler(nil, logger),
		Clusters: handlers.NewClusterHandler(nil, nil, nil, logger),
		Drivers:  handlers.NewDriverHandler(nil, logger),
	})
}

func TestRouter_Ping(t *testing.T) {
	t.Parallel()

	h := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_HealthcheckHead(t *testing.T) {
	t.Parallel()

	h := newTestRouter()

	req := httptest.NewRequest(http.MethodHead, "/healthcheck", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	h := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()

	h := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_InvalidOfferID(t *testing.T) {
	t.Parallel()

	h := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/offers/abc/cancel", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
