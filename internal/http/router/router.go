package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"service-dispatch/internal/http/handlers"
	"service-dispatch/internal/http/middleware"
	"service-dispatch/internal/http/middleware/ratelimit"
	"service-dispatch/internal/logx"
)

// Deps collects everything the router mounts.
type Deps struct {
	Logger    logx.Logger
	Base      *handlers.Handlers
	Offers    *handlers.OfferHandler
	Clusters  *handlers.ClusterHandler
	Drivers   *handlers.DriverHandler
	RateLimit *ratelimit.Middleware
}

// New constructs a chi-based http.Handler with base middleware and routes.
// Driver-initiated routes (offer responses, location and availability
// updates) go through the rate limiter; internal and query routes do not.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(5 * time.Second))
	r.Use(middleware.Observability(d.Logger))

	rl := d.RateLimit
	if rl == nil {
		rl = ratelimit.New(d.Logger, nil, nil)
	}
	limited := rl.Handler()

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/clusters", func(r chi.Router) {
		r.Post("/", d.Clusters.Create)
		r.Get("/unassigned", d.Clusters.Unassigned)
		r.Post("/{id}/auto-assign", d.Clusters.AutoAssign)
		r.Post("/{id}/assign", d.Clusters.Assign)
		r.Post("/{id}/split", d.Clusters.Split)
		r.Get("/{id}/tracking", d.Clusters.Tracking)
	})

	r.Route("/offers", func(r chi.Router) {
		r.With(limited).Post("/{id}/accept", d.Offers.Accept)
		r.With(limited).Post("/{id}/decline", d.Offers.Decline)
		r.Post("/{id}/cancel", d.Offers.Cancel)
	})

	r.Route("/drivers", func(r chi.Router) {
		r.Get("/", d.Drivers.List)
		r.Post("/", d.Drivers.Create)
		r.Get("/{id}", d.Drivers.GetByID)
		r.Patch("/{id}", d.Drivers.Update)
		r.With(limited).Put("/{id}/location", d.Drivers.UpdateLocation)
		r.With(limited).Put("/{id}/availability", d.Drivers.SetAvailability)
		r.Post("/{id}/sync", d.Drivers.SyncProfile)
		r.Get("/{id}/offers", d.Offers.PendingByDriver)
	})

	r.NotFound(http.HandlerFunc(d.Base.NotFound))

	return r
}
