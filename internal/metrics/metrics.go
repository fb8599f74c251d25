package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewOffersDispatchedTotal returns a Prometheus counter for driver offers created
func NewOffersDispatchedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "offers_dispatched_total",
		Help: "Total number of driver offers created by the dispatcher",
	})
}

// NewOffersExpiredTotal returns a Prometheus counter for offers expired by the sweeper
func NewOffersExpiredTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "offers_expired_total",
		Help: "Total number of pending offers expired by the sweeper",
	})
}

// NewSweepCyclesTotal returns a Prometheus counter for completed sweep cycles
func NewSweepCyclesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_cycles_total",
		Help: "Total number of completed reassignment sweep cycles",
	})
}

// NewClusterRetriesTotal returns a Prometheus counter for cluster retry attempts
func NewClusterRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cluster_retries_total",
		Help: "Total number of cluster reassignment attempts",
	})
}

// NewClustersFailedTotal returns a Prometheus counter for clusters that exhausted retries
func NewClustersFailedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clusters_failed_total",
		Help: "Total number of clusters marked failed after exhausting retries",
	})
}

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewGatewayRetriesTotal returns a Prometheus counter for the number of retry attempts performed by gateways
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	})
}
