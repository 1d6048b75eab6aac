package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Listings
	ResourceOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_operations_total",
			Help: "Successful resource mutations",
		},
		[]string{"op"}, // create|update|availability|delete
	)
	WatchlistOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_operations_total",
			Help: "Watchlist adds and removals",
		},
		[]string{"op", "result"},
	)

	// Auth
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"}, // ok|invalid
	)
	SessionsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_pruned_total",
			Help: "Expired sessions removed by the prune job",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(ResourceOps)
		prometheus.MustRegister(WatchlistOps)
		prometheus.MustRegister(LoginsTotal)
		prometheus.MustRegister(SessionsPruned)
		prometheus.MustRegister(WorkerQueueDepth)
	})
}
