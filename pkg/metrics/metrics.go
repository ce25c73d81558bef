package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	StockMovements     *prometheus.CounterVec
	MovementRejections *prometheus.CounterVec
	MovementRetries    prometheus.Counter
	WalletDeltas       *prometheus.CounterVec
	StatsCacheHits     prometheus.Counter
	RouteOptimizations *prometheus.CounterVec
	RouteOptimizeSec   prometheus.Histogram
	HTTPRequests       *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blueice_stock_movements_total",
		Help: "Committed stock movements by kind.",
	}, []string{"kind"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blueice_stock_movement_rejections_total",
		Help: "Rejected stock movements by kind and reason.",
	}, []string{"kind", "reason"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blueice_stock_movement_retries_total",
		Help: "Stock movement transactions retried after a serialization conflict.",
	})
	walletDeltas := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blueice_wallet_deltas_total",
		Help: "Order bottle deltas by outcome.",
	}, []string{"outcome"})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blueice_inventory_stats_cache_hits_total",
	})
	optimizations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blueice_route_optimizations_total",
		Help: "Route sequence optimizations by result.",
	}, []string{"result"})
	optimizeSec := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "blueice_route_optimize_seconds",
		Buckets: prometheus.DefBuckets,
	})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blueice_http_requests_total",
	}, []string{"method", "status"})

	r.MustRegister(movements, rejections, retries, walletDeltas, cacheHits, optimizations, optimizeSec, httpRequests)
	return &Registry{
		reg:                r,
		StockMovements:     movements,
		MovementRejections: rejections,
		MovementRetries:    retries,
		WalletDeltas:       walletDeltas,
		StatsCacheHits:     cacheHits,
		RouteOptimizations: optimizations,
		RouteOptimizeSec:   optimizeSec,
		HTTPRequests:       httpRequests,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
