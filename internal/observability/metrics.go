package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	ListingsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_listings_fetched_total",
			Help: "Listings returned by store feeds, after sold-out filtering",
		},
		[]string{"source"},
	)
	ListingsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_listings_skipped_total",
			Help: "Listings left out because the feed marked them sold out",
		},
		[]string{"source"},
	)
	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_total",
			Help: "Store sync runs by result",
		},
		[]string{"result"},
	)
	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_sync_duration_seconds",
			Help:    "Wall time of one store sync, fetch included",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)
	ProductsSynced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_products_synced_total",
			Help: "Listings written by store syncs",
		},
	)
)

var registerOnce sync.Once

// Register adds the collectors to the default registry; safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ListingsFetched, ListingsSkipped, SyncRuns, SyncDuration, ProductsSynced)
	})
}

// Start serves /metrics on port in the background.
func Start(port string, log *zap.Logger) {
	Register()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}
