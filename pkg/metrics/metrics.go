package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ScrapeRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_runs_total",
			Help: "Total number of scrape runs by outcome status.",
		},
		[]string{"website", "status"},
	)

	ScrapeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrape_duration_seconds",
			Help:    "Duration of whole scrape runs.",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"website"},
	)

	TargetFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_target_failures_total",
			Help: "Category targets that contributed no listings because of an error.",
		},
		[]string{"website", "reason"}, // reason: timeout, navigation, crash, snapshot, page
	)

	ListingsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_listings_extracted_total",
			Help: "Raw listings extracted from category pages.",
		},
		[]string{"website"},
	)

	ProductUpsertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_upserts_total",
			Help: "Product upserts by result.",
		},
		[]string{"result"}, // created, updated, failed
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry. Collectors are
// usable before Init; they just aren't exported.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			ScrapeRunsTotal,
			ScrapeDuration,
			TargetFailuresTotal,
			ListingsExtracted,
			ProductUpsertsTotal,
		)
	})
}
