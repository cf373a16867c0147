package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// JMA document fetches by resource (latest_time, snapshot, forecast) and status label.
	UpstreamFetchesTotal *prometheus.CounterVec

	// JMA fetch latency. Watch for: p95 > 2s, the public endpoint is usually fast.
	UpstreamFetchDuration *prometheus.HistogramVec

	// Fetch failures by error category (timeout, network, http_status, unknown).
	UpstreamFetchErrorsTotal *prometheus.CounterVec

	// Documents served from the document cache instead of JMA.
	DocumentCacheHitsTotal prometheus.Counter

	// Extraction outcomes by kind (observation, forecast) and result (ok, partial, missing).
	RecordsExtractedTotal *prometheus.CounterVec

	// Entries in each store file after the last reconciliation.
	StoreEntries *prometheus.GaugeVec

	// Entries dropped by the 7-day retention.
	StorePrunedTotal *prometheus.CounterVec

	// Collector runs by result (success, error).
	CollectorRunsTotal *prometheus.CounterVec

	// Unix time of the last successful collector run. Alert when stale.
	CollectorLastSuccess prometheus.Gauge

	// Read-only API requests.
	HTTPRequestsTotal *prometheus.CounterVec

	// Read-only API latency.
	HTTPRequestDuration *prometheus.HistogramVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	UpstreamFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamFetchesTotal",
			Help: "Total number of JMA document fetches",
		},
		[]string{"resource", "status"},
	)
	UpstreamFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamFetchDurationSeconds",
			Help:    "JMA document fetch latency in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"resource"},
	)
	UpstreamFetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamFetchErrorsTotal",
			Help: "Failed JMA document fetches by error category",
		},
		[]string{"category"},
	)
	DocumentCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "documentCacheHitsTotal",
			Help: "JMA documents served from the document cache",
		},
	)
	RecordsExtractedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recordsExtractedTotal",
			Help: "Extraction outcomes by record kind and result",
		},
		[]string{"kind", "result"},
	)
	StoreEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storeEntries",
			Help: "Entries in each store file after the last reconciliation",
		},
		[]string{"category"},
	)
	StorePrunedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storePrunedTotal",
			Help: "Store entries dropped by retention",
		},
		[]string{"category"},
	)
	CollectorRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collectorRunsTotal",
			Help: "Collector runs by result",
		},
		[]string{"result"},
	)
	CollectorLastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "collectorLastSuccessTimestampSeconds",
			Help: "Unix time of the last successful collector run",
		},
	)
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	registry.MustRegister(
		UpstreamFetchesTotal, UpstreamFetchDuration, UpstreamFetchErrorsTotal,
		DocumentCacheHitsTotal,
		RecordsExtractedTotal,
		StoreEntries, StorePrunedTotal,
		CollectorRunsTotal, CollectorLastSuccess,
		HTTPRequestsTotal, HTTPRequestDuration,
	)
}

// RecordRun records the outcome of one collector run.
func RecordRun(err error, finished time.Time) {
	if err != nil {
		CollectorRunsTotal.WithLabelValues("error").Inc()
		return
	}
	CollectorRunsTotal.WithLabelValues("success").Inc()
	CollectorLastSuccess.Set(float64(finished.Unix()))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
