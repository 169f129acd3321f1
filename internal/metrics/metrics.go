package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Web server metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "olchiki_http_requests_total",
		Help: "Total HTTP requests by route, method, and status code",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "olchiki_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route", "method"})

	HTTPResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "olchiki_http_response_size_bytes",
		Help:    "HTTP response body size in bytes",
		Buckets: prometheus.ExponentialBuckets(256, 4, 10),
	}, []string{"route"})

	RateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "olchiki_rate_limit_hits_total",
		Help: "Total rate limit rejections by route",
	}, []string{"route"})
)

// Transliteration metrics.
var (
	TransliterationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "olchiki_transliteration_duration_seconds",
		Help:    "Time spent in the romanized to Ol Chiki engine per text",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	RunesTransliterated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "olchiki_runes_transliterated_total",
		Help: "Runes of romanized input passed through the engine",
	})

	RomanizeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "olchiki_romanize_duration_seconds",
		Help:    "Romanization duration in seconds by romanizer",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"romanizer"})
)

// Batch metrics.
var (
	DocumentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "olchiki_documents_total",
		Help: "Archive documents processed by result",
	}, []string{"result"})

	ArchiveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "olchiki_archive_duration_seconds",
		Help:    "Duration of each archive conversion",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
	})
)

// Database pool metrics (gauges updated periodically).
var (
	DBPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "olchiki_db_pool_total_conns",
		Help: "Total number of connections in the pool",
	})

	DBPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "olchiki_db_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})

	DBPoolAcquiredConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "olchiki_db_pool_acquired_conns",
		Help: "Number of acquired connections in the pool",
	})

	DBPoolMaxConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "olchiki_db_pool_max_conns",
		Help: "Max connections configured for the pool",
	})
)
