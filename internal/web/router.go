package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jusunglee/olchiki/internal/batch"
	"github.com/jusunglee/olchiki/internal/db"
	"github.com/jusunglee/olchiki/internal/web/handlers"
	"github.com/jusunglee/olchiki/internal/web/middleware"
)

type Config struct {
	AdminAPIKey    string
	MaxUploadBytes int64
	// Requests allowed per client IP per minute on POST /transliterate.
	RateLimit int
	// Uploads allowed per client IP per minute on POST /archives.
	ArchiveRateLimit int
	// Allowed CORS origin; empty allows any.
	CORSOrigin string
}

type Router struct {
	repo      db.Repository
	log       *slog.Logger
	processor *batch.Processor
	cfg       Config

	textLimiter    *middleware.RateLimiter
	archiveLimiter *middleware.RateLimiter
}

func NewRouter(repo db.Repository, log *slog.Logger, processor *batch.Processor, cfg Config) *Router {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 30
	}
	if cfg.ArchiveRateLimit <= 0 {
		cfg.ArchiveRateLimit = 5
	}
	return &Router{
		repo:           repo,
		log:            log,
		processor:      processor,
		cfg:            cfg,
		textLimiter:    middleware.NewRateLimiter(cfg.RateLimit, time.Minute),
		archiveLimiter: middleware.NewRateLimiter(cfg.ArchiveRateLimit, time.Minute),
	}
}

// Close stops the rate limiters' background sweeps.
func (r *Router) Close() {
	r.textLimiter.Stop()
	r.archiveLimiter.Stop()
}

func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	transliterateHandler := handlers.NewTransliterateHandler(r.processor, r.log)
	archiveHandler := handlers.NewArchiveHandler(r.processor, r.repo, r.log, r.cfg.MaxUploadBytes)
	batchHandler := handlers.NewBatchHandler(r.repo, r.log)

	mux.Handle("GET /api/v1/languages",
		middleware.Chain(
			http.HandlerFunc(handlers.Languages),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.CacheControl("public, max-age=3600"),
		),
	)

	mux.Handle("POST /api/v1/transliterate",
		middleware.Chain(
			http.HandlerFunc(transliterateHandler.Create),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(r.textLimiter),
		),
	)

	mux.Handle("POST /api/v1/archives",
		middleware.Chain(
			http.HandlerFunc(archiveHandler.Upload),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(r.archiveLimiter),
		),
	)

	mux.Handle("GET /api/v1/batches",
		middleware.Chain(
			http.HandlerFunc(batchHandler.List),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.APIKeyAuth(r.cfg.AdminAPIKey),
			middleware.CacheControl("no-store"),
		),
	)

	mux.Handle("GET /api/v1/batches/{id}",
		middleware.Chain(
			http.HandlerFunc(batchHandler.Get),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.APIKeyAuth(r.cfg.AdminAPIKey),
			middleware.CacheControl("no-store"),
		),
	)

	return middleware.CORS(r.cfg.CORSOrigin)(mux)
}
