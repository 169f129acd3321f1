package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jusunglee/olchiki/internal/batch"
	"github.com/jusunglee/olchiki/internal/envsetup"
	"github.com/jusunglee/olchiki/internal/health"
	"github.com/jusunglee/olchiki/internal/logger"
	"github.com/jusunglee/olchiki/internal/metrics"
	"github.com/jusunglee/olchiki/internal/romanize"
	"github.com/jusunglee/olchiki/internal/storage"
	"github.com/jusunglee/olchiki/internal/web"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		saved, err := envsetup.Run()
		if err != nil {
			return fmt.Errorf("running setup wizard: %w", err)
		}
		if !saved {
			return errors.New("setup cancelled")
		}
		return nil
	}

	_ = godotenv.Load()

	fs_ := ff.NewFlagSet("olchiki-web")

	var (
		port            = fs_.Int64Long("port", 3000, "HTTP server port")
		healthPort      = fs_.Int64Long("health-port", 3001, "Health check server port")
		databaseURL     = fs_.StringLong("database-url", "./olchiki.db", "SQLite path or PostgreSQL URL for batch history")
		romanizer       = fs_.StringEnumLong("romanizer", "Romanizer for native-script input", romanize.Providers...)
		llmModel        = fs_.StringLong("llm-model", "", "LLM model name (provider default when empty)")
		anthropicAPIKey = fs_.StringLong("anthropic-api-key", "", "Anthropic API key")
		googleAPIKey    = fs_.StringLong("google-api-key", "", "Google API key")
		adminAPIKey     = fs_.StringLong("admin-api-key", "", "API key for batch history endpoints")
		maxUploadMB     = fs_.Int64Long("max-upload-mb", 32, "Maximum archive upload size in megabytes")
		concurrency     = fs_.Int64Long("concurrency", 4, "Documents converted at once per archive")
		rateLimit       = fs_.Int64Long("rate-limit", 30, "Text conversion requests per client IP per minute")
		archiveLimit    = fs_.Int64Long("archive-rate-limit", 5, "Archive uploads per client IP per minute")
		corsOrigin      = fs_.StringLong("cors-origin", "*", "Origin allowed to call the API from a browser")
	)

	if err := ff.Parse(fs_, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs_))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New()

	if envsetup.NeedsSetup() {
		log.Info("no .env file found, run `web setup` to create one")
	}

	ctx, cancel := context.WithCancelCause(context.Background())

	r, err := romanize.NewFromConfig(ctx, romanize.ProviderConfig{
		Provider:        *romanizer,
		Model:           *llmModel,
		AnthropicAPIKey: *anthropicAPIKey,
		GoogleAPIKey:    *googleAPIKey,
	})
	if err != nil {
		return err
	}

	repo, driver, err := storage.Open(ctx, *databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()
	log.InfoContext(ctx, "connected to database", "driver", driver)

	// Periodically export pgxpool stats as Prometheus gauges
	if pooled, ok := repo.(storage.Pooled); ok {
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s := pooled.PoolStats()
					metrics.DBPoolTotalConns.Set(float64(s.TotalConns()))
					metrics.DBPoolIdleConns.Set(float64(s.IdleConns()))
					metrics.DBPoolAcquiredConns.Set(float64(s.AcquiredConns()))
					metrics.DBPoolMaxConns.Set(float64(s.MaxConns()))
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	processor := batch.NewProcessor(r, int(*concurrency), log)
	router := web.NewRouter(repo, log, processor, web.Config{
		AdminAPIKey:      *adminAPIKey,
		MaxUploadBytes:   *maxUploadMB << 20,
		RateLimit:        int(*rateLimit),
		ArchiveRateLimit: int(*archiveLimit),
		CORSOrigin:       *corsOrigin,
	})
	defer router.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	healthServer := health.New(int(*healthPort), map[string]health.Check{
		"database": func(ctx context.Context) error {
			_, err := repo.ListBatches(ctx, 1)
			return err
		},
	})
	go func() {
		if err := healthServer.Start(); err != nil {
			log.ErrorContext(ctx, "health server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.InfoContext(ctx, "received signal, shutting down gracefully", "signal", sig)
		cancel(errors.New("signal received"))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "server shutdown error", "error", err)
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "health server shutdown error", "error", err)
		}
	}()

	log.InfoContext(ctx, "starting web server", "port", *port, "health_port", *healthPort, "romanizer", *romanizer)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
