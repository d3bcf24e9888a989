package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/invoicecapture-backend/api"
	"github.com/angelmondragon/invoicecapture-backend/api/routes"
	"github.com/angelmondragon/invoicecapture-backend/internal/analytics"
	"github.com/angelmondragon/invoicecapture-backend/internal/classifier"
	"github.com/angelmondragon/invoicecapture-backend/internal/extraction"
	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	"github.com/angelmondragon/invoicecapture-backend/internal/media"
	"github.com/angelmondragon/invoicecapture-backend/internal/users"
	"github.com/angelmondragon/invoicecapture-backend/pkg/config"
	"github.com/angelmondragon/invoicecapture-backend/pkg/db"
	"github.com/angelmondragon/invoicecapture-backend/pkg/gemini"
	"github.com/angelmondragon/invoicecapture-backend/pkg/instance"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
	"github.com/angelmondragon/invoicecapture-backend/pkg/metrics"
	"github.com/angelmondragon/invoicecapture-backend/pkg/migrate"
	"github.com/angelmondragon/invoicecapture-backend/pkg/pubsub"
	"github.com/angelmondragon/invoicecapture-backend/pkg/redis"
	"github.com/angelmondragon/invoicecapture-backend/pkg/storage/gcs"
)

const shutdownTimeout = 20 * time.Second

type closer interface {
	Close() error
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	// Amounts leave the API as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []closer
	defer func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i].Close())
		}
		if errs != nil {
			logg.Error(context.Background(), "error releasing resources", errs)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	closers = append(closers, dbClient)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	closers = append(closers, redisClient)

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	requireResource(ctx, logg, "gcs", err)
	closers = append(closers, gcsClient)

	geminiClient, err := gemini.New(ctx, cfg.Gemini, logg)
	requireResource(ctx, logg, "gemini", err)
	closers = append(closers, geminiClient)

	var publisher invoices.EventPublisher = invoices.NoopPublisher{}
	if cfg.PubSub.InvoiceTopic != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		requireResource(ctx, logg, "pubsub", err)
		closers = append(closers, psClient)
		publisher = invoices.NewTopicPublisher(psClient.InvoicePublisher())
	} else {
		logg.Warn(ctx, "pubsub invoice topic not configured, lifecycle events are dropped")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	invoiceService, err := invoices.NewService(invoices.ServiceParams{
		Repo:             invoices.NewRepository(dbClient.DB()),
		Tx:               dbClient,
		Classifier:       classifier.Default(),
		Cache:            invoices.NewRedisListCache(redisClient, cfg.Invoices.ListCacheTTL, logg),
		Locker:           invoices.NewRedisEditLocker(redisClient, cfg.Invoices.EditLockTTL),
		Publisher:        publisher,
		Metrics:          pipelineMetrics,
		Logger:           logg,
		AnalyticsMaxRows: cfg.Invoices.AnalyticsMaxRows,
	})
	requireResource(ctx, logg, "invoice service", err)

	userService, err := users.NewService(users.NewRepository(dbClient.DB()), cfg.Signup.AllowedEmailDomain)
	requireResource(ctx, logg, "user service", err)

	analyticsService, err := analytics.NewService(invoiceService)
	requireResource(ctx, logg, "analytics service", err)

	mediaService, err := media.NewService(gcsClient, cfg.Media.MaxUploadBytes(), logg)
	requireResource(ctx, logg, "media service", err)

	extractionService, err := extraction.NewService(extraction.ServiceParams{
		Model: geminiClient,
		Preprocessor: &extraction.Preprocessor{
			MaxWidth:  cfg.Media.ImageMaxWidth,
			MaxHeight: cfg.Media.ImageMaxHeight,
			Quality:   cfg.Media.ImageQuality,
			Logger:    logg,
		},
		Metrics:  pipelineMetrics,
		Logger:   logg,
		MaxBytes: cfg.Media.MaxUploadBytes(),
	})
	requireResource(ctx, logg, "extraction service", err)

	handler := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		gcsClient,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		userService,
		invoiceService,
		analyticsService,
		extractionService,
		mediaService,
	)

	addr := ""
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	server := api.NewServer(cfg, addr, handler)

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
		}
		return
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(logCtx, "graceful shutdown failed", err)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
