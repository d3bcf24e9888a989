package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/invoicecapture-backend/api/controllers"
	"github.com/angelmondragon/invoicecapture-backend/api/middleware"
	"github.com/angelmondragon/invoicecapture-backend/internal/access"
	"github.com/angelmondragon/invoicecapture-backend/internal/analytics"
	"github.com/angelmondragon/invoicecapture-backend/internal/extraction"
	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	"github.com/angelmondragon/invoicecapture-backend/internal/media"
	"github.com/angelmondragon/invoicecapture-backend/internal/users"
	"github.com/angelmondragon/invoicecapture-backend/pkg/config"
	"github.com/angelmondragon/invoicecapture-backend/pkg/db"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
	"github.com/angelmondragon/invoicecapture-backend/pkg/redis"
	"github.com/angelmondragon/invoicecapture-backend/pkg/storage/gcs"
)

// RedisStore is the slice of the redis client the HTTP layer needs:
// health, idempotency records and rate-limit counters.
type RedisStore interface {
	redis.Pinger
	redis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisStore RedisStore,
	gcsP gcs.Pinger,
	metricsHandler http.Handler,
	userService users.Service,
	invoiceService invoices.Service,
	analyticsService analytics.Service,
	extractionService extraction.Service,
	mediaService media.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var (
		idempotencyStore redis.IdempotencyStore
		rateStore        interface {
			IncrWithTTL(context.Context, string, time.Duration) (int64, error)
		}
	)
	readiness := map[string]controllers.Pinger{}
	if dbP != nil {
		readiness["db"] = dbP
	}
	if gcsP != nil {
		readiness["gcs"] = gcsP
	}
	if redisStore != nil {
		idempotencyStore = redisStore
		rateStore = redisStore
		readiness["redis"] = redisStore
	}

	maxUpload := cfg.Media.MaxUploadBytes()
	signupPolicy := middleware.NewRateLimitPolicy(
		"signup",
		cfg.RateLimit.Window,
		cfg.RateLimit.SignupIPLimit,
		cfg.RateLimit.SignupEmailLimit,
	)
	extractionPolicy := middleware.NewUserRateLimitPolicy("extractions", cfg.RateLimit.Window, cfg.RateLimit.ExtractionUserLimit)
	uploadPolicy := middleware.NewUserRateLimitPolicy("uploads", cfg.RateLimit.Window, cfg.RateLimit.UploadUserLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.With(middleware.RateLimit(signupPolicy, rateStore, logg)).
			Post("/signup/validate", controllers.SignupValidate(userService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, userService, logg))

		capture := middleware.RequireAccess(access.ResourceInvoicesCapture, logg)
		history := middleware.RequireAccess(access.ResourceInvoicesHistory, logg)
		review := middleware.RequireAccess(access.ResourceInvoicesReview, logg)

		r.With(capture, middleware.RateLimit(uploadPolicy, rateStore, logg)).
			Post("/uploads", controllers.UploadDocument(mediaService, maxUpload, logg))
		r.With(capture, middleware.RateLimit(extractionPolicy, rateStore, logg)).
			Post("/extractions", controllers.ExtractInvoice(extractionService, invoiceService, maxUpload, logg))

		r.Route("/invoices", func(r chi.Router) {
			r.With(capture).Post("/preview", controllers.PreviewInvoice(invoiceService, logg))
			r.With(capture, middleware.Idempotency(idempotencyStore, logg)).Post("/", controllers.CreateInvoice(invoiceService, logg))
			r.With(history).Get("/", controllers.ListInvoices(invoiceService, logg))
			r.With(history).Get("/{invoiceId}", controllers.GetInvoice(invoiceService, logg))
			r.With(review).Patch("/{invoiceId}/status", controllers.UpdateInvoiceStatus(invoiceService, logg))
			r.With(review).Put("/{invoiceId}", controllers.UpdateInvoice(invoiceService, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Use(middleware.RequireAccess(access.ResourceAnalyticsRead, logg))
			r.Get("/agencies", controllers.AnalyticsByAgency(analyticsService, logg))
			r.Get("/users", controllers.AnalyticsTopUsers(analyticsService, logg))
			r.Get("/compare", controllers.AnalyticsCompareStores(analyticsService, logg))
			r.Get("/price-trend", controllers.AnalyticsPriceTrend(analyticsService, logg))
			r.Get("/catalogs", controllers.AnalyticsCatalogs(analyticsService, logg))
			r.Get("/summary", controllers.AnalyticsSummary(analyticsService, logg))
		})

		r.Route("/exports", func(r chi.Router) {
			r.Use(middleware.RequireAccess(access.ResourceExportsRead, logg))
			r.Get("/invoices.xlsx", controllers.ExportInvoices(invoiceService, logg))
			r.Get("/price-trend.xlsx", controllers.ExportPriceTrend(analyticsService, logg))
		})
	})

	return r
}
