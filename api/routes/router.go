package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agritrace/traceability-backend/api/controllers"
	"github.com/agritrace/traceability-backend/api/middleware"
	"github.com/agritrace/traceability-backend/internal/batches"
	"github.com/agritrace/traceability-backend/internal/registry"
	"github.com/agritrace/traceability-backend/internal/verification"
	"github.com/agritrace/traceability-backend/pkg/config"
	"github.com/agritrace/traceability-backend/pkg/logger"
	"github.com/agritrace/traceability-backend/pkg/redis"
)

// NewRouter wires the HTTP surface. All handlers are thin glue over the
// domain services; rate limiting applies only to the verification surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	reg *registry.Registry,
	batchService batches.Service,
	verifyService verification.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	scanPolicy := middleware.NewScanRateLimitPolicy(
		"verify",
		cfg.ScanRateLimit.Window,
		cfg.ScanRateLimit.IPLimit,
		cfg.ScanRateLimit.PerBatch,
	)

	// a typed nil *redis.Client must not reach the limiter or pingers as a
	// non-nil interface
	var redisPinger controllers.Pinger
	scanLimiter := middleware.ScanRateLimit(scanPolicy, nil, logg)
	if redisClient != nil {
		redisPinger = redisClient
		scanLimiter = middleware.ScanRateLimit(scanPolicy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// public verification URL convention: {base}/verify/{batchCode}
	r.With(scanLimiter).Get("/verify/{batchCode}", controllers.PublicVerify(verifyService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProductCategories(reg))
			r.Post("/validate-packaging", controllers.ValidatePackaging(reg, logg))
			r.Get("/{category}", controllers.GetProductCategory(reg, logg))
			r.Get("/{category}/{subCategory}", controllers.GetProductVariant(reg, logg))
		})

		r.Route("/batches", func(r chi.Router) {
			r.Post("/", controllers.CreateBatch(batchService, logg))
			r.Post("/legacy", controllers.CreateLegacyBatch(batchService, logg))
			r.Get("/{batchCode}", controllers.GetBatch(batchService, logg))
		})

		r.With(scanLimiter).Post("/verify/{batchCode}", controllers.VerifyBatch(verifyService, logg))
	})

	return r
}
