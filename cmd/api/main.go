package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agritrace/traceability-backend/api/routes"
	"github.com/agritrace/traceability-backend/internal/batchcode"
	"github.com/agritrace/traceability-backend/internal/batches"
	"github.com/agritrace/traceability-backend/internal/payload"
	"github.com/agritrace/traceability-backend/internal/qrimage"
	"github.com/agritrace/traceability-backend/internal/registry"
	"github.com/agritrace/traceability-backend/internal/signer"
	"github.com/agritrace/traceability-backend/internal/verification"
	"github.com/agritrace/traceability-backend/pkg/config"
	"github.com/agritrace/traceability-backend/pkg/db"
	"github.com/agritrace/traceability-backend/pkg/logger"
	"github.com/agritrace/traceability-backend/pkg/metrics"
	"github.com/agritrace/traceability-backend/pkg/migrate"
	"github.com/agritrace/traceability-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	promRegistry := prometheus.NewRegistry()
	traceMetrics := metrics.NewTraceabilityMetrics(promRegistry)

	reg := registry.New()
	builder := payload.NewBuilder(signer.NewStub(), cfg.Trace.VerificationBaseURL)
	renderer := qrimage.NewRenderer(cfg.Trace.QRSizePx, logg, traceMetrics)
	batchRepo := batches.NewRepository(dbClient.DB())

	batchService, err := batches.NewService(
		batchRepo,
		reg,
		batchcode.NewGenerator(),
		builder,
		renderer,
		dbClient,
		logg,
		traceMetrics,
		cfg.Trace.LegacyCodeRetries,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create batch service", err)
		os.Exit(1)
	}

	verifyService, err := verification.NewService(batchRepo, logg, traceMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create verification service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, reg, batchService, verifyService, promRegistry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
