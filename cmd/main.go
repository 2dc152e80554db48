package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/gcp"
	rediscache "github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/redis"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/vertex"
	projectrepo "github.com/SamruddhiBrainlab/Insightsmix-project/internal/data/repos/project"
	userrepo "github.com/SamruddhiBrainlab/Insightsmix-project/internal/data/repos/user"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/db"
	httpx "github.com/SamruddhiBrainlab/Insightsmix-project/internal/http"
	httpH "github.com/SamruddhiBrainlab/Insightsmix-project/internal/http/handlers"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/observability"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/envutil"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/services"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	log, err := logger.New(envutil.Get("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing (env-gated; no-op unless OTEL_ENABLED is set)
	ctx := context.Background()
	if shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "insightsmix-backend",
		Environment: envutil.Get("LOG_MODE", "development"),
	}); shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	// Database
	dbService, err := db.NewService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Error("Database migration failed", "error", err)
		os.Exit(1)
	}
	gdb := dbService.DB()

	// Repos
	userRepo := userrepo.NewUserRepo(gdb, log)
	projectRepo := projectrepo.NewProjectRepo(gdb, log)

	// Clients
	store, err := gcp.NewBucketStore(log)
	if err != nil {
		log.Error("Could not init artifact store", "error", err)
		os.Exit(1)
	}
	executor, err := vertex.NewTrainingExecutor(ctx, log)
	if err != nil {
		log.Error("Could not init training executor", "error", err)
		os.Exit(1)
	}
	generator, err := vertex.NewDocumentGenerator(ctx, log)
	if err != nil {
		log.Error("Could not init document generator", "error", err)
		os.Exit(1)
	}
	reportCache, err := rediscache.NewReportCache(log)
	if err != nil {
		log.Warn("Report cache disabled", "error", err)
		reportCache = nil
	}
	if reportCache != nil {
		defer reportCache.Close()
	}

	// Services
	registry := services.NewProjectRegistry(gdb, log, userRepo, projectRepo)
	datasets := services.NewDatasetService(log, registry, store)
	training := services.NewTrainingService(log, registry, datasets, store, executor)
	reconciler := services.NewStatusReconciler(log, registry, executor)
	resolver := services.NewReportResolver(log, registry, store, generator, reportCache, services.ResolverConfig{
		SettleWait: envutil.Duration("REPORT_SETTLE_WAIT", 0*time.Second),
	})

	// Handlers
	healthHandler := httpH.NewHealthHandler()
	datasetHandler := httpH.NewDatasetHandler(datasets)
	projectHandler := httpH.NewProjectHandler(training, reconciler, registry)
	reportHandler := httpH.NewReportHandler(resolver)

	server := httpx.NewServer(httpx.RouterConfig{
		Log:            log,
		DatasetHandler: datasetHandler,
		ProjectHandler: projectHandler,
		ReportHandler:  reportHandler,
		HealthHandler:  healthHandler,
	})

	port := envutil.Get("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := server.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
