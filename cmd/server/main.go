package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vatwatch/internal/api"
	"vatwatch/internal/common"
	"vatwatch/internal/config"
	"vatwatch/internal/db"
	"vatwatch/internal/db/repositories"
	"vatwatch/internal/geo"
	"vatwatch/internal/jobs"
	"vatwatch/internal/logging"
	"vatwatch/internal/metrics"
	"vatwatch/internal/pipeline"
	"vatwatch/internal/providers"
	"vatwatch/internal/routes"
	"vatwatch/internal/services"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Vatwatch starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// Connect to DB with sqlx
	conn, err := db.InitPostgres(cfg.DSN())
	if err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		log.Fatalf("❌ Failed to connect to Postgres (sqlx): %v", err)
	}
	logging.Info("Connected to Postgres (sqlx)")

	// Connect to DB with GORM for schema migration and sector definitions
	gdb, err := db.InitPostgresORM(cfg.DSN())
	if err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		log.Fatalf("❌ Failed to connect to Postgres (GORM): %v", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("❌ Schema migration failed: %v", err)
	}
	if err := db.EnsureIndexes(conn); err != nil {
		log.Fatalf("❌ Index creation failed: %v", err)
	}
	logging.Info("Schema migrated")

	// Cache: Redis when configured, in-memory otherwise
	var cache common.CacheInterface
	if cfg.RedisURL != "" {
		redisCache, err := common.NewRedisCacheService(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		cache = redisCache
		logging.Info("Connected to Redis cache")
	} else {
		cache = common.NewCacheService(60, 120)
		logging.Info("Using in-memory cache")
	}
	defer cache.Close()

	// Geographic boundaries and sector definitions
	var polygons [][]geo.Point
	if cfg.PolygonFile != "" {
		if polygons, err = geo.LoadPolygonFile(cfg.PolygonFile); err != nil {
			log.Fatalf("❌ Failed to load geographic polygons: %v", err)
		}
		logging.Info("Loaded geographic polygons", "count", len(polygons))
	}

	var sectorDefs []geo.SectorDef
	if cfg.SectorFile != "" {
		if sectorDefs, err = geo.LoadSectorFile(cfg.SectorFile); err != nil {
			log.Fatalf("❌ Failed to load sector file: %v", err)
		}
		logging.Info("Loaded sector definitions", "count", len(sectorDefs))
	}
	sectorIndex := geo.NewSectorIndex(sectorDefs)

	metricsReg := metrics.NewMetricsRegistry()

	// Repositories
	flightRepo := repositories.NewFlightRepository(conn)
	controllerRepo := repositories.NewControllerRepository(conn)
	transceiverRepo := repositories.NewTransceiverRepository(conn)
	sectorRepo := repositories.NewSectorRepository(conn)
	summaryRepo := repositories.NewSummaryRepository(conn)
	sectorDefRepo := repositories.NewSectorDefRepository(gdb)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sectorDefRepo.Seed(rootCtx, sectorDefs); err != nil {
		log.Fatalf("❌ Failed to seed sector definitions: %v", err)
	}

	// Ingest pipeline
	provider := providers.NewVatsimProvider(cfg.DataURL, cfg.TransceiversURL, cfg.FetchTimeout)
	chain := pipeline.NewFilterChain(
		pipeline.NewGeoFilter(polygons, metricsReg),
		pipeline.NewCallsignFilter(cfg.ExcludedCallsignPatterns, cfg.PatternsCaseSensitive, true, true, metricsReg),
	)
	buffer := pipeline.NewBuffer(metricsReg)
	engine := pipeline.NewSectorEngine(sectorIndex, sectorRepo,
		cfg.SectorEnterKts, cfg.SectorExitKts, cfg.ExitDebounceTicks, metricsReg)
	writer := pipeline.NewBatchWriter(conn, buffer, flightRepo, controllerRepo, transceiverRepo, metricsReg)
	poller := pipeline.NewPoller(provider, chain, buffer, engine, writer,
		cfg.PollInterval, cfg.WriteInterval, metricsReg)

	summaryService := services.NewSummaryService(
		conn, flightRepo, controllerRepo, transceiverRepo, summaryRepo,
		services.SummaryConfig{
			FlightCompletionMinutes:     cfg.FlightCompletionMinutes,
			ControllerCompletionMinutes: cfg.ControllerCompletionMinutes,
			ReconnectionThresholdMin:    cfg.ReconnectionThresholdMin,
			InteractionRadiusNM:         cfg.InteractionRadiusNM,
			InteractionTimeout:          cfg.InteractionTimeout,
		},
		metricsReg,
	)

	// Background jobs
	jobsContainer := jobs.InitializeJobs(rootCtx, cfg, summaryService, sectorRepo, flightRepo, engine, buffer)
	pollerDone := make(chan struct{})
	go func() {
		poller.Run(rootCtx)
		close(pollerDone)
	}()

	upSince := time.Now()

	handlers := api.NewHandlers(
		flightRepo, controllerRepo, summaryRepo, sectorDefRepo, sectorRepo,
		chain, buffer, engine, writer, poller, cache, jobsContainer.Summary, upSince,
	)
	router := routes.RegisterRoutes(handlers, metricsReg, conn, cache, poller, writer, upSince)

	// Metrics endpoint outside the Chi router, past the rate limiter
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: mux,
	}

	go func() {
		logging.Info("Server starting", "port", cfg.HTTPPort, "environment", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("HTTP server failed", "error", err.Error())
		}
	}()

	<-rootCtx.Done()
	logging.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("HTTP shutdown failed", "error", err.Error())
	}

	// The poller performs one final flush on cancellation; wait for it so
	// buffered samples reach the database before the process exits.
	<-pollerDone
	logging.Info("Vatwatch stopped")
}
