package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dakshlabs/examgraph-backend/internal/analytics"
	"github.com/dakshlabs/examgraph-backend/internal/clients/gemini"
	"github.com/dakshlabs/examgraph-backend/internal/clients/rediscache"
	"github.com/dakshlabs/examgraph-backend/internal/data/graph"
	"github.com/dakshlabs/examgraph-backend/internal/handlers"
	"github.com/dakshlabs/examgraph-backend/internal/ingestion"
	"github.com/dakshlabs/examgraph-backend/internal/maintenance"
	"github.com/dakshlabs/examgraph-backend/internal/observability"
	"github.com/dakshlabs/examgraph-backend/internal/platform/envutil"
	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/platform/neo4jdb"
	"github.com/dakshlabs/examgraph-backend/internal/server"
	"github.com/dakshlabs/examgraph-backend/internal/tagging"
)

func main() {
	// Logger
	logMode := envutil.Str("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "examgraph-backend",
		Environment: envutil.Str("APP_ENV", "development"),
		Version:     envutil.Str("APP_VERSION", "dev"),
	})
	if shutdownOTel != nil {
		defer func() {
			if err := shutdownOTel(context.Background()); err != nil {
				log.Warn("OTel shutdown failed", "error", err.Error())
			}
		}()
	}

	// Neo4j
	log.Info("Connecting to Neo4j...")
	neoClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Error("Could not init Neo4j client", "error", err.Error())
		os.Exit(1)
	}
	defer neoClient.Close(context.Background())

	store := graph.NewStore(neoClient, log)
	if err := store.InitSchema(ctx); err != nil {
		log.Error("Schema init failed", "error", err.Error())
		os.Exit(1)
	}

	// Redis
	summaryCache, err := rediscache.NewSummaryCache(log)
	if err != nil {
		log.Error("Could not init summary cache", "error", err.Error())
		os.Exit(1)
	}
	defer summaryCache.Close()

	// Classifier
	log.Info("Setting up classifier gateway...")
	geminiClient, err := gemini.New(ctx, gemini.ConfigFromEnv(), log)
	if err != nil {
		log.Error("Could not init Gemini client", "error", err.Error())
		os.Exit(1)
	}
	gateway := tagging.NewGateway(geminiClient, tagging.NewRateLimiterFromEnv(), log)

	// Policy
	policy, err := analytics.LoadPolicy()
	if err != nil {
		log.Error("Could not load analytics policy", "error", err.Error())
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services...")
	engine := tagging.NewEngine(store, gateway, log)
	resolver := tagging.NewResolver(store, log)
	studentAnalyzer := analytics.NewStudentAnalyzer(store, summaryCache, policy, log)
	cohortAnalyzer := analytics.NewCohortAnalyzer(store, policy, log)
	performanceReader := analytics.NewPerformanceReader(store, log)
	ingestionSvc := ingestion.NewService(store, log)
	maintenanceSvc := maintenance.NewService(store, log)

	// Handlers
	router := server.NewRouter(server.RouterConfig{
		TaggingHandler:     handlers.NewTaggingHandler(log, engine, resolver),
		AnalyticsHandler:   handlers.NewAnalyticsHandler(log, studentAnalyzer, cohortAnalyzer, performanceReader),
		IngestionHandler:   handlers.NewIngestionHandler(log, ingestionSvc),
		MaintenanceHandler: handlers.NewMaintenanceHandler(log, maintenanceSvc),
	})

	addr := ":" + envutil.Str("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", "error", err.Error())
	}
}
