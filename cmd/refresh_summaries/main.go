// Command refresh_summaries recomputes every student's mastery edges
// and summary node. Meant for cron.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dakshlabs/examgraph-backend/internal/analytics"
	"github.com/dakshlabs/examgraph-backend/internal/clients/rediscache"
	"github.com/dakshlabs/examgraph-backend/internal/data/graph"
	"github.com/dakshlabs/examgraph-backend/internal/platform/envutil"
	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/platform/neo4jdb"
)

func main() {
	log, err := logger.New(envutil.Str("LOG_MODE", "production"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	neoClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Error("Could not init Neo4j client", "error", err.Error())
		os.Exit(1)
	}
	defer neoClient.Close(context.Background())

	summaryCache, err := rediscache.NewSummaryCache(log)
	if err != nil {
		log.Error("Could not init summary cache", "error", err.Error())
		os.Exit(1)
	}
	defer summaryCache.Close()

	policy, err := analytics.LoadPolicy()
	if err != nil {
		log.Error("Could not load analytics policy", "error", err.Error())
		os.Exit(1)
	}

	store := graph.NewStore(neoClient, log)
	analyzer := analytics.NewStudentAnalyzer(store, summaryCache, policy, log)

	processed, failed, err := analyzer.RecomputeAllSummaries(ctx)
	if err != nil {
		log.Error("Summary refresh aborted", "error", err.Error())
		os.Exit(1)
	}
	log.Info("Summary refresh done", "processed", processed, "failed", failed)
	if failed > 0 {
		os.Exit(2)
	}
}
