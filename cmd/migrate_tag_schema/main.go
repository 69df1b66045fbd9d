// Command migrate_tag_schema upgrades legacy tag edges to the
// provenance schema. Run with -dry-run first.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dakshlabs/examgraph-backend/internal/data/graph"
	"github.com/dakshlabs/examgraph-backend/internal/maintenance"
	"github.com/dakshlabs/examgraph-backend/internal/platform/envutil"
	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/platform/neo4jdb"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "count what the migration would touch without writing")
	flag.Parse()

	log, err := logger.New(envutil.Str("LOG_MODE", "production"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	neoClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Error("Could not init Neo4j client", "error", err.Error())
		os.Exit(1)
	}
	defer neoClient.Close(context.Background())

	store := graph.NewStore(neoClient, log)
	svc := maintenance.NewService(store, log)

	report, err := svc.MigrateLegacySchema(context.Background(), *dryRun)
	if err != nil {
		log.Error("Migration failed", "error", err.Error())
		os.Exit(1)
	}
	fmt.Printf("dry_run=%v props_backfilled=%d topic_edges_renamed=%d skill_edges_renamed=%d sources_rewritten=%d\n",
		report.DryRun, report.PropsBackfilled, report.TopicEdgesRenamed, report.SkillEdgesRenamed, report.SourcesRewritten)
}
