package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// MigrationReport tallies one legacy tag-schema migration run.
type MigrationReport struct {
	DryRun            bool `json:"dry_run"`
	PropsBackfilled   int  `json:"props_backfilled"`
	TopicEdgesRenamed int  `json:"topic_edges_renamed"`
	SkillEdgesRenamed int  `json:"skill_edges_renamed"`
	SourcesRewritten  int  `json:"sources_rewritten"`
}

// MigrateLegacyTagEdges upgrades tag edges written before provenance
// tracking existed: backfills missing confidence/source/version
// properties, renames HAS_TOPIC to TESTS_CONCEPT and HAS_SKILL to
// REQUIRES_SKILL, and rewrites the retired 'ai_generated' source to
// 'llm'. With dryRun it only counts what a live run would touch. This
// is the one code path allowed to delete relationships, and only
// because each delete is paired with a recreate under the new type.
func (s *Store) MigrateLegacyTagEdges(ctx context.Context, dryRun bool) (*MigrationReport, error) {
	report := &MigrationReport{DryRun: dryRun}

	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		r := *report

		n, err := runCount(ctx, tx, dryRun, `
MATCH (:Question)-[rel:TESTS_CONCEPT|REQUIRES_SKILL|HAS_DIFFICULTY|HAS_TOPIC|HAS_SKILL]->()
WHERE rel.version IS NULL OR rel.tag_source IS NULL OR rel.confidence_score IS NULL
`, `
SET rel.confidence_score = coalesce(rel.confidence_score, 1.0),
    rel.tag_source = coalesce(rel.tag_source, 'client'),
    rel.version = coalesce(rel.version, 1)
RETURN count(rel) AS n
`)
		if err != nil {
			return nil, err
		}
		r.PropsBackfilled = n

		n, err = runCount(ctx, tx, dryRun, `
MATCH (q:Question)-[rel:HAS_TOPIC]->(c:Concept)
`, `
CREATE (q)-[nr:TESTS_CONCEPT]->(c)
SET nr = properties(rel)
DELETE rel
RETURN count(nr) AS n
`)
		if err != nil {
			return nil, err
		}
		r.TopicEdgesRenamed = n

		n, err = runCount(ctx, tx, dryRun, `
MATCH (q:Question)-[rel:HAS_SKILL]->(sk:Skill)
`, `
CREATE (q)-[nr:REQUIRES_SKILL]->(sk)
SET nr = properties(rel)
DELETE rel
RETURN count(nr) AS n
`)
		if err != nil {
			return nil, err
		}
		r.SkillEdgesRenamed = n

		n, err = runCount(ctx, tx, dryRun, `
MATCH (:Question)-[rel:TESTS_CONCEPT|REQUIRES_SKILL|HAS_DIFFICULTY]->()
WHERE rel.tag_source = 'ai_generated'
`, `
SET rel.tag_source = 'llm'
RETURN count(rel) AS n
`)
		if err != nil {
			return nil, err
		}
		r.SourcesRewritten = n

		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: migrate legacy tag edges: %w", err)
	}
	r := out.(MigrationReport)
	report = &r
	return report, nil
}

// runCount executes matchPart+actionPart, or only counts the match when
// dry-running.
func runCount(ctx context.Context, tx neo4j.ManagedTransaction, dryRun bool, matchPart, actionPart string) (int, error) {
	query := matchPart
	if dryRun {
		query += "\nRETURN count(rel) AS n"
	} else {
		query += actionPart
	}
	res, err := tx.Run(ctx, query, nil)
	if err != nil {
		return 0, err
	}
	if !res.Next(ctx) {
		return 0, res.Err()
	}
	v, _ := res.Record().Get("n")
	return asInt(v), nil
}
