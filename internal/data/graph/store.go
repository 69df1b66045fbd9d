package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/platform/neo4jdb"
)

// Store is the graph-access layer over Neo4j. It owns every Cypher
// statement in the system; services above it see typed records only.
// Nothing here deletes data except the explicitly invoked legacy-edge
// migration in migrate.go.
type Store struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewStore(client *neo4jdb.Client, log *logger.Logger) *Store {
	return &Store{
		client: client,
		log:    log.With("store", "Graph"),
	}
}

var schemaStatements = []string{
	`CREATE CONSTRAINT question_id_unique IF NOT EXISTS FOR (q:Question) REQUIRE q.question_id IS UNIQUE`,
	`CREATE CONSTRAINT student_id_unique IF NOT EXISTS FOR (s:Student) REQUIRE s.student_id IS UNIQUE`,
	`CREATE CONSTRAINT exam_id_unique IF NOT EXISTS FOR (e:Exam) REQUIRE e.exam_id IS UNIQUE`,
	`CREATE CONSTRAINT concept_name_unique IF NOT EXISTS FOR (c:Concept) REQUIRE c.name IS UNIQUE`,
	`CREATE CONSTRAINT skill_name_unique IF NOT EXISTS FOR (s:Skill) REQUIRE s.name IS UNIQUE`,
	`CREATE CONSTRAINT difficulty_name_unique IF NOT EXISTS FOR (d:Difficulty) REQUIRE d.name IS UNIQUE`,
	`CREATE CONSTRAINT cohort_name_unique IF NOT EXISTS FOR (c:Cohort) REQUIRE c.name IS UNIQUE`,
	`CREATE CONSTRAINT summary_student_unique IF NOT EXISTS FOR (ss:StudentSummary) REQUIRE ss.student_id IS UNIQUE`,
	`CREATE INDEX question_needs_tagging_idx IF NOT EXISTS FOR (q:Question) ON (q.needs_ai_tagging)`,
}

// InitSchema applies uniqueness constraints and indexes. Safe to call on
// every boot.
func (s *Store) InitSchema(ctx context.Context) error {
	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("graph: schema init: %w", err)
		}
		if _, err := res.Consume(ctx); err != nil {
			return fmt.Errorf("graph: schema init: %w", err)
		}
	}
	return nil
}

func (s *Store) read(ctx context.Context, work func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	session := s.client.ReadSession(ctx)
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, work)
}

func (s *Store) write(ctx context.Context, work func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)
	return session.ExecuteWrite(ctx, work)
}

func runConsume(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) error {
	res, err := tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func asInt(v any) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	default:
		return 0
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	default:
		return 0
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
