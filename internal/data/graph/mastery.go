package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dakshlabs/examgraph-backend/internal/types"
)

// Mastery edges are current-state signals, so unlike tag edges they are
// idempotent MERGE upserts keyed on the (student, target) pair.

func (s *Store) UpsertConceptMastery(ctx context.Context, m *types.MasteryEdge) error {
	return s.upsertMastery(ctx, m, "Concept", "HAS_WEAKNESS_IN")
}

func (s *Store) UpsertSkillMastery(ctx context.Context, m *types.MasteryEdge) error {
	return s.upsertMastery(ctx, m, "Skill", "NEEDS_IMPROVEMENT_IN")
}

func (s *Store) upsertMastery(ctx context.Context, m *types.MasteryEdge, label, relType string) error {
	if m == nil || m.TargetName == "" {
		return fmt.Errorf("graph: upsert mastery: missing target")
	}
	query := fmt.Sprintf(`
MATCH (s:Student {student_id: $sid})
MATCH (t:%s {name: $name})
MERGE (s)-[r:%s]->(t)
SET r.mastery_score = $score,
    r.risk_level = $risk,
    r.last_updated_at = datetime()
`, label, relType)
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, runConsume(ctx, tx, query, map[string]any{
			"sid":   m.StudentID,
			"name":  m.TargetName,
			"score": m.MasteryScore,
			"risk":  string(m.RiskLevel),
		})
	})
	if err != nil {
		return fmt.Errorf("graph: upsert %s mastery %d->%q: %w", label, m.StudentID, m.TargetName, err)
	}
	return nil
}
