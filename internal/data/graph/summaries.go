package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dakshlabs/examgraph-backend/internal/types"
)

// UpsertStudentSummary replaces a student's denormalized rollup node
// wholesale; each recompute overwrites every field.
func (s *Store) UpsertStudentSummary(ctx context.Context, sum *types.StudentSummary) error {
	if sum == nil || sum.StudentID == 0 {
		return fmt.Errorf("graph: upsert summary: missing student id")
	}
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, runConsume(ctx, tx, `
MATCH (s:Student {student_id: $sid})
MERGE (ss:StudentSummary {student_id: $sid})
MERGE (s)-[:HAS_SUMMARY]->(ss)
SET ss.avg_accuracy = $avg,
    ss.accuracy_slope = $slope,
    ss.repeated_mistakes = $mistakes,
    ss.attempt_density = $density,
    ss.last_updated = datetime($updated)
`, map[string]any{
			"sid":      sum.StudentID,
			"avg":      sum.AvgAccuracy,
			"slope":    sum.AccuracySlope,
			"mistakes": sum.RepeatedMistakes,
			"density":  sum.AttemptDensity,
			"updated":  sum.LastUpdated.UTC().Format(time.RFC3339Nano),
		})
	})
	if err != nil {
		return fmt.Errorf("graph: upsert summary for %d: %w", sum.StudentID, err)
	}
	return nil
}

// GetStudentSummary returns nil when no summary has been computed yet.
func (s *Store) GetStudentSummary(ctx context.Context, studentID int64) (*types.StudentSummary, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (ss:StudentSummary {student_id: $sid})
RETURN ss.avg_accuracy AS avg, ss.accuracy_slope AS slope,
       ss.repeated_mistakes AS mistakes, ss.attempt_density AS density,
       ss.last_updated AS updated
`, map[string]any{"sid": studentID})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		rec := res.Record()
		avgVal, _ := rec.Get("avg")
		slopeVal, _ := rec.Get("slope")
		mistakesVal, _ := rec.Get("mistakes")
		densityVal, _ := rec.Get("density")
		updatedVal, _ := rec.Get("updated")
		sum := &types.StudentSummary{
			StudentID:        studentID,
			AvgAccuracy:      asFloat(avgVal),
			AccuracySlope:    asFloat(slopeVal),
			RepeatedMistakes: asInt(mistakesVal),
			AttemptDensity:   asFloat(densityVal),
		}
		if t, ok := updatedVal.(time.Time); ok {
			sum.LastUpdated = t
		}
		return sum, nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: get summary for %d: %w", studentID, err)
	}
	if out == nil {
		return nil, nil
	}
	return out.(*types.StudentSummary), nil
}
