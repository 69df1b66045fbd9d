package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dakshlabs/examgraph-backend/internal/types"
)

// Aggregate reads feeding the analytics services. All of them return
// raw counts; accuracy math lives above this layer.

// AttemptCounts returns total attempts, correct count, and the number
// of distinct exams the student's attempted questions belong to.
func (s *Store) AttemptCounts(ctx context.Context, studentID int64) (total, correct, distinctExams int, err error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Student {student_id: $sid})-[r:ATTEMPTED]->(q:Question)
OPTIONAL MATCH (q)-[:PART_OF]->(e:Exam)
RETURN count(r) AS total,
       count(CASE WHEN r.outcome = 'correct' THEN 1 END) AS correct,
       count(DISTINCT e.exam_id) AS exams
`, map[string]any{"sid": studentID})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return [3]int{}, nil
		}
		rec := res.Record()
		totalVal, _ := rec.Get("total")
		correctVal, _ := rec.Get("correct")
		examsVal, _ := rec.Get("exams")
		return [3]int{asInt(totalVal), asInt(correctVal), asInt(examsVal)}, nil
	})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("graph: attempt counts for %d: %w", studentID, err)
	}
	c := out.([3]int)
	return c[0], c[1], c[2], nil
}

// PerExamAccuracy returns one row per exam the student attempted,
// ordered by exam id as the longitudinal axis.
func (s *Store) PerExamAccuracy(ctx context.Context, studentID int64) ([]types.ExamAccuracy, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Student {student_id: $sid})-[r:ATTEMPTED]->(q:Question)-[:PART_OF]->(e:Exam)
WITH e, count(r) AS total,
     count(CASE WHEN r.outcome = 'correct' THEN 1 END) AS correct
RETURN e.exam_id AS exam_id, coalesce(e.name, '') AS exam_name, correct, total
ORDER BY exam_id
`, map[string]any{"sid": studentID})
		if err != nil {
			return nil, err
		}
		var rows []types.ExamAccuracy
		for res.Next(ctx) {
			rec := res.Record()
			idVal, _ := rec.Get("exam_id")
			nameVal, _ := rec.Get("exam_name")
			correctVal, _ := rec.Get("correct")
			totalVal, _ := rec.Get("total")
			row := types.ExamAccuracy{
				ExamID:   asInt64(idVal),
				ExamName: asString(nameVal),
				Correct:  asInt(correctVal),
				Total:    asInt(totalVal),
			}
			if row.Total > 0 {
				row.Accuracy = float64(row.Correct) / float64(row.Total)
			}
			rows = append(rows, row)
		}
		return rows, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: per-exam accuracy for %d: %w", studentID, err)
	}
	return out.([]types.ExamAccuracy), nil
}

// IncorrectByConcept returns, per concept, how many of the student's
// attempts on questions testing it were incorrect. Skipped attempts do
// not count as mistakes.
func (s *Store) IncorrectByConcept(ctx context.Context, studentID int64) (map[string]int, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Student {student_id: $sid})-[r:ATTEMPTED {outcome: 'incorrect'}]->(q:Question)-[:TESTS_CONCEPT]->(c:Concept)
RETURN c.name AS concept, count(r) AS incorrect
`, map[string]any{"sid": studentID})
		if err != nil {
			return nil, err
		}
		counts := make(map[string]int)
		for res.Next(ctx) {
			rec := res.Record()
			nameVal, _ := rec.Get("concept")
			nVal, _ := rec.Get("incorrect")
			counts[asString(nameVal)] = asInt(nVal)
		}
		return counts, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: incorrect by concept for %d: %w", studentID, err)
	}
	return out.(map[string]int), nil
}

// ConceptBreakdown aggregates a student's attempts per tested concept.
func (s *Store) ConceptBreakdown(ctx context.Context, studentID int64) ([]types.ConceptAgg, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Student {student_id: $sid})-[r:ATTEMPTED]->(q:Question)-[:TESTS_CONCEPT]->(c:Concept)
RETURN c.name AS concept,
       count(CASE WHEN r.outcome = 'correct' THEN 1 END) AS correct,
       count(CASE WHEN r.outcome = 'incorrect' THEN 1 END) AS incorrect,
       count(r) AS total
ORDER BY concept
`, map[string]any{"sid": studentID})
		if err != nil {
			return nil, err
		}
		var rows []types.ConceptAgg
		for res.Next(ctx) {
			rec := res.Record()
			nameVal, _ := rec.Get("concept")
			correctVal, _ := rec.Get("correct")
			incorrectVal, _ := rec.Get("incorrect")
			totalVal, _ := rec.Get("total")
			rows = append(rows, types.ConceptAgg{
				Name:      asString(nameVal),
				Correct:   asInt(correctVal),
				Incorrect: asInt(incorrectVal),
				Total:     asInt(totalVal),
			})
		}
		return rows, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: concept breakdown for %d: %w", studentID, err)
	}
	return out.([]types.ConceptAgg), nil
}

func (s *Store) SkillBreakdown(ctx context.Context, studentID int64) ([]types.SkillAgg, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Student {student_id: $sid})-[r:ATTEMPTED]->(q:Question)-[:REQUIRES_SKILL]->(sk:Skill)
RETURN sk.name AS skill,
       count(CASE WHEN r.outcome = 'correct' THEN 1 END) AS correct,
       count(r) AS total
ORDER BY skill
`, map[string]any{"sid": studentID})
		if err != nil {
			return nil, err
		}
		var rows []types.SkillAgg
		for res.Next(ctx) {
			rec := res.Record()
			nameVal, _ := rec.Get("skill")
			correctVal, _ := rec.Get("correct")
			totalVal, _ := rec.Get("total")
			rows = append(rows, types.SkillAgg{
				Name:    asString(nameVal),
				Correct: asInt(correctVal),
				Total:   asInt(totalVal),
			})
		}
		return rows, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: skill breakdown for %d: %w", studentID, err)
	}
	return out.([]types.SkillAgg), nil
}

// CohortMembers returns the ids of every student belonging to a cohort.
func (s *Store) CohortMembers(ctx context.Context, cohort string) ([]int64, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Student)-[:BELONGS_TO]->(c:Cohort {name: $cohort})
RETURN s.student_id AS id
ORDER BY id
`, map[string]any{"cohort": cohort})
		if err != nil {
			return nil, err
		}
		var ids []int64
		for res.Next(ctx) {
			v, _ := res.Record().Get("id")
			ids = append(ids, asInt64(v))
		}
		return ids, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: cohort members of %q: %w", cohort, err)
	}
	return out.([]int64), nil
}

// CohortConceptAccuracy returns one row per (member, concept) pair.
func (s *Store) CohortConceptAccuracy(ctx context.Context, cohort string) ([]types.MemberConceptAgg, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Student)-[:BELONGS_TO]->(:Cohort {name: $cohort})
MATCH (s)-[r:ATTEMPTED]->(q:Question)-[:TESTS_CONCEPT]->(c:Concept)
RETURN s.student_id AS student_id, c.name AS concept,
       count(CASE WHEN r.outcome = 'correct' THEN 1 END) AS correct,
       count(r) AS total
`, map[string]any{"cohort": cohort})
		if err != nil {
			return nil, err
		}
		var rows []types.MemberConceptAgg
		for res.Next(ctx) {
			rec := res.Record()
			sidVal, _ := rec.Get("student_id")
			nameVal, _ := rec.Get("concept")
			correctVal, _ := rec.Get("correct")
			totalVal, _ := rec.Get("total")
			rows = append(rows, types.MemberConceptAgg{
				StudentID: asInt64(sidVal),
				Concept:   asString(nameVal),
				Correct:   asInt(correctVal),
				Total:     asInt(totalVal),
			})
		}
		return rows, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: cohort concept accuracy for %q: %w", cohort, err)
	}
	return out.([]types.MemberConceptAgg), nil
}

// CohortStudentAccuracy returns overall attempt counts per member, for
// the leaderboard.
func (s *Store) CohortStudentAccuracy(ctx context.Context, cohort string) ([]types.StudentAgg, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Student)-[:BELONGS_TO]->(:Cohort {name: $cohort})
OPTIONAL MATCH (s)-[r:ATTEMPTED]->(:Question)
RETURN s.student_id AS student_id,
       count(CASE WHEN r.outcome = 'correct' THEN 1 END) AS correct,
       count(r) AS total
ORDER BY student_id
`, map[string]any{"cohort": cohort})
		if err != nil {
			return nil, err
		}
		var rows []types.StudentAgg
		for res.Next(ctx) {
			rec := res.Record()
			sidVal, _ := rec.Get("student_id")
			correctVal, _ := rec.Get("correct")
			totalVal, _ := rec.Get("total")
			rows = append(rows, types.StudentAgg{
				StudentID: asInt64(sidVal),
				Correct:   asInt(correctVal),
				Total:     asInt(totalVal),
			})
		}
		return rows, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: cohort student accuracy for %q: %w", cohort, err)
	}
	return out.([]types.StudentAgg), nil
}
