package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dakshlabs/examgraph-backend/internal/types"
)

// UpsertStudent creates or refreshes a student and, when cohort is
// non-empty, links membership.
func (s *Store) UpsertStudent(ctx context.Context, st *types.Student, cohort string) error {
	if st == nil || st.ID == 0 {
		return fmt.Errorf("graph: upsert student: missing id")
	}
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := runConsume(ctx, tx, `
MERGE (s:Student {student_id: $id})
SET s.name = $name
`, map[string]any{"id": st.ID, "name": st.Name}); err != nil {
			return nil, err
		}
		if cohort == "" {
			return nil, nil
		}
		return nil, runConsume(ctx, tx, `
MATCH (s:Student {student_id: $id})
MERGE (c:Cohort {name: $cohort})
MERGE (s)-[:BELONGS_TO]->(c)
`, map[string]any{"id": st.ID, "cohort": cohort})
	})
	if err != nil {
		return fmt.Errorf("graph: upsert student %d: %w", st.ID, err)
	}
	return nil
}

// GetStudent returns nil when the student does not exist.
func (s *Store) GetStudent(ctx context.Context, id int64) (*types.Student, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Student {student_id: $id})
RETURN s.student_id AS id, coalesce(s.name, '') AS name
`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		rec := res.Record()
		idVal, _ := rec.Get("id")
		nameVal, _ := rec.Get("name")
		return &types.Student{ID: asInt64(idVal), Name: asString(nameVal)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: get student %d: %w", id, err)
	}
	if out == nil {
		return nil, nil
	}
	return out.(*types.Student), nil
}

func (s *Store) AllStudentIDs(ctx context.Context) ([]int64, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Student)
RETURN s.student_id AS id
ORDER BY id
`, nil)
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
		return nil, fmt.Errorf("graph: all student ids: %w", err)
	}
	return out.([]int64), nil
}

func (s *Store) UpsertExam(ctx context.Context, e *types.Exam) error {
	if e == nil || e.ID == 0 {
		return fmt.Errorf("graph: upsert exam: missing id")
	}
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, runConsume(ctx, tx, `
MERGE (e:Exam {exam_id: $id})
SET e.name = $name, e.exam_type = $type
`, map[string]any{"id": e.ID, "name": e.Name, "type": e.Type})
	})
	if err != nil {
		return fmt.Errorf("graph: upsert exam %d: %w", e.ID, err)
	}
	return nil
}

func (s *Store) LinkQuestionToExam(ctx context.Context, questionID, examID int64) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, runConsume(ctx, tx, `
MATCH (q:Question {question_id: $qid})
MATCH (e:Exam {exam_id: $eid})
MERGE (q)-[:PART_OF]->(e)
`, map[string]any{"qid": questionID, "eid": examID})
	})
	if err != nil {
		return fmt.Errorf("graph: link question %d to exam %d: %w", questionID, examID, err)
	}
	return nil
}

// CreateAttempt records one attempt edge. A nil TimeSpentSeconds is
// stored as a null property, never as zero.
func (s *Store) CreateAttempt(ctx context.Context, a *types.Attempt) error {
	if a == nil {
		return fmt.Errorf("graph: create attempt: nil attempt")
	}
	var timeSpent any
	if a.TimeSpentSeconds != nil {
		timeSpent = *a.TimeSpentSeconds
	}
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, runConsume(ctx, tx, `
MATCH (s:Student {student_id: $sid})
MATCH (q:Question {question_id: $qid})
CREATE (s)-[r:ATTEMPTED]->(q)
SET r.outcome = $outcome,
    r.time_spent_seconds = $time_spent,
    r.created_at = datetime()
`, map[string]any{
			"sid":        a.StudentID,
			"qid":        a.QuestionID,
			"outcome":    string(a.Outcome),
			"time_spent": timeSpent,
		})
	})
	if err != nil {
		return fmt.Errorf("graph: create attempt %d->%d: %w", a.StudentID, a.QuestionID, err)
	}
	return nil
}

// Attempts returns every attempt a student has made, oldest first.
func (s *Store) Attempts(ctx context.Context, studentID int64) ([]types.Attempt, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Student {student_id: $sid})-[r:ATTEMPTED]->(q:Question)
RETURN q.question_id AS qid, r.outcome AS outcome, r.time_spent_seconds AS time_spent
ORDER BY r.created_at
`, map[string]any{"sid": studentID})
		if err != nil {
			return nil, err
		}
		var attempts []types.Attempt
		for res.Next(ctx) {
			rec := res.Record()
			qidVal, _ := rec.Get("qid")
			outcomeVal, _ := rec.Get("outcome")
			timeVal, _ := rec.Get("time_spent")
			a := types.Attempt{
				StudentID:  studentID,
				QuestionID: asInt64(qidVal),
				Outcome:    types.Outcome(asString(outcomeVal)),
			}
			if timeVal != nil {
				t := asInt(timeVal)
				a.TimeSpentSeconds = &t
			}
			attempts = append(attempts, a)
		}
		return attempts, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: attempts for %d: %w", studentID, err)
	}
	return out.([]types.Attempt), nil
}
