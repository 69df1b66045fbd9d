package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dakshlabs/examgraph-backend/internal/types"
)

// UpsertQuestion creates the question node on first reference. Re-sends
// from ingestion refresh the text but never regress tagging state.
func (s *Store) UpsertQuestion(ctx context.Context, q *types.Question) error {
	if q == nil || q.ID == 0 {
		return fmt.Errorf("graph: upsert question: missing id")
	}
	if q.Text == "" {
		return fmt.Errorf("graph: upsert question %d: empty text", q.ID)
	}
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, runConsume(ctx, tx, `
MERGE (q:Question {question_id: $id})
ON CREATE SET q.text = $text,
              q.tagging_status = $status,
              q.needs_ai_tagging = $needs
ON MATCH SET q.text = $text
`, map[string]any{
			"id":     q.ID,
			"text":   q.Text,
			"status": string(types.TaggingStatusUntagged),
			"needs":  q.NeedsAITag,
		})
	})
	if err != nil {
		return fmt.Errorf("graph: upsert question %d: %w", q.ID, err)
	}
	return nil
}

// GetQuestion returns nil when the question does not exist.
func (s *Store) GetQuestion(ctx context.Context, id int64) (*types.Question, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (q:Question {question_id: $id})
RETURN q.question_id AS id, q.text AS text,
       coalesce(q.tagging_status, 'untagged') AS status,
       coalesce(q.needs_ai_tagging, false) AS needs
`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		rec := res.Record()
		idVal, _ := rec.Get("id")
		textVal, _ := rec.Get("text")
		statusVal, _ := rec.Get("status")
		needsVal, _ := rec.Get("needs")
		return &types.Question{
			ID:            asInt64(idVal),
			Text:          asString(textVal),
			TaggingStatus: types.TaggingStatus(asString(statusVal)),
			NeedsAITag:    asBool(needsVal),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: get question %d: %w", id, err)
	}
	if out == nil {
		return nil, nil
	}
	return out.(*types.Question), nil
}

func (s *Store) SetTaggingStatus(ctx context.Context, id int64, status types.TaggingStatus) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, runConsume(ctx, tx, `
MATCH (q:Question {question_id: $id})
SET q.tagging_status = $status
`, map[string]any{"id": id, "status": string(status)})
	})
	if err != nil {
		return fmt.Errorf("graph: set tagging status for %d: %w", id, err)
	}
	return nil
}

// FlagForTagging queues a question for the AI tagging workflow.
func (s *Store) FlagForTagging(ctx context.Context, id int64) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, runConsume(ctx, tx, `
MATCH (q:Question {question_id: $id})
SET q.needs_ai_tagging = true,
    q.tagging_status = $status
`, map[string]any{"id": id, "status": string(types.TaggingStatusUntagged)})
	})
	if err != nil {
		return fmt.Errorf("graph: flag question %d: %w", id, err)
	}
	return nil
}

func (s *Store) QuestionsNeedingTagging(ctx context.Context, limit int) ([]*types.Question, error) {
	if limit <= 0 {
		return nil, nil
	}
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (q:Question {needs_ai_tagging: true})
RETURN q.question_id AS id, q.text AS text,
       coalesce(q.tagging_status, 'untagged') AS status
ORDER BY id
LIMIT $limit
`, map[string]any{"limit": limit})
		if err != nil {
			return nil, err
		}
		var questions []*types.Question
		for res.Next(ctx) {
			rec := res.Record()
			idVal, _ := rec.Get("id")
			textVal, _ := rec.Get("text")
			statusVal, _ := rec.Get("status")
			questions = append(questions, &types.Question{
				ID:            asInt64(idVal),
				Text:          asString(textVal),
				TaggingStatus: types.TaggingStatus(asString(statusVal)),
				NeedsAITag:    true,
			})
		}
		return questions, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: questions needing tagging: %w", err)
	}
	return out.([]*types.Question), nil
}

// QuestionTagGap describes what a question is missing, for the repair
// scan. MissingText is critical and never auto-repaired.
type QuestionTagGap struct {
	QuestionID     int64 `json:"question_id"`
	MissingText    bool  `json:"missing_text"`
	HasConcept     bool  `json:"has_concept"`
	HasSkill       bool  `json:"has_skill"`
	HasDifficulty  bool  `json:"has_difficulty"`
	AlreadyFlagged bool  `json:"already_flagged"`
}

func (g QuestionTagGap) Complete() bool {
	return g.HasConcept && g.HasSkill && g.HasDifficulty
}

func (s *Store) ScanQuestionTagGaps(ctx context.Context) ([]QuestionTagGap, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (q:Question)
RETURN q.question_id AS id,
       coalesce(q.text, '') = '' AS missing_text,
       EXISTS { (q)-[:TESTS_CONCEPT]->(:Concept) } AS has_concept,
       EXISTS { (q)-[:REQUIRES_SKILL]->(:Skill) } AS has_skill,
       EXISTS { (q)-[:HAS_DIFFICULTY]->(:Difficulty) } AS has_difficulty,
       coalesce(q.needs_ai_tagging, false) AS flagged
ORDER BY id
`, nil)
		if err != nil {
			return nil, err
		}
		var gaps []QuestionTagGap
		for res.Next(ctx) {
			rec := res.Record()
			idVal, _ := rec.Get("id")
			missingVal, _ := rec.Get("missing_text")
			conceptVal, _ := rec.Get("has_concept")
			skillVal, _ := rec.Get("has_skill")
			diffVal, _ := rec.Get("has_difficulty")
			flaggedVal, _ := rec.Get("flagged")
			gaps = append(gaps, QuestionTagGap{
				QuestionID:     asInt64(idVal),
				MissingText:    asBool(missingVal),
				HasConcept:     asBool(conceptVal),
				HasSkill:       asBool(skillVal),
				HasDifficulty:  asBool(diffVal),
				AlreadyFlagged: asBool(flaggedVal),
			})
		}
		return gaps, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: scan tag gaps: %w", err)
	}
	return out.([]QuestionTagGap), nil
}
