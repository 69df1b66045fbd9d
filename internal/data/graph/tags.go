package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dakshlabs/examgraph-backend/internal/types"
)

// relTypeByDimension maps a tag dimension to its relationship type.
// Cypher cannot parameterize relationship types, so each dimension gets
// its own statement built from this table.
var relTypeByDimension = map[types.Dimension]string{
	types.DimensionConcept:    "TESTS_CONCEPT",
	types.DimensionSkill:      "REQUIRES_SKILL",
	types.DimensionDifficulty: "HAS_DIFFICULTY",
}

var nodeLabelByDimension = map[types.Dimension]string{
	types.DimensionConcept:    "Concept",
	types.DimensionSkill:      "Skill",
	types.DimensionDifficulty: "Difficulty",
}

// TagEdges returns every tag edge of a question across all dimensions,
// plus whether the question node exists at all. Callers distinguishing
// "unknown question" from "question with no tags" need the second value.
func (s *Store) TagEdges(ctx context.Context, questionID int64) ([]types.TagEdge, bool, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (q:Question {question_id: $id})
RETURN q.question_id AS id
`, map[string]any{"id": questionID})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return tagEdgesResult{exists: false}, nil
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		var edges []types.TagEdge
		for _, dim := range types.Dimensions() {
			query := fmt.Sprintf(`
MATCH (q:Question {question_id: $id})-[r:%s]->(t:%s)
RETURN t.name AS name,
       coalesce(r.confidence_score, 1.0) AS confidence,
       coalesce(r.tag_source, 'client') AS source,
       coalesce(r.version, 1) AS version,
       r.model_id AS model_id,
       r.created_at AS created_at
`, relTypeByDimension[dim], nodeLabelByDimension[dim])
			res, err := tx.Run(ctx, query, map[string]any{"id": questionID})
			if err != nil {
				return nil, err
			}
			for res.Next(ctx) {
				rec := res.Record()
				nameVal, _ := rec.Get("name")
				confVal, _ := rec.Get("confidence")
				srcVal, _ := rec.Get("source")
				verVal, _ := rec.Get("version")
				modelVal, _ := rec.Get("model_id")
				createdVal, _ := rec.Get("created_at")
				edge := types.TagEdge{
					QuestionID: questionID,
					Dimension:  dim,
					Name:       asString(nameVal),
					Confidence: asFloat(confVal),
					Source:     types.TagSource(asString(srcVal)),
					Version:    asInt(verVal),
				}
				if m := asString(modelVal); m != "" {
					edge.ModelID = &m
				}
				if t, ok := createdVal.(time.Time); ok {
					edge.CreatedAt = t
				}
				edges = append(edges, edge)
			}
			if err := res.Err(); err != nil {
				return nil, err
			}
		}
		return tagEdgesResult{edges: edges, exists: true}, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("graph: tag edges for %d: %w", questionID, err)
	}
	r := out.(tagEdgesResult)
	return r.edges, r.exists, nil
}

type tagEdgesResult struct {
	edges  []types.TagEdge
	exists bool
}

// MaxLLMTagVersion returns the highest version among a question's llm
// edges on any dimension, or 0 when it has none. The next tagging run
// writes all its edges at this value plus one.
func (s *Store) MaxLLMTagVersion(ctx context.Context, questionID int64) (int, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		maxVersion := 0
		for _, dim := range types.Dimensions() {
			query := fmt.Sprintf(`
MATCH (q:Question {question_id: $id})-[r:%s {tag_source: 'llm'}]->(:%s)
RETURN coalesce(max(r.version), 0) AS max_version
`, relTypeByDimension[dim], nodeLabelByDimension[dim])
			res, err := tx.Run(ctx, query, map[string]any{"id": questionID})
			if err != nil {
				return nil, err
			}
			if res.Next(ctx) {
				v, _ := res.Record().Get("max_version")
				if n := asInt(v); n > maxVersion {
					maxVersion = n
				}
			}
			if err := res.Err(); err != nil {
				return nil, err
			}
		}
		return maxVersion, nil
	})
	if err != nil {
		return 0, fmt.Errorf("graph: max llm tag version for %d: %w", questionID, err)
	}
	return out.(int), nil
}

// AttachTags writes one tagging action atomically: the syllabus path
// (when present), one new edge per dimension, and the status flip to
// tagged with needs_ai_tagging cleared. LLM edges are CREATEd, never
// MERGEd, so prior versions survive untouched; client edges MERGE on
// (source, version) so re-ingesting the same export stays idempotent.
// Every edge is validated before any write happens.
func (s *Store) AttachTags(ctx context.Context, w types.TagWrite) error {
	if len(w.Edges) == 0 {
		return fmt.Errorf("graph: attach tags: no edges")
	}
	questionID := w.Edges[0].QuestionID
	for _, e := range w.Edges {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("graph: attach tags for %d: %w", questionID, err)
		}
		if e.QuestionID != questionID {
			return fmt.Errorf("graph: attach tags: mixed question ids %d and %d", questionID, e.QuestionID)
		}
	}

	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if w.Path != nil {
			if err := runConsume(ctx, tx, `
MERGE (d:Concept {name: $domain})
ON CREATE SET d.level = 'domain'
MERGE (p:Concept {name: $parent})
ON CREATE SET p.level = 'parent_topic'
MERGE (t:Concept {name: $specific})
ON CREATE SET t.level = 'specific_topic'
MERGE (d)-[:HAS_CHILD]->(p)
MERGE (p)-[:HAS_CHILD]->(t)
`, map[string]any{
				"domain":   w.Path.Domain,
				"parent":   w.Path.ParentTopic,
				"specific": w.Path.SpecificTopic,
			}); err != nil {
				return nil, err
			}
		}

		for _, e := range w.Edges {
			query := fmt.Sprintf(`
MATCH (q:Question {question_id: $id})
MERGE (t:%s {name: $name})
%s
%s
SET r.confidence_score = $confidence,
    r.tag_source = $source,
    r.version = $version,
    r.model_id = $model_id,
    r.created_at = datetime($created_at)
`, nodeLabelByDimension[e.Dimension],
				onCreateLevel(e.Dimension),
				edgeWriteClause(e.Source, relTypeByDimension[e.Dimension]))

			var modelID any
			if e.ModelID != nil {
				modelID = *e.ModelID
			}
			createdAt := e.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now().UTC()
			}
			if err := runConsume(ctx, tx, query, map[string]any{
				"id":         e.QuestionID,
				"name":       e.Name,
				"confidence": e.Confidence,
				"source":     string(e.Source),
				"version":    e.Version,
				"model_id":   modelID,
				"created_at": createdAt.Format(time.RFC3339Nano),
			}); err != nil {
				return nil, err
			}
		}

		return nil, runConsume(ctx, tx, `
MATCH (q:Question {question_id: $id})
SET q.tagging_status = $status,
    q.needs_ai_tagging = false
`, map[string]any{"id": questionID, "status": string(types.TaggingStatusTagged)})
	})
	if err != nil {
		return fmt.Errorf("graph: attach tags for %d: %w", questionID, err)
	}
	return nil
}

// edgeWriteClause picks how the relationship itself lands. An llm edge
// is a new history entry, so it is always CREATEd. A client edge at a
// given (source, version) is the same fact every time the exam file is
// ingested, so it MERGEs onto the existing relationship instead of
// stacking a duplicate.
func edgeWriteClause(source types.TagSource, relType string) string {
	if source == types.TagSourceClient {
		return fmt.Sprintf("MERGE (q)-[r:%s {tag_source: $source, version: $version}]->(t)", relType)
	}
	return fmt.Sprintf("CREATE (q)-[r:%s]->(t)", relType)
}

// onCreateLevel: concept nodes created through a leaf write are always
// specific topics; skills and difficulties carry no level.
func onCreateLevel(dim types.Dimension) string {
	if dim == types.DimensionConcept {
		return "ON CREATE SET t.level = 'specific_topic'"
	}
	return ""
}
