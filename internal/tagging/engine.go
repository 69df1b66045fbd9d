// Package tagging runs the AI tagging workflow: classification through
// the rate-limited gateway, append-only versioned tag writes, and the
// per-question status machine.
package tagging

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/types"
)

// GraphStore is the slice of the graph layer the engine needs.
type GraphStore interface {
	GetQuestion(ctx context.Context, id int64) (*types.Question, error)
	QuestionsNeedingTagging(ctx context.Context, limit int) ([]*types.Question, error)
	SetTaggingStatus(ctx context.Context, id int64, status types.TaggingStatus) error
	MaxLLMTagVersion(ctx context.Context, questionID int64) (int, error)
	AttachTags(ctx context.Context, w types.TagWrite) error
}

type Engine struct {
	store   GraphStore
	gateway *Gateway
	log     *logger.Logger
	now     func() time.Time
}

func NewEngine(store GraphStore, gateway *Gateway, log *logger.Logger) *Engine {
	return &Engine{
		store:   store,
		gateway: gateway,
		log:     log.With("service", "TagEngine"),
		now:     time.Now,
	}
}

// TagQuestion runs one question through classification and tag
// persistence. Without force it short-circuits on questions already
// tagged and not flagged for retagging. A rejected or failed
// classification leaves the question in failed with no tags written;
// existing versions are never touched either way.
func (e *Engine) TagQuestion(ctx context.Context, questionID int64, force bool) TagOutcome {
	q, err := e.store.GetQuestion(ctx, questionID)
	if err != nil {
		return TagOutcome{QuestionID: questionID, Status: StatusFailed, Error: err.Error()}
	}
	if q == nil {
		return TagOutcome{QuestionID: questionID, Status: StatusNotFound, Error: "question not found"}
	}
	if q.TaggingStatus == types.TaggingStatusTagged && !q.NeedsAITag && !force {
		return TagOutcome{QuestionID: questionID, Status: StatusAlreadyTagged}
	}

	if err := e.store.SetTaggingStatus(ctx, questionID, types.TaggingStatusPending); err != nil {
		return TagOutcome{QuestionID: questionID, Status: StatusFailed, Error: err.Error()}
	}

	result, err := e.gateway.Classify(ctx, q.Text)
	if err != nil {
		e.markFailed(ctx, questionID, err)
		return TagOutcome{QuestionID: questionID, Status: StatusFailed, Error: err.Error()}
	}

	maxVersion, err := e.store.MaxLLMTagVersion(ctx, questionID)
	if err != nil {
		e.markFailed(ctx, questionID, err)
		return TagOutcome{QuestionID: questionID, Status: StatusFailed, Error: err.Error()}
	}
	version := maxVersion + 1

	write := e.buildWrite(questionID, result, version)
	if err := e.store.AttachTags(ctx, write); err != nil {
		e.markFailed(ctx, questionID, err)
		return TagOutcome{QuestionID: questionID, Status: StatusFailed, Error: err.Error()}
	}

	e.log.Info("question tagged",
		"question_id", questionID,
		"version", version,
		"specific_topic", result.SpecificTopic)
	return TagOutcome{QuestionID: questionID, Status: StatusTagged, Version: version}
}

// buildWrite produces one edge per dimension, all at the same version.
func (e *Engine) buildWrite(questionID int64, r *types.ClassificationResult, version int) types.TagWrite {
	modelID := r.ModelID
	createdAt := e.now().UTC()
	path := r.ConceptPath()
	edge := func(dim types.Dimension, name string, confidence float64) types.TagEdge {
		return types.TagEdge{
			QuestionID: questionID,
			Dimension:  dim,
			Name:       name,
			Confidence: confidence,
			Source:     types.TagSourceLLM,
			Version:    version,
			ModelID:    &modelID,
			CreatedAt:  createdAt,
		}
	}
	return types.TagWrite{
		Path: &path,
		Edges: []types.TagEdge{
			edge(types.DimensionConcept, r.SpecificTopic, r.TopicConfidence),
			edge(types.DimensionSkill, r.Skill, r.SkillConfidence),
			edge(types.DimensionDifficulty, r.Difficulty, r.DifficultyConfidence),
		},
	}
}

func (e *Engine) markFailed(ctx context.Context, questionID int64, cause error) {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return
	}
	if err := e.store.SetTaggingStatus(ctx, questionID, types.TaggingStatusFailed); err != nil {
		e.log.Error("failed to mark question failed",
			"question_id", questionID,
			"cause", cause.Error(),
			"error", err.Error())
	}
}

// BatchTagQuestions tags a list of questions sequentially under one run
// id. A failure on one question never stops the rest; only context
// cancellation ends the run early, reporting the questions processed so
// far.
func (e *Engine) BatchTagQuestions(ctx context.Context, questionIDs []int64, force bool) (*BatchResult, error) {
	runID := uuid.NewString()
	res := &BatchResult{RunID: runID, Total: len(questionIDs)}
	log := e.log.With("run_id", runID)
	log.Info("batch tagging started", "count", len(questionIDs), "force", force)

	for _, id := range questionIDs {
		if err := ctx.Err(); err != nil {
			log.Warn("batch tagging interrupted",
				"processed", len(res.Outcomes),
				"error", err.Error())
			return res, err
		}
		outcome := e.TagQuestion(ctx, id, force)
		res.Outcomes = append(res.Outcomes, outcome)
		switch outcome.Status {
		case StatusTagged:
			res.Tagged++
		case StatusAlreadyTagged:
			res.Skipped++
		default:
			res.Failed++
		}
	}

	log.Info("batch tagging finished",
		"tagged", res.Tagged,
		"skipped", res.Skipped,
		"failed", res.Failed)
	return res, nil
}

// BatchTagFlagged selects up to limit questions flagged
// needs_ai_tagging and runs them through the batch. The flag already
// exempts them from the already-tagged short-circuit, so no force is
// needed.
func (e *Engine) BatchTagFlagged(ctx context.Context, limit int) (*BatchResult, error) {
	questions, err := e.store.QuestionsNeedingTagging(ctx, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return e.BatchTagQuestions(ctx, ids, false)
}
