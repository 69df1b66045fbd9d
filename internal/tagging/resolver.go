package tagging

import (
	"context"
	"errors"
	"fmt"

	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/types"
)

var ErrQuestionNotFound = errors.New("question not found")

// TagReader is the slice of the graph layer the resolver needs.
type TagReader interface {
	TagEdges(ctx context.Context, questionID int64) ([]types.TagEdge, bool, error)
}

// EffectiveTag is the resolved current tag on one dimension, or unset.
type EffectiveTag struct {
	Name       string          `json:"name,omitempty"`
	Source     types.TagSource `json:"tag_source,omitempty"`
	Confidence float64         `json:"confidence_score,omitempty"`
	Version    int             `json:"version,omitempty"`
	Set        bool            `json:"set"`
}

// EffectiveTags is a question's resolved view across all dimensions,
// plus its full edge history for audit readers.
type EffectiveTags struct {
	QuestionID int64                            `json:"question_id"`
	Tags       map[types.Dimension]EffectiveTag `json:"tags"`
	History    []types.TagEdge                  `json:"history"`
}

// Resolver collapses a question's edge history into its effective tags.
type Resolver struct {
	store TagReader
	log   *logger.Logger
}

func NewResolver(store TagReader, log *logger.Logger) *Resolver {
	return &Resolver{
		store: store,
		log:   log.With("service", "TagResolver"),
	}
}

// Resolve applies the precedence rule per dimension: a client edge wins
// unconditionally, otherwise the llm edge with the highest version,
// otherwise the dimension stays unset.
func (r *Resolver) Resolve(ctx context.Context, questionID int64) (*EffectiveTags, error) {
	edges, exists, err := r.store.TagEdges(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("resolve tags for %d: %w", questionID, err)
	}
	if !exists {
		return nil, fmt.Errorf("resolve tags for %d: %w", questionID, ErrQuestionNotFound)
	}

	out := &EffectiveTags{
		QuestionID: questionID,
		Tags:       make(map[types.Dimension]EffectiveTag, 3),
		History:    edges,
	}
	for _, dim := range types.Dimensions() {
		out.Tags[dim] = effectiveForDimension(edges, dim)
	}
	return out, nil
}

func effectiveForDimension(edges []types.TagEdge, dim types.Dimension) EffectiveTag {
	var bestLLM *types.TagEdge
	for i := range edges {
		e := &edges[i]
		if e.Dimension != dim {
			continue
		}
		if e.Source == types.TagSourceClient {
			return EffectiveTag{
				Name:       e.Name,
				Source:     e.Source,
				Confidence: e.Confidence,
				Version:    e.Version,
				Set:        true,
			}
		}
		if e.Source == types.TagSourceLLM && (bestLLM == nil || e.Version > bestLLM.Version) {
			bestLLM = e
		}
	}
	if bestLLM != nil {
		return EffectiveTag{
			Name:       bestLLM.Name,
			Source:     bestLLM.Source,
			Confidence: bestLLM.Confidence,
			Version:    bestLLM.Version,
			Set:        true,
		}
	}
	return EffectiveTag{}
}
