package tagging

import (
	"context"
	"errors"
	"fmt"

	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/types"
)

// ErrClassification marks a classifier verdict the system refuses to
// persist. Callers move the question to failed rather than writing
// fabricated tags.
var ErrClassification = errors.New("classification rejected")

// Classifier is the external model behind the gateway.
type Classifier interface {
	Classify(ctx context.Context, questionText string) (*types.ClassificationResult, error)
	ModelID() string
}

// minTopicConfidence is the floor below which a verdict is treated as a
// guess.
const minTopicConfidence = 0.1

// Gateway fronts the classifier with rate limiting and acceptance
// rules. Nothing downstream talks to the model directly.
type Gateway struct {
	classifier Classifier
	limiter    *RateLimiter
	log        *logger.Logger
}

func NewGateway(classifier Classifier, limiter *RateLimiter, log *logger.Logger) *Gateway {
	return &Gateway{
		classifier: classifier,
		limiter:    limiter,
		log:        log.With("service", "TagGateway"),
	}
}

func (g *Gateway) ModelID() string {
	return g.classifier.ModelID()
}

// Classify acquires a rate-limit slot, calls the model, and applies the
// acceptance rules: a degenerate placement (domain "General" under
// parent "Uncategorized") or topic confidence under the floor is an
// ErrClassification, never a stored tag.
func (g *Gateway) Classify(ctx context.Context, questionText string) (*types.ClassificationResult, error) {
	if questionText == "" {
		return nil, fmt.Errorf("%w: empty question text", ErrClassification)
	}
	if err := g.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	result, err := g.classifier.Classify(ctx, questionText)
	if err != nil {
		return nil, fmt.Errorf("classifier call: %w", err)
	}

	if result.Domain == "General" && result.ParentTopic == "Uncategorized" {
		return nil, fmt.Errorf("%w: degenerate placement %q/%q", ErrClassification, result.Domain, result.ParentTopic)
	}
	if result.TopicConfidence < minTopicConfidence {
		return nil, fmt.Errorf("%w: topic confidence %.3f below %.2f", ErrClassification, result.TopicConfidence, minTopicConfidence)
	}
	if result.SpecificTopic == "" || result.Skill == "" || result.Difficulty == "" {
		return nil, fmt.Errorf("%w: incomplete verdict", ErrClassification)
	}

	g.log.Debug("classification accepted",
		"specific_topic", result.SpecificTopic,
		"topic_confidence", result.TopicConfidence)
	return result, nil
}
