package types

import (
	"errors"
	"fmt"
	"time"
)

// Dimension is one of the three classification axes of a question.
type Dimension string

const (
	DimensionConcept    Dimension = "concept"
	DimensionSkill      Dimension = "skill"
	DimensionDifficulty Dimension = "difficulty"
)

func Dimensions() []Dimension {
	return []Dimension{DimensionConcept, DimensionSkill, DimensionDifficulty}
}

// TagSource records the provenance of a tag edge.
type TagSource string

const (
	TagSourceClient TagSource = "client"
	TagSourceLLM    TagSource = "llm"
	TagSourceRule   TagSource = "rule"
	TagSourceHybrid TagSource = "hybrid"
)

func (s TagSource) Valid() bool {
	switch s {
	case TagSourceClient, TagSourceLLM, TagSourceRule, TagSourceHybrid:
		return true
	default:
		return false
	}
}

// TaggingStatus is the per-question tagging state machine:
// untagged -> pending -> tagged | failed, with force-retag looping
// tagged back through pending.
type TaggingStatus string

const (
	TaggingStatusUntagged TaggingStatus = "untagged"
	TaggingStatusPending  TaggingStatus = "pending"
	TaggingStatusTagged   TaggingStatus = "tagged"
	TaggingStatusFailed   TaggingStatus = "failed"
)

var ErrInvalidTagEdge = errors.New("invalid tag edge")

// TagEdge is the audit-bearing relationship between a question and a
// vocabulary node (concept, skill or difficulty). LLM edges for one
// question and dimension form a dense version sequence starting at 1;
// no version is ever rewritten. Every writer goes through Validate.
type TagEdge struct {
	QuestionID int64     `json:"question_id"`
	Dimension  Dimension `json:"dimension"`
	Name       string    `json:"name"`
	Confidence float64   `json:"confidence_score"`
	Source     TagSource `json:"tag_source"`
	Version    int       `json:"version"`
	ModelID    *string   `json:"model_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (e TagEdge) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: empty target name", ErrInvalidTagEdge)
	}
	switch e.Dimension {
	case DimensionConcept, DimensionSkill, DimensionDifficulty:
	default:
		return fmt.Errorf("%w: unknown dimension %q", ErrInvalidTagEdge, e.Dimension)
	}
	if !e.Source.Valid() {
		return fmt.Errorf("%w: unknown tag_source %q", ErrInvalidTagEdge, e.Source)
	}
	if e.Confidence < 0.0 || e.Confidence > 1.0 {
		return fmt.Errorf("%w: confidence_score %.3f outside [0,1]", ErrInvalidTagEdge, e.Confidence)
	}
	if e.Version < 1 {
		return fmt.Errorf("%w: version %d < 1", ErrInvalidTagEdge, e.Version)
	}
	if e.Source == TagSourceClient && e.Confidence != 1.0 {
		return fmt.Errorf("%w: client tags carry confidence_score 1.0, got %.3f", ErrInvalidTagEdge, e.Confidence)
	}
	if e.Source == TagSourceLLM {
		if e.ModelID == nil || *e.ModelID == "" {
			return fmt.Errorf("%w: llm tags require model_id", ErrInvalidTagEdge)
		}
	} else if e.ModelID != nil {
		return fmt.Errorf("%w: model_id only valid for llm tags", ErrInvalidTagEdge)
	}
	return nil
}
