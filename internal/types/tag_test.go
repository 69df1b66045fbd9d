package types

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func validLLMEdge() TagEdge {
	return TagEdge{
		QuestionID: 1,
		Dimension:  DimensionConcept,
		Name:       "Thermodynamics",
		Confidence: 0.92,
		Source:     TagSourceLLM,
		Version:    1,
		ModelID:    strPtr("gemini-2.0-flash"),
	}
}

func TestTagEdge_Validate(t *testing.T) {
	if err := validLLMEdge().Validate(); err != nil {
		t.Fatalf("valid llm edge rejected: %v", err)
	}

	client := TagEdge{
		QuestionID: 1,
		Dimension:  DimensionSkill,
		Name:       "Recall",
		Confidence: 1.0,
		Source:     TagSourceClient,
		Version:    1,
	}
	if err := client.Validate(); err != nil {
		t.Fatalf("valid client edge rejected: %v", err)
	}
}

func TestTagEdge_ValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*TagEdge)
	}{
		{"empty name", func(e *TagEdge) { e.Name = "" }},
		{"unknown dimension", func(e *TagEdge) { e.Dimension = "topic" }},
		{"unknown source", func(e *TagEdge) { e.Source = "oracle" }},
		{"confidence above one", func(e *TagEdge) { e.Confidence = 1.2 }},
		{"negative confidence", func(e *TagEdge) { e.Confidence = -0.1 }},
		{"zero version", func(e *TagEdge) { e.Version = 0 }},
		{"llm missing model id", func(e *TagEdge) { e.ModelID = nil }},
		{"client with partial confidence", func(e *TagEdge) {
			e.Source = TagSourceClient
			e.ModelID = nil
			e.Confidence = 0.7
		}},
		{"rule with model id", func(e *TagEdge) {
			e.Source = TagSourceRule
		}},
	}
	for _, tc := range cases {
		edge := validLLMEdge()
		tc.mutate(&edge)
		err := edge.Validate()
		if err == nil {
			t.Fatalf("%s: expected rejection", tc.name)
		}
		if !errors.Is(err, ErrInvalidTagEdge) {
			t.Fatalf("%s: error %v not wrapping ErrInvalidTagEdge", tc.name, err)
		}
	}
}
