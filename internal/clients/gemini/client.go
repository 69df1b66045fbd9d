// Package gemini wraps the Google Gemini SDK as a question classifier
// with structured JSON output.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/dakshlabs/examgraph-backend/internal/platform/envutil"
	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/types"
)

const systemInstruction = `You are an exam-question classifier for a medical entrance syllabus.
Given the text of one question, classify it along three axes:
1. concept: the syllabus path domain > parent_topic > specific_topic.
2. skill: the single cognitive skill the question exercises (e.g. Recall, Application, Analysis).
3. difficulty: one of Easy, Medium, Hard.
Report a confidence in [0,1] for each axis. If you cannot place the
question in the syllabus, say so through low confidence and the
placeholders "General" and "Uncategorized" rather than inventing a topic.`

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"specific_topic":        {Type: genai.TypeString},
		"parent_topic":          {Type: genai.TypeString},
		"domain":                {Type: genai.TypeString},
		"skill":                 {Type: genai.TypeString},
		"difficulty":            {Type: genai.TypeString, Enum: []string{"Easy", "Medium", "Hard"}},
		"topic_confidence":      {Type: genai.TypeNumber},
		"skill_confidence":      {Type: genai.TypeNumber},
		"difficulty_confidence": {Type: genai.TypeNumber},
	},
	Required: []string{
		"specific_topic", "parent_topic", "domain", "skill", "difficulty",
		"topic_confidence", "skill_confidence", "difficulty_confidence",
	},
}

type Config struct {
	APIKey      string
	Model       string
	Temperature float64
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		Model:       envutil.Str("GEMINI_MODEL", "gemini-2.0-flash"),
		Temperature: envutil.Float("GEMINI_TEMPERATURE", 0.1),
	}
}

type Client struct {
	client *genai.Client
	model  string
	temp   float64
	log    *logger.Logger
}

func New(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{
		client: client,
		model:  cfg.Model,
		temp:   cfg.Temperature,
		log:    log.With("client", "Gemini"),
	}, nil
}

// ModelID reports the model identifier recorded on llm tag edges.
func (c *Client) ModelID() string {
	return c.model
}

// Classify sends one question text and decodes the structured verdict.
// It does not judge whether the verdict is usable; the tagging gateway
// applies the acceptance rules.
func (c *Client) Classify(ctx context.Context, questionText string) (*types.ClassificationResult, error) {
	temp := float32(c.temp)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: questionText}},
	}}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	var out types.ClassificationResult
	if err := json.Unmarshal([]byte(result.Text()), &out); err != nil {
		return nil, fmt.Errorf("gemini: decode classification: %w", err)
	}
	out.ModelID = c.model
	return &out, nil
}
