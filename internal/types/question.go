package types

// Question is an exam question node. Questions are created on ingestion
// and never deleted; only the tagging workflow mutates them.
type Question struct {
	ID            int64         `json:"question_id"`
	Text          string        `json:"text"`
	TaggingStatus TaggingStatus `json:"tagging_status"`
	NeedsAITag    bool          `json:"needs_ai_tagging"`
}
