package tagging

// Status is the verdict of one tagging request.
type Status string

const (
	StatusTagged        Status = "tagged"
	StatusAlreadyTagged Status = "already_tagged"
	StatusFailed        Status = "failed"
	StatusNotFound      Status = "not_found"
)

// TagOutcome reports one question's pass through the tagging engine.
type TagOutcome struct {
	QuestionID int64  `json:"question_id"`
	Status     Status `json:"status"`
	Version    int    `json:"version,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchResult aggregates one batch run. Failures are isolated per
// question; the run id ties the log lines of one batch together.
type BatchResult struct {
	RunID    string       `json:"run_id"`
	Total    int          `json:"total"`
	Tagged   int          `json:"tagged"`
	Skipped  int          `json:"skipped"`
	Failed   int          `json:"failed"`
	Outcomes []TagOutcome `json:"outcomes"`
}
