package types

import "time"

type Student struct {
	ID   int64  `json:"student_id"`
	Name string `json:"name"`
}

type Cohort struct {
	Name string `json:"name"`
}

type Exam struct {
	ID   int64  `json:"exam_id"`
	Name string `json:"name"`
	Type string `json:"exam_type"`
}

// Outcome of a single question attempt.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeSkipped   Outcome = "skipped"
)

// Attempt is a Student->Question edge. TimeSpentSeconds is nil when the
// source system did not record time (offline exams); nil must never be
// read as zero or time-based aggregates skew toward instant answers.
type Attempt struct {
	StudentID        int64   `json:"student_id"`
	QuestionID       int64   `json:"question_id"`
	Outcome          Outcome `json:"outcome"`
	TimeSpentSeconds *int    `json:"time_spent_seconds,omitempty"`
}

// RiskLevel tiers a mastery signal.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// MasteryEdge is a Student->Concept or Student->Skill current-state
// signal. Unlike tag edges it is an idempotent upsert, not an audit log.
type MasteryEdge struct {
	StudentID     int64     `json:"student_id"`
	TargetName    string    `json:"target_name"`
	MasteryScore  float64   `json:"mastery_score"`
	RiskLevel     RiskLevel `json:"risk_level"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// StudentSummary is the denormalized rollup recomputed wholesale by the
// longitudinal analyzer.
type StudentSummary struct {
	StudentID        int64     `json:"student_id"`
	AvgAccuracy      float64   `json:"avg_accuracy"`
	AccuracySlope    float64   `json:"accuracy_slope"`
	RepeatedMistakes int       `json:"repeated_mistakes"`
	AttemptDensity   float64   `json:"attempt_density"`
	LastUpdated      time.Time `json:"last_updated"`
}
