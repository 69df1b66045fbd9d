// Package ingestion turns client exam reports into graph writes:
// students, exams, questions, attempt edges, and any client-supplied
// tags. Questions arriving untagged are flagged for the AI workflow,
// never tagged by guesswork here.
package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/types"
)

var ErrInvalidReport = errors.New("invalid exam report")

// GraphStore is the slice of the graph layer ingestion needs.
type GraphStore interface {
	UpsertStudent(ctx context.Context, st *types.Student, cohort string) error
	UpsertExam(ctx context.Context, e *types.Exam) error
	UpsertQuestion(ctx context.Context, q *types.Question) error
	LinkQuestionToExam(ctx context.Context, questionID, examID int64) error
	CreateAttempt(ctx context.Context, a *types.Attempt) error
	FlagForTagging(ctx context.Context, id int64) error
	TagEdges(ctx context.Context, questionID int64) ([]types.TagEdge, bool, error)
	AttachTags(ctx context.Context, w types.TagWrite) error
}

// ClientTags is the optional tag block a report can carry per question.
// Client tags are authoritative: they persist at confidence 1.0 and
// version 1.
type ClientTags struct {
	Concept    string `json:"concept,omitempty"`
	Skill      string `json:"skill,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

func (t *ClientTags) empty() bool {
	return t == nil || (t.Concept == "" && t.Skill == "" && t.Difficulty == "")
}

// ReportQuestion is one question row in an exam report.
type ReportQuestion struct {
	QuestionID       int64         `json:"question_id"`
	Text             string        `json:"text"`
	Outcome          types.Outcome `json:"outcome"`
	TimeSpentSeconds *int          `json:"time_spent_seconds,omitempty"`
	Tags             *ClientTags   `json:"tags,omitempty"`
}

// ExamReport is the client payload for one student's sitting of one
// exam.
type ExamReport struct {
	Student   types.Student    `json:"student"`
	Cohort    string           `json:"cohort,omitempty"`
	Exam      types.Exam       `json:"exam"`
	Questions []ReportQuestion `json:"questions"`
}

func (r *ExamReport) validate() error {
	if r.Student.ID == 0 {
		return fmt.Errorf("%w: missing student_id", ErrInvalidReport)
	}
	if r.Exam.ID == 0 {
		return fmt.Errorf("%w: missing exam_id", ErrInvalidReport)
	}
	if len(r.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidReport)
	}
	for i, q := range r.Questions {
		if q.QuestionID == 0 {
			return fmt.Errorf("%w: question %d missing question_id", ErrInvalidReport, i)
		}
		if q.Text == "" {
			return fmt.Errorf("%w: question %d missing text", ErrInvalidReport, q.QuestionID)
		}
		switch q.Outcome {
		case types.OutcomeCorrect, types.OutcomeIncorrect, types.OutcomeSkipped:
		default:
			return fmt.Errorf("%w: question %d has unknown outcome %q", ErrInvalidReport, q.QuestionID, q.Outcome)
		}
	}
	return nil
}

// IngestResult tallies one processed report.
type IngestResult struct {
	StudentID    int64 `json:"student_id"`
	ExamID       int64 `json:"exam_id"`
	Attempts     int   `json:"attempts"`
	ClientTagged int   `json:"client_tagged"`
	FlaggedForAI int   `json:"flagged_for_ai"`
}

type Service struct {
	store GraphStore
	log   *logger.Logger
}

func NewService(store GraphStore, log *logger.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With("service", "Ingestion"),
	}
}

// ProcessReport validates and persists one exam report. Absent time is
// stored as null; a question without tags and without prior tags is
// flagged for the AI workflow.
func (s *Service) ProcessReport(ctx context.Context, report *ExamReport) (*IngestResult, error) {
	if err := report.validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpsertStudent(ctx, &report.Student, report.Cohort); err != nil {
		return nil, err
	}
	if err := s.store.UpsertExam(ctx, &report.Exam); err != nil {
		return nil, err
	}

	result := &IngestResult{StudentID: report.Student.ID, ExamID: report.Exam.ID}
	for _, rq := range report.Questions {
		if err := s.ingestQuestion(ctx, report, rq, result); err != nil {
			return nil, err
		}
	}

	s.log.Info("exam report ingested",
		"student_id", report.Student.ID,
		"exam_id", report.Exam.ID,
		"attempts", result.Attempts,
		"client_tagged", result.ClientTagged,
		"flagged_for_ai", result.FlaggedForAI)
	return result, nil
}

func (s *Service) ingestQuestion(ctx context.Context, report *ExamReport, rq ReportQuestion, result *IngestResult) error {
	if err := s.store.UpsertQuestion(ctx, &types.Question{ID: rq.QuestionID, Text: rq.Text}); err != nil {
		return err
	}
	if err := s.store.LinkQuestionToExam(ctx, rq.QuestionID, report.Exam.ID); err != nil {
		return err
	}
	if err := s.store.CreateAttempt(ctx, &types.Attempt{
		StudentID:        report.Student.ID,
		QuestionID:       rq.QuestionID,
		Outcome:          rq.Outcome,
		TimeSpentSeconds: rq.TimeSpentSeconds,
	}); err != nil {
		return err
	}
	result.Attempts++

	if !rq.Tags.empty() {
		if err := s.store.AttachTags(ctx, clientTagWrite(rq.QuestionID, rq.Tags)); err != nil {
			return err
		}
		result.ClientTagged++
		return nil
	}

	existing, _, err := s.store.TagEdges(ctx, rq.QuestionID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		if err := s.store.FlagForTagging(ctx, rq.QuestionID); err != nil {
			return err
		}
		result.FlaggedForAI++
	}
	return nil
}

func clientTagWrite(questionID int64, tags *ClientTags) types.TagWrite {
	var edges []types.TagEdge
	add := func(dim types.Dimension, name string) {
		if name == "" {
			return
		}
		edges = append(edges, types.TagEdge{
			QuestionID: questionID,
			Dimension:  dim,
			Name:       name,
			Confidence: 1.0,
			Source:     types.TagSourceClient,
			Version:    1,
		})
	}
	add(types.DimensionConcept, tags.Concept)
	add(types.DimensionSkill, tags.Skill)
	add(types.DimensionDifficulty, tags.Difficulty)
	return types.TagWrite{Edges: edges}
}
