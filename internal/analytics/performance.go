package analytics

import (
	"context"
	"fmt"

	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/types"
)

// AttemptReader is the attempt-history slice of the graph layer.
type AttemptReader interface {
	GetStudent(ctx context.Context, id int64) (*types.Student, error)
	Attempts(ctx context.Context, studentID int64) ([]types.Attempt, error)
}

// PerformanceView is the raw outcome and timing profile of one student.
// TimedAttempts counts only attempts with a recorded duration; untimed
// attempts never enter the time average.
type PerformanceView struct {
	StudentID      int64   `json:"student_id"`
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Skipped        int     `json:"skipped"`
	TotalAttempts  int     `json:"total_attempts"`
	TimedAttempts  int     `json:"timed_attempts"`
	AvgTimeSeconds float64 `json:"avg_time_seconds"`
}

type PerformanceReader struct {
	store AttemptReader
	log   *logger.Logger
}

func NewPerformanceReader(store AttemptReader, log *logger.Logger) *PerformanceReader {
	return &PerformanceReader{
		store: store,
		log:   log.With("service", "PerformanceReader"),
	}
}

func (r *PerformanceReader) StudentPerformance(ctx context.Context, studentID int64) (*PerformanceView, error) {
	st, err := r.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("performance for %d: %w", studentID, ErrStudentNotFound)
	}

	attempts, err := r.store.Attempts(ctx, studentID)
	if err != nil {
		return nil, err
	}

	view := &PerformanceView{StudentID: studentID, TotalAttempts: len(attempts)}
	var timedTotal int
	for _, a := range attempts {
		switch a.Outcome {
		case types.OutcomeCorrect:
			view.Correct++
		case types.OutcomeIncorrect:
			view.Incorrect++
		case types.OutcomeSkipped:
			view.Skipped++
		}
		if a.TimeSpentSeconds != nil {
			view.TimedAttempts++
			timedTotal += *a.TimeSpentSeconds
		}
	}
	if view.TimedAttempts > 0 {
		view.AvgTimeSeconds = float64(timedTotal) / float64(view.TimedAttempts)
	}
	return view, nil
}
