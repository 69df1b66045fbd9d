package analytics

import (
	"context"
	"testing"

	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/types"
)

type fakeAttemptReader struct {
	student  *types.Student
	attempts []types.Attempt
}

func (f *fakeAttemptReader) GetStudent(_ context.Context, _ int64) (*types.Student, error) {
	return f.student, nil
}

func (f *fakeAttemptReader) Attempts(_ context.Context, _ int64) ([]types.Attempt, error) {
	return f.attempts, nil
}

func intPtr(n int) *int { return &n }

func TestStudentPerformance_UntimedAttemptsStayOutOfAverage(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	reader := NewPerformanceReader(&fakeAttemptReader{
		student: &types.Student{ID: 1},
		attempts: []types.Attempt{
			{Outcome: types.OutcomeCorrect, TimeSpentSeconds: intPtr(30)},
			{Outcome: types.OutcomeIncorrect, TimeSpentSeconds: intPtr(90)},
			{Outcome: types.OutcomeCorrect},
			{Outcome: types.OutcomeSkipped},
		},
	}, log)

	view, err := reader.StudentPerformance(context.Background(), 1)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if view.Correct != 2 || view.Incorrect != 1 || view.Skipped != 1 {
		t.Fatalf("outcome counts = %d/%d/%d, want 2/1/1", view.Correct, view.Incorrect, view.Skipped)
	}
	if view.TimedAttempts != 2 {
		t.Fatalf("timed attempts = %d, want 2", view.TimedAttempts)
	}
	// Untimed attempts must not drag the average toward zero.
	if view.AvgTimeSeconds != 60.0 {
		t.Fatalf("avg time = %f, want 60.0", view.AvgTimeSeconds)
	}
}

func TestStudentPerformance_NoTimedAttempts(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	reader := NewPerformanceReader(&fakeAttemptReader{
		student:  &types.Student{ID: 1},
		attempts: []types.Attempt{{Outcome: types.OutcomeCorrect}},
	}, log)

	view, err := reader.StudentPerformance(context.Background(), 1)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if view.AvgTimeSeconds != 0.0 || view.TimedAttempts != 0 {
		t.Fatalf("avg/timed = %f/%d, want 0.0/0", view.AvgTimeSeconds, view.TimedAttempts)
	}
}
