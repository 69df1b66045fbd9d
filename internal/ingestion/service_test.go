package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/types"
)

type fakeStore struct {
	students  []types.Student
	cohorts   []string
	exams     []types.Exam
	questions map[int64]*types.Question
	links     map[int64]int64
	attempts  []types.Attempt
	flagged   []int64
	writes    []types.TagWrite
	existing  map[int64][]types.TagEdge
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		questions: make(map[int64]*types.Question),
		links:     make(map[int64]int64),
		existing:  make(map[int64][]types.TagEdge),
	}
}

func (f *fakeStore) UpsertStudent(_ context.Context, st *types.Student, cohort string) error {
	f.students = append(f.students, *st)
	f.cohorts = append(f.cohorts, cohort)
	return nil
}

func (f *fakeStore) UpsertExam(_ context.Context, e *types.Exam) error {
	f.exams = append(f.exams, *e)
	return nil
}

func (f *fakeStore) UpsertQuestion(_ context.Context, q *types.Question) error {
	f.questions[q.ID] = q
	return nil
}

func (f *fakeStore) LinkQuestionToExam(_ context.Context, questionID, examID int64) error {
	f.links[questionID] = examID
	return nil
}

func (f *fakeStore) CreateAttempt(_ context.Context, a *types.Attempt) error {
	f.attempts = append(f.attempts, *a)
	return nil
}

func (f *fakeStore) FlagForTagging(_ context.Context, id int64) error {
	f.flagged = append(f.flagged, id)
	return nil
}

func (f *fakeStore) TagEdges(_ context.Context, questionID int64) ([]types.TagEdge, bool, error) {
	return f.existing[questionID], true, nil
}

func (f *fakeStore) AttachTags(_ context.Context, w types.TagWrite) error {
	for _, e := range w.Edges {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	f.writes = append(f.writes, w)
	return nil
}

func testService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewService(store, log)
}

func sampleReport() *ExamReport {
	thirty := 30
	return &ExamReport{
		Student: types.Student{ID: 11, Name: "A"},
		Cohort:  "batch-a",
		Exam:    types.Exam{ID: 5, Name: "Mock 1", Type: "mock"},
		Questions: []ReportQuestion{
			{
				QuestionID:       101,
				Text:             "What is entropy?",
				Outcome:          types.OutcomeIncorrect,
				TimeSpentSeconds: &thirty,
				Tags:             &ClientTags{Concept: "Thermodynamics", Skill: "Recall", Difficulty: "Medium"},
			},
			{
				QuestionID: 102,
				Text:       "Define torque.",
				Outcome:    types.OutcomeCorrect,
			},
		},
	}
}

func TestProcessReport_FullFlow(t *testing.T) {
	store := newFakeStore()
	result, err := testService(t, store).ProcessReport(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if result.Attempts != 2 || result.ClientTagged != 1 || result.FlaggedForAI != 1 {
		t.Fatalf("result = %+v, want 2 attempts, 1 client tagged, 1 flagged", result)
	}
	if len(store.students) != 1 || store.cohorts[0] != "batch-a" {
		t.Fatalf("student upsert = %+v cohort %v", store.students, store.cohorts)
	}
	if store.links[101] != 5 || store.links[102] != 5 {
		t.Fatalf("question-exam links = %+v", store.links)
	}

	// Timed attempt keeps its duration, untimed stays nil.
	if store.attempts[0].TimeSpentSeconds == nil || *store.attempts[0].TimeSpentSeconds != 30 {
		t.Fatalf("attempt 0 time = %v, want 30", store.attempts[0].TimeSpentSeconds)
	}
	if store.attempts[1].TimeSpentSeconds != nil {
		t.Fatalf("attempt 1 time = %v, want nil", *store.attempts[1].TimeSpentSeconds)
	}

	// Client tags land at full confidence, version 1.
	if len(store.writes) != 1 {
		t.Fatalf("tag writes = %d, want 1", len(store.writes))
	}
	for _, e := range store.writes[0].Edges {
		if e.Source != types.TagSourceClient || e.Confidence != 1.0 || e.Version != 1 {
			t.Fatalf("client edge = %+v", e)
		}
	}

	// The untagged question gets flagged, never guessed.
	if len(store.flagged) != 1 || store.flagged[0] != 102 {
		t.Fatalf("flagged = %v, want [102]", store.flagged)
	}
}

func TestProcessReport_QuestionWithPriorTagsNotReflagged(t *testing.T) {
	store := newFakeStore()
	model := "gemini-2.0-flash"
	store.existing[102] = []types.TagEdge{{
		QuestionID: 102,
		Dimension:  types.DimensionConcept,
		Name:       "Mechanics",
		Confidence: 0.8,
		Source:     types.TagSourceLLM,
		Version:    1,
		ModelID:    &model,
	}}

	result, err := testService(t, store).ProcessReport(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.FlaggedForAI != 0 || len(store.flagged) != 0 {
		t.Fatalf("already-tagged question reflagged: %+v", store.flagged)
	}
}

func TestProcessReport_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ExamReport)
	}{
		{"missing student", func(r *ExamReport) { r.Student.ID = 0 }},
		{"missing exam", func(r *ExamReport) { r.Exam.ID = 0 }},
		{"no questions", func(r *ExamReport) { r.Questions = nil }},
		{"missing question id", func(r *ExamReport) { r.Questions[0].QuestionID = 0 }},
		{"missing text", func(r *ExamReport) { r.Questions[0].Text = "" }},
		{"unknown outcome", func(r *ExamReport) { r.Questions[0].Outcome = "maybe" }},
	}
	for _, tc := range cases {
		report := sampleReport()
		tc.mutate(report)
		store := newFakeStore()
		_, err := testService(t, store).ProcessReport(context.Background(), report)
		if !errors.Is(err, ErrInvalidReport) {
			t.Fatalf("%s: err = %v, want ErrInvalidReport", tc.name, err)
		}
		if len(store.attempts) != 0 {
			t.Fatalf("%s: invalid report still wrote attempts", tc.name)
		}
	}
}
