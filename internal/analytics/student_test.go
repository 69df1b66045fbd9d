package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/types"
)

type fakeGraph struct {
	students           map[int64]*types.Student
	total              int
	correct            int
	distinctExams      int
	perExam            []types.ExamAccuracy
	incorrectByConcept map[string]int
	concepts           []types.ConceptAgg
	skills             []types.SkillAgg

	conceptMastery []types.MasteryEdge
	skillMastery   []types.MasteryEdge
	summaries      map[int64]*types.StudentSummary

	cohortMembers  map[string][]int64
	cohortConcepts map[string][]types.MemberConceptAgg
	cohortStudents map[string][]types.StudentAgg
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		students:           make(map[int64]*types.Student),
		incorrectByConcept: make(map[string]int),
		summaries:          make(map[int64]*types.StudentSummary),
		cohortMembers:      make(map[string][]int64),
		cohortConcepts:     make(map[string][]types.MemberConceptAgg),
		cohortStudents:     make(map[string][]types.StudentAgg),
	}
}

func (f *fakeGraph) GetStudent(_ context.Context, id int64) (*types.Student, error) {
	return f.students[id], nil
}

func (f *fakeGraph) AllStudentIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for id := range f.students {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeGraph) AttemptCounts(_ context.Context, _ int64) (int, int, int, error) {
	return f.total, f.correct, f.distinctExams, nil
}

func (f *fakeGraph) PerExamAccuracy(_ context.Context, _ int64) ([]types.ExamAccuracy, error) {
	return f.perExam, nil
}

func (f *fakeGraph) IncorrectByConcept(_ context.Context, _ int64) (map[string]int, error) {
	return f.incorrectByConcept, nil
}

func (f *fakeGraph) ConceptBreakdown(_ context.Context, _ int64) ([]types.ConceptAgg, error) {
	return f.concepts, nil
}

func (f *fakeGraph) SkillBreakdown(_ context.Context, _ int64) ([]types.SkillAgg, error) {
	return f.skills, nil
}

func (f *fakeGraph) UpsertConceptMastery(_ context.Context, m *types.MasteryEdge) error {
	f.conceptMastery = append(f.conceptMastery, *m)
	return nil
}

func (f *fakeGraph) UpsertSkillMastery(_ context.Context, m *types.MasteryEdge) error {
	f.skillMastery = append(f.skillMastery, *m)
	return nil
}

func (f *fakeGraph) UpsertStudentSummary(_ context.Context, sum *types.StudentSummary) error {
	cp := *sum
	f.summaries[sum.StudentID] = &cp
	return nil
}

func (f *fakeGraph) GetStudentSummary(_ context.Context, id int64) (*types.StudentSummary, error) {
	return f.summaries[id], nil
}

func (f *fakeGraph) CohortMembers(_ context.Context, cohort string) ([]int64, error) {
	return f.cohortMembers[cohort], nil
}

func (f *fakeGraph) CohortConceptAccuracy(_ context.Context, cohort string) ([]types.MemberConceptAgg, error) {
	return f.cohortConcepts[cohort], nil
}

func (f *fakeGraph) CohortStudentAccuracy(_ context.Context, cohort string) ([]types.StudentAgg, error) {
	return f.cohortStudents[cohort], nil
}

type fakeCache struct {
	entries map[int64]*types.StudentSummary
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[int64]*types.StudentSummary)}
}

func (f *fakeCache) Get(_ context.Context, id int64) (*types.StudentSummary, error) {
	return f.entries[id], nil
}

func (f *fakeCache) Set(_ context.Context, sum *types.StudentSummary) error {
	cp := *sum
	f.entries[sum.StudentID] = &cp
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, id int64) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeCache) Close() error { return nil }

func testStudentAnalyzer(t *testing.T, g *fakeGraph, c *fakeCache) *StudentAnalyzer {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewStudentAnalyzer(g, c, DefaultPolicy(), log)
}

func TestAnalyzeStudent_CoreSignals(t *testing.T) {
	g := newFakeGraph()
	g.students[1] = &types.Student{ID: 1, Name: "A"}
	g.total = 20
	g.correct = 12
	g.distinctExams = 4
	g.perExam = []types.ExamAccuracy{
		{ExamID: 1, Accuracy: 0.4},
		{ExamID: 2, Accuracy: 0.5},
		{ExamID: 3, Accuracy: 0.6},
		{ExamID: 4, Accuracy: 0.7},
	}
	g.incorrectByConcept = map[string]int{
		"Optics":         3,
		"Thermodynamics": 1,
		"Kinematics":     2,
	}

	report, err := testStudentAnalyzer(t, g, newFakeCache()).AnalyzeStudent(context.Background(), 1)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if report.AvgAccuracy != 0.6 {
		t.Fatalf("avg accuracy = %f, want 0.6", report.AvgAccuracy)
	}
	if report.Trend != TrendImproving {
		t.Fatalf("trend = %s, want Improving (slope %f)", report.Trend, report.AccuracySlope)
	}
	// Only concepts failed more than once count.
	if len(report.RepeatedMistakes) != 2 {
		t.Fatalf("repeated mistakes = %v, want Kinematics and Optics", report.RepeatedMistakes)
	}
	if report.RepeatedMistakes[0] != "Kinematics" || report.RepeatedMistakes[1] != "Optics" {
		t.Fatalf("repeated mistakes = %v, want sorted [Kinematics Optics]", report.RepeatedMistakes)
	}
	if report.AttemptDensity != 5.0 {
		t.Fatalf("attempt density = %f, want 5.0", report.AttemptDensity)
	}
}

func TestAnalyzeStudent_NoExamsMeansZeroDensity(t *testing.T) {
	g := newFakeGraph()
	g.students[1] = &types.Student{ID: 1}
	g.total = 7
	g.correct = 3
	g.distinctExams = 0

	report, err := testStudentAnalyzer(t, g, newFakeCache()).AnalyzeStudent(context.Background(), 1)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.AttemptDensity != 0.0 {
		t.Fatalf("attempt density = %f, want 0.0 with no exams", report.AttemptDensity)
	}
	if report.AccuracySlope != 0.0 || report.Trend != TrendVolatile {
		t.Fatalf("slope/trend = %f/%s, want 0.0/Volatile", report.AccuracySlope, report.Trend)
	}
}

func TestAnalyzeStudent_WeakAreas(t *testing.T) {
	g := newFakeGraph()
	g.students[1] = &types.Student{ID: 1}
	g.concepts = []types.ConceptAgg{
		{Name: "Optics", Correct: 2, Incorrect: 6, Total: 8},     // weak: >3 wrong, acc 0.25
		{Name: "Kinematics", Correct: 1, Incorrect: 3, Total: 4}, // exactly 3 wrong, not weak
		{Name: "Waves", Correct: 7, Incorrect: 5, Total: 12},     // >3 wrong but acc >= 0.5
	}
	g.skills = []types.SkillAgg{
		{Name: "Recall", Correct: 3, Total: 10},      // acc 0.3 -> High
		{Name: "Analysis", Correct: 11, Total: 20},   // acc 0.55 -> Medium
		{Name: "Application", Correct: 9, Total: 10}, // fine
	}

	report, err := testStudentAnalyzer(t, g, newFakeCache()).AnalyzeStudent(context.Background(), 1)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(report.WeakConcepts) != 1 || report.WeakConcepts[0].Name != "Optics" {
		t.Fatalf("weak concepts = %+v, want only Optics", report.WeakConcepts)
	}
	if report.WeakConcepts[0].Risk != types.RiskHigh {
		t.Fatalf("Optics risk = %s, want High", report.WeakConcepts[0].Risk)
	}

	if len(report.WeakSkills) != 2 {
		t.Fatalf("weak skills = %+v, want Recall and Analysis", report.WeakSkills)
	}
	for _, w := range report.WeakSkills {
		switch w.Name {
		case "Recall":
			if w.Risk != types.RiskHigh {
				t.Fatalf("Recall risk = %s, want High", w.Risk)
			}
		case "Analysis":
			if w.Risk != types.RiskMedium {
				t.Fatalf("Analysis risk = %s, want Medium", w.Risk)
			}
		default:
			t.Fatalf("unexpected weak skill %s", w.Name)
		}
	}
}

func TestAnalyzeStudent_Unknown(t *testing.T) {
	_, err := testStudentAnalyzer(t, newFakeGraph(), newFakeCache()).AnalyzeStudent(context.Background(), 9)
	if !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("err = %v, want ErrStudentNotFound", err)
	}
}

func TestRunStudentAnalysis_PersistsMasteryAndSummary(t *testing.T) {
	g := newFakeGraph()
	g.students[1] = &types.Student{ID: 1}
	g.total = 10
	g.correct = 2
	g.distinctExams = 2
	g.concepts = []types.ConceptAgg{
		{Name: "Optics", Correct: 1, Incorrect: 7, Total: 8},
	}
	g.skills = []types.SkillAgg{
		{Name: "Recall", Correct: 2, Total: 10},
	}
	g.incorrectByConcept = map[string]int{"Optics": 7}
	cache := newFakeCache()

	report, err := testStudentAnalyzer(t, g, cache).RunStudentAnalysis(context.Background(), 1)
	if err != nil {
		t.Fatalf("run analysis: %v", err)
	}

	if len(g.conceptMastery) != 1 || g.conceptMastery[0].TargetName != "Optics" {
		t.Fatalf("concept mastery = %+v, want Optics", g.conceptMastery)
	}
	if len(g.skillMastery) != 1 || g.skillMastery[0].RiskLevel != types.RiskHigh {
		t.Fatalf("skill mastery = %+v, want Recall High", g.skillMastery)
	}

	sum := g.summaries[1]
	if sum == nil {
		t.Fatal("summary not persisted")
	}
	if sum.AvgAccuracy != report.AvgAccuracy || sum.RepeatedMistakes != 1 {
		t.Fatalf("summary = %+v, disagrees with report", sum)
	}
	if cache.entries[1] == nil {
		t.Fatal("summary not cached")
	}
}

func TestStudentSummary_CacheThenStore(t *testing.T) {
	g := newFakeGraph()
	g.students[1] = &types.Student{ID: 1}
	g.summaries[1] = &types.StudentSummary{StudentID: 1, AvgAccuracy: 0.75}
	cache := newFakeCache()

	analyzer := testStudentAnalyzer(t, g, cache)
	sum, err := analyzer.StudentSummary(context.Background(), 1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum == nil || sum.AvgAccuracy != 0.75 {
		t.Fatalf("summary = %+v, want stored rollup", sum)
	}
	// Store hit backfills the cache.
	if cache.entries[1] == nil {
		t.Fatal("cache not backfilled after store read")
	}

	cache.entries[1].AvgAccuracy = 0.9
	sum, err = analyzer.StudentSummary(context.Background(), 1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.AvgAccuracy != 0.9 {
		t.Fatalf("summary = %+v, want cached value", sum)
	}
}

func TestRecomputeAllSummaries(t *testing.T) {
	t.Setenv("SUMMARY_RECOMPUTE_WORKERS", "1")
	g := newFakeGraph()
	g.students[1] = &types.Student{ID: 1}
	g.students[2] = &types.Student{ID: 2}
	g.total = 6
	g.correct = 3
	g.distinctExams = 2

	processed, failed, err := testStudentAnalyzer(t, g, newFakeCache()).RecomputeAllSummaries(context.Background())
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if processed != 2 || failed != 0 {
		t.Fatalf("processed/failed = %d/%d, want 2/0", processed, failed)
	}
	if len(g.summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(g.summaries))
	}
}
