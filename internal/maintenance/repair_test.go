package maintenance

import (
	"context"
	"testing"

	"github.com/dakshlabs/examgraph-backend/internal/data/graph"
	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
)

type fakeStore struct {
	gaps    []graph.QuestionTagGap
	flagged []int64
	report  *graph.MigrationReport
}

func (f *fakeStore) ScanQuestionTagGaps(_ context.Context) ([]graph.QuestionTagGap, error) {
	return f.gaps, nil
}

func (f *fakeStore) FlagForTagging(_ context.Context, id int64) error {
	f.flagged = append(f.flagged, id)
	return nil
}

func (f *fakeStore) MigrateLegacyTagEdges(_ context.Context, dryRun bool) (*graph.MigrationReport, error) {
	r := *f.report
	r.DryRun = dryRun
	return &r, nil
}

func testService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewService(store, log)
}

func sampleGaps() []graph.QuestionTagGap {
	return []graph.QuestionTagGap{
		{QuestionID: 1, HasConcept: true, HasSkill: true, HasDifficulty: true},
		{QuestionID: 2, HasConcept: true},
		{QuestionID: 3},
		{QuestionID: 4, MissingText: true},
		{QuestionID: 5, HasSkill: true, AlreadyFlagged: true},
	}
}

func TestRepairScan_FlagsIncompleteQuestions(t *testing.T) {
	store := &fakeStore{gaps: sampleGaps()}
	report, err := testService(t, store).RepairScan(context.Background(), false)
	if err != nil {
		t.Fatalf("repair scan: %v", err)
	}

	if report.Scanned != 5 || report.Complete != 1 {
		t.Fatalf("scanned/complete = %d/%d, want 5/1", report.Scanned, report.Complete)
	}
	if report.Flagged != 2 {
		t.Fatalf("flagged = %d, want questions 2 and 3", report.Flagged)
	}
	if len(store.flagged) != 2 || store.flagged[0] != 2 || store.flagged[1] != 3 {
		t.Fatalf("flag calls = %v, want [2 3]", store.flagged)
	}
	// Textless questions are only reported; nothing can classify them.
	if len(report.Critical) != 1 || report.Critical[0] != 4 {
		t.Fatalf("critical = %v, want [4]", report.Critical)
	}
}

func TestRepairScan_DryRunFlagsNothing(t *testing.T) {
	store := &fakeStore{gaps: sampleGaps()}
	report, err := testService(t, store).RepairScan(context.Background(), true)
	if err != nil {
		t.Fatalf("repair scan: %v", err)
	}
	if report.Flagged != 2 {
		t.Fatalf("dry run reported flagged = %d, want 2", report.Flagged)
	}
	if len(store.flagged) != 0 {
		t.Fatalf("dry run wrote flags: %v", store.flagged)
	}
}

func TestMigrateLegacySchema_PassesDryRunThrough(t *testing.T) {
	store := &fakeStore{report: &graph.MigrationReport{PropsBackfilled: 7}}
	report, err := testService(t, store).MigrateLegacySchema(context.Background(), true)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !report.DryRun || report.PropsBackfilled != 7 {
		t.Fatalf("report = %+v", report)
	}
}
