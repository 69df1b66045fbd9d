// Package analytics computes longitudinal student and cohort signals
// from the attempt graph: accuracy trends, repeated mistakes, mastery
// edges, cohort alerts and leaderboards.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dakshlabs/examgraph-backend/internal/clients/rediscache"
	"github.com/dakshlabs/examgraph-backend/internal/platform/envutil"
	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/types"
)

var ErrStudentNotFound = errors.New("student not found")

// GraphStore is the slice of the graph layer the analyzers need.
type GraphStore interface {
	GetStudent(ctx context.Context, id int64) (*types.Student, error)
	AllStudentIDs(ctx context.Context) ([]int64, error)
	AttemptCounts(ctx context.Context, studentID int64) (total, correct, distinctExams int, err error)
	PerExamAccuracy(ctx context.Context, studentID int64) ([]types.ExamAccuracy, error)
	IncorrectByConcept(ctx context.Context, studentID int64) (map[string]int, error)
	ConceptBreakdown(ctx context.Context, studentID int64) ([]types.ConceptAgg, error)
	SkillBreakdown(ctx context.Context, studentID int64) ([]types.SkillAgg, error)
	UpsertConceptMastery(ctx context.Context, m *types.MasteryEdge) error
	UpsertSkillMastery(ctx context.Context, m *types.MasteryEdge) error
	UpsertStudentSummary(ctx context.Context, sum *types.StudentSummary) error
	GetStudentSummary(ctx context.Context, studentID int64) (*types.StudentSummary, error)

	CohortMembers(ctx context.Context, cohort string) ([]int64, error)
	CohortConceptAccuracy(ctx context.Context, cohort string) ([]types.MemberConceptAgg, error)
	CohortStudentAccuracy(ctx context.Context, cohort string) ([]types.StudentAgg, error)
}

// WeakArea is one flagged concept or skill with its mastery signal.
type WeakArea struct {
	Name     string          `json:"name"`
	Accuracy float64         `json:"accuracy"`
	Attempts int             `json:"attempts"`
	Risk     types.RiskLevel `json:"risk_level"`
}

// StudentReport is the full analysis of one student.
type StudentReport struct {
	StudentID        int64                `json:"student_id"`
	TotalAttempts    int                  `json:"total_attempts"`
	AvgAccuracy      float64              `json:"avg_accuracy"`
	AccuracySlope    float64              `json:"accuracy_slope"`
	Trend            Trend                `json:"trend"`
	PerExam          []types.ExamAccuracy `json:"per_exam"`
	RepeatedMistakes []string             `json:"repeated_mistakes"`
	AttemptDensity   float64              `json:"attempt_density"`
	WeakConcepts     []WeakArea           `json:"weak_concepts"`
	WeakSkills       []WeakArea           `json:"weak_skills"`
}

type StudentAnalyzer struct {
	store  GraphStore
	cache  rediscache.SummaryCache
	policy Policy
	log    *logger.Logger
	now    func() time.Time
}

func NewStudentAnalyzer(store GraphStore, cache rediscache.SummaryCache, policy Policy, log *logger.Logger) *StudentAnalyzer {
	return &StudentAnalyzer{
		store:  store,
		cache:  cache,
		policy: policy,
		log:    log.With("service", "StudentAnalyzer"),
		now:    time.Now,
	}
}

// AnalyzeStudent computes the full report without writing anything
// back to the graph.
func (a *StudentAnalyzer) AnalyzeStudent(ctx context.Context, studentID int64) (*StudentReport, error) {
	st, err := a.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("analyze student %d: %w", studentID, ErrStudentNotFound)
	}

	total, correct, distinctExams, err := a.store.AttemptCounts(ctx, studentID)
	if err != nil {
		return nil, err
	}
	perExam, err := a.store.PerExamAccuracy(ctx, studentID)
	if err != nil {
		return nil, err
	}
	incorrectByConcept, err := a.store.IncorrectByConcept(ctx, studentID)
	if err != nil {
		return nil, err
	}
	concepts, err := a.store.ConceptBreakdown(ctx, studentID)
	if err != nil {
		return nil, err
	}
	skills, err := a.store.SkillBreakdown(ctx, studentID)
	if err != nil {
		return nil, err
	}

	report := &StudentReport{
		StudentID:     studentID,
		TotalAttempts: total,
		PerExam:       perExam,
	}
	if total > 0 {
		report.AvgAccuracy = float64(correct) / float64(total)
	}

	series := make([]float64, 0, len(perExam))
	for _, row := range perExam {
		series = append(series, row.Accuracy)
	}
	report.AccuracySlope = AccuracySlope(series)
	report.Trend = a.policy.TrendLabel(report.AccuracySlope)

	for concept, n := range incorrectByConcept {
		if n > 1 {
			report.RepeatedMistakes = append(report.RepeatedMistakes, concept)
		}
	}
	sort.Strings(report.RepeatedMistakes)

	// Density stays 0.0 with no exams on record; dividing by zero exams
	// has no meaningful answer.
	if distinctExams > 0 {
		report.AttemptDensity = float64(total) / float64(distinctExams)
	}

	report.WeakConcepts = a.weakConcepts(concepts)
	report.WeakSkills = a.weakSkills(skills)
	return report, nil
}

func (a *StudentAnalyzer) weakConcepts(rows []types.ConceptAgg) []WeakArea {
	var out []WeakArea
	for _, row := range rows {
		if row.Total == 0 {
			continue
		}
		acc := float64(row.Correct) / float64(row.Total)
		if row.Incorrect > a.policy.ConceptMistakeFloor && acc < a.policy.ConceptAccuracyCeiling {
			out = append(out, WeakArea{
				Name:     row.Name,
				Accuracy: acc,
				Attempts: row.Total,
				Risk:     types.RiskHigh,
			})
		}
	}
	return out
}

func (a *StudentAnalyzer) weakSkills(rows []types.SkillAgg) []WeakArea {
	var out []WeakArea
	for _, row := range rows {
		if row.Total == 0 {
			continue
		}
		acc := float64(row.Correct) / float64(row.Total)
		if acc >= a.policy.SkillWeakCeiling {
			continue
		}
		risk := types.RiskMedium
		if acc < a.policy.SkillHighRiskFloor {
			risk = types.RiskHigh
		}
		out = append(out, WeakArea{
			Name:     row.Name,
			Accuracy: acc,
			Attempts: row.Total,
			Risk:     risk,
		})
	}
	return out
}

// RunStudentAnalysis analyzes a student and persists the mastery edges
// and summary node, then refreshes the cache.
func (a *StudentAnalyzer) RunStudentAnalysis(ctx context.Context, studentID int64) (*StudentReport, error) {
	report, err := a.AnalyzeStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	for _, weak := range report.WeakConcepts {
		m := &types.MasteryEdge{
			StudentID:    studentID,
			TargetName:   weak.Name,
			MasteryScore: weak.Accuracy,
			RiskLevel:    weak.Risk,
		}
		if err := a.store.UpsertConceptMastery(ctx, m); err != nil {
			return nil, err
		}
	}
	for _, weak := range report.WeakSkills {
		m := &types.MasteryEdge{
			StudentID:    studentID,
			TargetName:   weak.Name,
			MasteryScore: weak.Accuracy,
			RiskLevel:    weak.Risk,
		}
		if err := a.store.UpsertSkillMastery(ctx, m); err != nil {
			return nil, err
		}
	}

	if _, err := a.UpdateStudentSummary(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// UpdateStudentSummary writes the denormalized rollup for one report.
func (a *StudentAnalyzer) UpdateStudentSummary(ctx context.Context, report *StudentReport) (*types.StudentSummary, error) {
	sum := &types.StudentSummary{
		StudentID:        report.StudentID,
		AvgAccuracy:      report.AvgAccuracy,
		AccuracySlope:    report.AccuracySlope,
		RepeatedMistakes: len(report.RepeatedMistakes),
		AttemptDensity:   report.AttemptDensity,
		LastUpdated:      a.now().UTC(),
	}
	if err := a.store.UpsertStudentSummary(ctx, sum); err != nil {
		return nil, err
	}
	if err := a.cache.Set(ctx, sum); err != nil {
		a.log.Warn("summary cache set failed",
			"student_id", report.StudentID,
			"error", err.Error())
	}
	return sum, nil
}

// StudentSummary serves reads through the cache, falling back to the
// stored node. Nil result means no summary has been computed yet.
func (a *StudentAnalyzer) StudentSummary(ctx context.Context, studentID int64) (*types.StudentSummary, error) {
	if sum, err := a.cache.Get(ctx, studentID); err != nil {
		a.log.Warn("summary cache get failed",
			"student_id", studentID,
			"error", err.Error())
	} else if sum != nil {
		return sum, nil
	}

	sum, err := a.store.GetStudentSummary(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if sum != nil {
		if err := a.cache.Set(ctx, sum); err != nil {
			a.log.Warn("summary cache backfill failed",
				"student_id", studentID,
				"error", err.Error())
		}
	}
	return sum, nil
}

// RecomputeAllSummaries fans analysis out over every student with a
// bounded worker pool. One student's failure is logged and counted, not
// fatal to the run.
func (a *StudentAnalyzer) RecomputeAllSummaries(ctx context.Context) (processed, failed int, err error) {
	ids, err := a.store.AllStudentIDs(ctx)
	if err != nil {
		return 0, 0, err
	}

	workers := envutil.Int("SUMMARY_RECOMPUTE_WORKERS", 4)
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	results := make(chan bool, len(ids))
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if _, err := a.RunStudentAnalysis(gctx, id); err != nil {
				a.log.Error("summary recompute failed",
					"student_id", id,
					"error", err.Error())
				results <- false
				return nil
			}
			results <- true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return processed, failed, err
	}
	close(results)
	for ok := range results {
		if ok {
			processed++
		} else {
			failed++
		}
	}
	a.log.Info("summary recompute finished", "processed", processed, "failed", failed)
	return processed, failed, nil
}
