package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
)

var ErrCohortNotFound = errors.New("cohort not found")

// ConceptAlert flags a concept a large share of its attempting members
// is failing. The share is over members who attempted the concept, not
// the whole cohort, so a weak topic only a few students have reached
// still surfaces.
type ConceptAlert struct {
	Concept           string  `json:"concept"`
	FailingMembers    int     `json:"failing_members"`
	AttemptingMembers int     `json:"attempting_members"`
	FailingShare      float64 `json:"failing_share"`
}

// LeaderboardBand buckets cohort members by overall accuracy.
type LeaderboardBand string

const (
	BandTop    LeaderboardBand = "top_performers"
	BandStable LeaderboardBand = "stable"
	BandAtRisk LeaderboardBand = "at_risk"
)

type LeaderboardEntry struct {
	StudentID int64           `json:"student_id"`
	Accuracy  float64         `json:"accuracy"`
	Attempts  int             `json:"attempts"`
	Band      LeaderboardBand `json:"band"`
}

// CohortReport is the full analysis of one cohort. CohortAccuracy is
// the aggregate over every member's attempts, 0.0 when nobody has
// attempted anything yet.
type CohortReport struct {
	Cohort         string             `json:"cohort"`
	MemberCount    int                `json:"member_count"`
	CohortAccuracy float64            `json:"cohort_accuracy"`
	Alerts         []ConceptAlert     `json:"alerts"`
	Leaderboard    []LeaderboardEntry `json:"leaderboard"`
	Excluded       int                `json:"excluded_low_volume"`
}

type CohortAnalyzer struct {
	store  GraphStore
	policy Policy
	log    *logger.Logger
}

func NewCohortAnalyzer(store GraphStore, policy Policy, log *logger.Logger) *CohortAnalyzer {
	return &CohortAnalyzer{
		store:  store,
		policy: policy,
		log:    log.With("service", "CohortAnalyzer"),
	}
}

// RunCohortAnalysis computes the aggregate accuracy, concept alerts
// and the leaderboard for one cohort. An empty cohort is
// ErrCohortNotFound; alerts need strictly more than the policy share
// of a concept's attempting members failing it.
func (a *CohortAnalyzer) RunCohortAnalysis(ctx context.Context, cohort string) (*CohortReport, error) {
	members, err := a.store.CohortMembers(ctx, cohort)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("cohort %q: %w", cohort, ErrCohortNotFound)
	}

	report := &CohortReport{Cohort: cohort, MemberCount: len(members)}

	conceptRows, err := a.store.CohortConceptAccuracy(ctx, cohort)
	if err != nil {
		return nil, err
	}
	attempting := make(map[string]int)
	failing := make(map[string]int)
	for _, row := range conceptRows {
		if row.Total == 0 {
			continue
		}
		attempting[row.Concept]++
		acc := float64(row.Correct) / float64(row.Total)
		if acc < a.policy.AlertAccuracyCeiling {
			failing[row.Concept]++
		}
	}
	for concept, n := range failing {
		att := attempting[concept]
		share := float64(n) / float64(att)
		if share > a.policy.AlertMemberShare {
			report.Alerts = append(report.Alerts, ConceptAlert{
				Concept:           concept,
				FailingMembers:    n,
				AttemptingMembers: att,
				FailingShare:      share,
			})
		}
	}
	sort.Slice(report.Alerts, func(i, j int) bool {
		if report.Alerts[i].FailingShare != report.Alerts[j].FailingShare {
			return report.Alerts[i].FailingShare > report.Alerts[j].FailingShare
		}
		return report.Alerts[i].Concept < report.Alerts[j].Concept
	})

	studentRows, err := a.store.CohortStudentAccuracy(ctx, cohort)
	if err != nil {
		return nil, err
	}
	var sumCorrect, sumTotal int
	for _, row := range studentRows {
		sumCorrect += row.Correct
		sumTotal += row.Total
		if row.Total < a.policy.LeaderboardMinAttempts {
			report.Excluded++
			continue
		}
		acc := float64(row.Correct) / float64(row.Total)
		entry := LeaderboardEntry{
			StudentID: row.StudentID,
			Accuracy:  acc,
			Attempts:  row.Total,
		}
		switch {
		case acc > a.policy.LeaderboardStrongFloor:
			entry.Band = BandTop
		case acc >= a.policy.LeaderboardAverageFloor:
			entry.Band = BandStable
		default:
			entry.Band = BandAtRisk
		}
		report.Leaderboard = append(report.Leaderboard, entry)
	}
	if sumTotal > 0 {
		report.CohortAccuracy = float64(sumCorrect) / float64(sumTotal)
	}
	sort.Slice(report.Leaderboard, func(i, j int) bool {
		if report.Leaderboard[i].Accuracy != report.Leaderboard[j].Accuracy {
			return report.Leaderboard[i].Accuracy > report.Leaderboard[j].Accuracy
		}
		return report.Leaderboard[i].StudentID < report.Leaderboard[j].StudentID
	})

	a.log.Info("cohort analyzed",
		"cohort", cohort,
		"members", len(members),
		"alerts", len(report.Alerts),
		"ranked", len(report.Leaderboard))
	return report, nil
}
