// Package maintenance holds operational sweeps over the graph: the
// tag-gap repair scan and the legacy schema migration entrypoint.
package maintenance

import (
	"context"

	"github.com/dakshlabs/examgraph-backend/internal/data/graph"
	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
)

// GraphStore is the slice of the graph layer the repair scan needs.
type GraphStore interface {
	ScanQuestionTagGaps(ctx context.Context) ([]graph.QuestionTagGap, error)
	FlagForTagging(ctx context.Context, id int64) error
	MigrateLegacyTagEdges(ctx context.Context, dryRun bool) (*graph.MigrationReport, error)
}

// RepairReport tallies one repair scan. Critical lists questions with
// missing text; those cannot be auto-repaired because the classifier
// has nothing to read.
type RepairReport struct {
	DryRun   bool    `json:"dry_run"`
	Scanned  int     `json:"scanned"`
	Complete int     `json:"complete"`
	Flagged  int     `json:"flagged"`
	Critical []int64 `json:"critical,omitempty"`
}

type Service struct {
	store GraphStore
	log   *logger.Logger
}

func NewService(store GraphStore, log *logger.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With("service", "Maintenance"),
	}
}

// RepairScan walks every question and flags the ones missing any tag
// dimension for the AI workflow. With dryRun it only reports what a
// live run would flag.
func (s *Service) RepairScan(ctx context.Context, dryRun bool) (*RepairReport, error) {
	gaps, err := s.store.ScanQuestionTagGaps(ctx)
	if err != nil {
		return nil, err
	}

	report := &RepairReport{DryRun: dryRun, Scanned: len(gaps)}
	for _, gap := range gaps {
		if gap.MissingText {
			report.Critical = append(report.Critical, gap.QuestionID)
			continue
		}
		if gap.Complete() {
			report.Complete++
			continue
		}
		if gap.AlreadyFlagged {
			continue
		}
		if !dryRun {
			if err := s.store.FlagForTagging(ctx, gap.QuestionID); err != nil {
				return nil, err
			}
		}
		report.Flagged++
	}

	s.log.Info("repair scan finished",
		"dry_run", dryRun,
		"scanned", report.Scanned,
		"flagged", report.Flagged,
		"critical", len(report.Critical))
	return report, nil
}

// MigrateLegacySchema runs the tag-schema migration.
func (s *Service) MigrateLegacySchema(ctx context.Context, dryRun bool) (*graph.MigrationReport, error) {
	report, err := s.store.MigrateLegacyTagEdges(ctx, dryRun)
	if err != nil {
		return nil, err
	}
	s.log.Info("legacy tag schema migration finished",
		"dry_run", report.DryRun,
		"props_backfilled", report.PropsBackfilled,
		"topic_edges_renamed", report.TopicEdgesRenamed,
		"skill_edges_renamed", report.SkillEdgesRenamed,
		"sources_rewritten", report.SourcesRewritten)
	return report, nil
}
