package analytics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dakshlabs/examgraph-backend/internal/platform/envutil"
)

// Policy holds every analytics threshold. Defaults match the tuned
// production values; deployments override via ANALYTICS_POLICY_YAML or
// individual env vars.
type Policy struct {
	// Trend labeling over the accuracy slope.
	TrendImproving float64 `yaml:"trend_improving"`
	TrendDeclining float64 `yaml:"trend_declining"`

	// Concept mastery: more than ConceptMistakeFloor incorrect attempts
	// and accuracy under ConceptAccuracyCeiling flags high risk.
	ConceptMistakeFloor    int     `yaml:"concept_mistake_floor"`
	ConceptAccuracyCeiling float64 `yaml:"concept_accuracy_ceiling"`

	// Skill mastery tiers.
	SkillWeakCeiling   float64 `yaml:"skill_weak_ceiling"`
	SkillHighRiskFloor float64 `yaml:"skill_high_risk_floor"`

	// Cohort alerting: a concept alerts when strictly more than
	// AlertMemberShare of members sit under AlertAccuracyCeiling.
	AlertMemberShare     float64 `yaml:"alert_member_share"`
	AlertAccuracyCeiling float64 `yaml:"alert_accuracy_ceiling"`

	// Leaderboard: members with fewer attempts than MinAttempts are
	// excluded; bucket edges split strong from at-risk.
	LeaderboardMinAttempts  int     `yaml:"leaderboard_min_attempts"`
	LeaderboardStrongFloor  float64 `yaml:"leaderboard_strong_floor"`
	LeaderboardAverageFloor float64 `yaml:"leaderboard_average_floor"`
}

func DefaultPolicy() Policy {
	return Policy{
		TrendImproving:          0.01,
		TrendDeclining:          -0.01,
		ConceptMistakeFloor:     3,
		ConceptAccuracyCeiling:  0.5,
		SkillWeakCeiling:        0.6,
		SkillHighRiskFloor:      0.5,
		AlertMemberShare:        0.4,
		AlertAccuracyCeiling:    0.5,
		LeaderboardMinAttempts:  5,
		LeaderboardStrongFloor:  0.8,
		LeaderboardAverageFloor: 0.5,
	}
}

// LoadPolicy starts from defaults, layers the YAML file named by
// ANALYTICS_POLICY_YAML when set, then individual env overrides.
func LoadPolicy() (Policy, error) {
	p := DefaultPolicy()

	if path := os.Getenv("ANALYTICS_POLICY_YAML"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return p, fmt.Errorf("analytics policy: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return p, fmt.Errorf("analytics policy: parse %s: %w", path, err)
		}
	}

	p.TrendImproving = envutil.Float("ANALYTICS_TREND_IMPROVING", p.TrendImproving)
	p.TrendDeclining = envutil.Float("ANALYTICS_TREND_DECLINING", p.TrendDeclining)
	p.ConceptMistakeFloor = envutil.Int("ANALYTICS_CONCEPT_MISTAKE_FLOOR", p.ConceptMistakeFloor)
	p.ConceptAccuracyCeiling = envutil.Float("ANALYTICS_CONCEPT_ACCURACY_CEILING", p.ConceptAccuracyCeiling)
	p.SkillWeakCeiling = envutil.Float("ANALYTICS_SKILL_WEAK_CEILING", p.SkillWeakCeiling)
	p.SkillHighRiskFloor = envutil.Float("ANALYTICS_SKILL_HIGH_RISK_FLOOR", p.SkillHighRiskFloor)
	p.AlertMemberShare = envutil.Float("ANALYTICS_ALERT_MEMBER_SHARE", p.AlertMemberShare)
	p.AlertAccuracyCeiling = envutil.Float("ANALYTICS_ALERT_ACCURACY_CEILING", p.AlertAccuracyCeiling)
	p.LeaderboardMinAttempts = envutil.Int("ANALYTICS_LEADERBOARD_MIN_ATTEMPTS", p.LeaderboardMinAttempts)
	p.LeaderboardStrongFloor = envutil.Float("ANALYTICS_LEADERBOARD_STRONG_FLOOR", p.LeaderboardStrongFloor)
	p.LeaderboardAverageFloor = envutil.Float("ANALYTICS_LEADERBOARD_AVERAGE_FLOOR", p.LeaderboardAverageFloor)

	if err := p.validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (p Policy) validate() error {
	if p.TrendImproving <= p.TrendDeclining {
		return fmt.Errorf("analytics policy: trend_improving %.4f must exceed trend_declining %.4f",
			p.TrendImproving, p.TrendDeclining)
	}
	if p.LeaderboardStrongFloor < p.LeaderboardAverageFloor {
		return fmt.Errorf("analytics policy: leaderboard_strong_floor %.2f below leaderboard_average_floor %.2f",
			p.LeaderboardStrongFloor, p.LeaderboardAverageFloor)
	}
	if p.AlertMemberShare < 0 || p.AlertMemberShare > 1 {
		return fmt.Errorf("analytics policy: alert_member_share %.2f outside [0,1]", p.AlertMemberShare)
	}
	return nil
}
