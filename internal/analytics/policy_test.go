package analytics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPolicy_Defaults(t *testing.T) {
	p, err := LoadPolicy()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p != DefaultPolicy() {
		t.Fatalf("policy = %+v, want defaults", p)
	}
}

func TestLoadPolicy_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	yaml := []byte("leaderboard_min_attempts: 10\nalert_member_share: 0.5\n")
	if err := os.WriteFile(path, yaml, 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("ANALYTICS_POLICY_YAML", path)
	t.Setenv("ANALYTICS_ALERT_MEMBER_SHARE", "0.6")

	p, err := LoadPolicy()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.LeaderboardMinAttempts != 10 {
		t.Fatalf("leaderboard_min_attempts = %d, want yaml value 10", p.LeaderboardMinAttempts)
	}
	if p.AlertMemberShare != 0.6 {
		t.Fatalf("alert_member_share = %f, want env override 0.6", p.AlertMemberShare)
	}
	// Untouched fields keep defaults.
	if p.TrendImproving != DefaultPolicy().TrendImproving {
		t.Fatalf("trend_improving = %f, want default", p.TrendImproving)
	}
}

func TestLoadPolicy_RejectsInvertedTrendBands(t *testing.T) {
	t.Setenv("ANALYTICS_TREND_IMPROVING", "-0.5")
	if _, err := LoadPolicy(); err == nil {
		t.Fatal("expected validation error for improving below declining")
	}
}

func TestLoadPolicy_MissingYAMLFile(t *testing.T) {
	t.Setenv("ANALYTICS_POLICY_YAML", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := LoadPolicy(); err == nil {
		t.Fatal("expected error for unreadable policy file")
	}
}
