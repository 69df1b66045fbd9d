package analytics

import (
	"math"
	"testing"
)

func TestAccuracySlope_PerfectLine(t *testing.T) {
	// y = 0.1x fits exactly.
	got := AccuracySlope([]float64{0.0, 0.1, 0.2, 0.3})
	if math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("slope = %f, want 0.1", got)
	}
}

func TestAccuracySlope_FlatSeries(t *testing.T) {
	got := AccuracySlope([]float64{0.5, 0.5, 0.5})
	if got != 0.0 {
		t.Fatalf("slope = %f, want 0.0", got)
	}
}

func TestAccuracySlope_DecliningSeries(t *testing.T) {
	got := AccuracySlope([]float64{0.9, 0.6, 0.3})
	if got >= 0 {
		t.Fatalf("slope = %f, want negative", got)
	}
}

func TestAccuracySlope_TwoPoints(t *testing.T) {
	// Two exams are the smallest series with a direction. The slope is
	// just the difference between them, and the label follows its sign.
	p := DefaultPolicy()
	cases := []struct {
		series []float64
		slope  float64
		want   Trend
	}{
		{[]float64{0.4, 0.8}, 0.4, TrendImproving},
		{[]float64{0.8, 0.4}, -0.4, TrendDeclining},
		{[]float64{0.5, 0.5}, 0.0, TrendVolatile},
	}
	for _, tc := range cases {
		got := AccuracySlope(tc.series)
		if math.Abs(got-tc.slope) > 1e-9 {
			t.Fatalf("slope(%v) = %f, want %f", tc.series, got, tc.slope)
		}
		if label := p.TrendLabel(got); label != tc.want {
			t.Fatalf("label(%v) = %s, want %s", tc.series, label, tc.want)
		}
	}
}

func TestAccuracySlope_TooFewPoints(t *testing.T) {
	if got := AccuracySlope(nil); got != 0.0 {
		t.Fatalf("slope(nil) = %f, want 0.0", got)
	}
	if got := AccuracySlope([]float64{0.7}); got != 0.0 {
		t.Fatalf("slope(one point) = %f, want 0.0", got)
	}
}

func TestTrendLabel_Bands(t *testing.T) {
	p := DefaultPolicy()
	cases := []struct {
		slope float64
		want  Trend
	}{
		{0.05, TrendImproving},
		{0.011, TrendImproving},
		{0.01, TrendVolatile},
		{0.0, TrendVolatile},
		{-0.01, TrendVolatile},
		{-0.011, TrendDeclining},
		{-0.2, TrendDeclining},
	}
	for _, tc := range cases {
		if got := p.TrendLabel(tc.slope); got != tc.want {
			t.Fatalf("TrendLabel(%f) = %s, want %s", tc.slope, got, tc.want)
		}
	}
}
