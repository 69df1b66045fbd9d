package analytics

// Trend is the qualitative label over a student's accuracy slope.
type Trend string

const (
	TrendImproving Trend = "Improving"
	TrendDeclining Trend = "Declining"
	TrendVolatile  Trend = "Volatile"
)

// AccuracySlope fits ordinary least squares over the per-exam accuracy
// series with exam index as x. Fewer than two points, or a degenerate
// x variance, yields 0.0 rather than an error; a flat-zero slope is the
// honest answer for "no trend measurable".
func AccuracySlope(accuracies []float64) float64 {
	n := len(accuracies)
	if n < 2 {
		return 0.0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range accuracies {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0.0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// TrendLabel buckets a slope: above the improving threshold, below the
// declining threshold, or the volatile band between them.
func (p Policy) TrendLabel(slope float64) Trend {
	switch {
	case slope > p.TrendImproving:
		return TrendImproving
	case slope < p.TrendDeclining:
		return TrendDeclining
	default:
		return TrendVolatile
	}
}
