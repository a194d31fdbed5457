package profiler

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"vizrec/domain/profile"
	"vizrec/domain/record"
)

// relationships computes the Pearson and Spearman coefficients for every
// pair of quantitative fields, in field order.
func (p *Profiler) relationships(rs record.RecordSet, fields []string) []profile.Relationship {
	out := make([]profile.Relationship, 0, len(fields)*(len(fields)-1)/2)
	for i := 0; i < len(fields); i++ {
		for j := i + 1; j < len(fields); j++ {
			x, y := pairedValues(rs, fields[i], fields[j])
			r := Pearson(x, y)

			rel := profile.Relationship{
				Pair:        profile.NewPair(fields[i], fields[j]),
				Type:        profile.Nonlinear,
				Strength:    math.Abs(r),
				Coefficient: r,
				Monotonic:   Spearman(x, y),
			}
			if rel.Strength > p.cfg.LinearCorrelation {
				rel.Type = profile.Linear
			}
			out = append(out, rel)
		}
	}
	return out
}

// pairedValues returns the values of rows where both fields are numeric
func pairedValues(rs record.RecordSet, a, b string) ([]float64, []float64) {
	x := make([]float64, 0, rs.Len())
	y := make([]float64, 0, rs.Len())
	for _, row := range rs.Rows {
		fa, okA := row[a].Float()
		fb, okB := row[b].Float()
		if okA && okB {
			x = append(x, fa)
			y = append(y, fb)
		}
	}
	return x, y
}

// Pearson returns the correlation coefficient of x and y, or 0 when it is
// undefined (fewer than two pairs or zero variance in either series).
func Pearson(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	if _, vx := stat.MeanVariance(x, nil); !(vx > 0) {
		return 0
	}
	if _, vy := stat.MeanVariance(y, nil); !(vy > 0) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if !finite(r) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}
