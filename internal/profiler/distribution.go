package profiler

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"vizrec/domain/profile"
)

// distribution computes the shape statistics of the non-null values.
// Moments that are undefined for the sample (a single value, zero
// variance, fewer than four values for kurtosis) are reported as zero.
func (p *Profiler) distribution(values []float64) *profile.Distribution {
	if len(values) == 0 {
		return nil
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	d := &profile.Distribution{}
	d.Mean, d.Variance = stat.MeanVariance(sorted, nil)
	if len(sorted) < 2 || !finite(d.Variance) {
		d.Variance = 0
	}
	d.StdDev = math.Sqrt(d.Variance)

	if d.Variance > 0 {
		d.Skewness = finiteOrZero(stat.Skew(sorted, nil))
		if len(sorted) >= 4 {
			d.Kurtosis = finiteOrZero(stat.ExKurtosis(sorted, nil) + 3)
		}
	}

	d.Min, _ = stats.Min(sorted)
	d.Max, _ = stats.Max(sorted)
	d.Median, _ = stats.Median(sorted)
	d.Range = d.Max - d.Min

	d.Q1 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	d.Q3 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	d.IQR = d.Q3 - d.Q1
	d.OutlierCount = CountOutliers(sorted, d.Q1, d.Q3, p.cfg.OutlierFence)

	return d
}

// CountOutliers counts values outside the Tukey fence
// [q1 - k*IQR, q3 + k*IQR].
func CountOutliers(values []float64, q1, q3, k float64) int {
	iqr := q3 - q1
	lo, hi := q1-k*iqr, q3+k*iqr
	n := 0
	for _, v := range values {
		if v < lo || v > hi {
			n++
		}
	}
	return n
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func finiteOrZero(x float64) float64 {
	if finite(x) {
		return x
	}
	return 0
}
