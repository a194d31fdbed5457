package profiler

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"vizrec/domain/profile"
	"vizrec/domain/record"
)

// patterns derives the dataset-level flags from the field profiles
func (p *Profiler) patterns(prof *profile.Profile, quantitative []string) profile.Patterns {
	pat := profile.Patterns{HasTrend: len(prof.Trends) > 0}

	for _, fp := range prof.Fields {
		if fp.NullCount > 0 {
			pat.HasGaps = true
		}
	}

	ratios := make([]float64, 0, len(quantitative))
	for _, name := range quantitative {
		fp := prof.Fields[name]
		ratios = append(ratios, fp.UniqueRatio)

		d := fp.Distribution
		if d == nil {
			continue
		}
		if d.OutlierCount > 0 {
			pat.HasOutliers = true
		}
		if d.Mean != 0 && d.StdDev/math.Abs(d.Mean) > p.cfg.HighVarianceCV {
			pat.HasHighVariance = true
		}
		if d.Kurtosis > 0 && d.Kurtosis < p.cfg.MultiModalKurtosis {
			pat.HasMultiModality = true
		}
	}

	pat.Density = p.density(ratios)
	return pat
}

// density buckets the mean unique ratio of the quantitative fields
func (p *Profiler) density(ratios []float64) profile.Density {
	if len(ratios) == 0 {
		return profile.Sparse
	}
	mean, _ := stats.Mean(ratios)
	switch {
	case mean < p.cfg.SparseDensity:
		return profile.Sparse
	case mean > p.cfg.DenseDensity:
		return profile.Dense
	}
	return profile.Medium
}

type timedValue struct {
	at time.Time
	v  float64
}

// trends compares first- and last-quartile means of every temporal and
// quantitative pair, keeping the pairs whose relative change exceeds the
// threshold.
func (p *Profiler) trends(rs record.RecordSet, temporal, quantitative []string) []profile.Trend {
	var out []profile.Trend
	for _, tf := range temporal {
		for _, qf := range quantitative {
			if t, ok := p.trend(rs, tf, qf); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

func (p *Profiler) trend(rs record.RecordSet, temporal, field string) (profile.Trend, bool) {
	series := make([]timedValue, 0, rs.Len())
	for _, row := range rs.Rows {
		at, okT := row[temporal].Timestamp()
		v, okV := row[field].Float()
		if okT && okV {
			series = append(series, timedValue{at: at, v: v})
		}
	}

	q := len(series) / 4
	if q == 0 {
		return profile.Trend{}, false
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].at.Before(series[j].at) })

	first := make([]float64, q)
	last := make([]float64, q)
	for i := 0; i < q; i++ {
		first[i] = series[i].v
		last[i] = series[len(series)-q+i].v
	}
	firstMean, _ := stats.Mean(first)
	lastMean, _ := stats.Mean(last)

	var change float64
	switch {
	case firstMean != 0:
		change = (lastMean - firstMean) / math.Abs(firstMean)
	case lastMean != 0:
		// from a zero baseline any movement counts as a full change
		change = math.Copysign(1, lastMean)
	}

	t := profile.Trend{Temporal: temporal, Field: field, FirstMean: firstMean, LastMean: lastMean, Change: change}
	return t, math.Abs(change) > p.cfg.TrendChange
}
