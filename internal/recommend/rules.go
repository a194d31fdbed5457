package recommend

import (
	"fmt"
	"math"

	"vizrec/domain/profile"
	"vizrec/domain/record"
	"vizrec/domain/viz"
	"vizrec/internal/heuristics"
)

const (
	confidenceScatter     = 0.9
	confidenceBoxplot     = 0.85
	confidenceTrend       = 0.9
	confidenceStackedArea = 0.85
	confidenceHeatmap     = 0.8
	confidenceHistogram   = 0.85
	confidenceBar         = 0.9
	confidenceHorizontal  = 0.85
	confidenceGrouped     = 0.8
	confidencePie         = 0.75
	confidenceBubble      = 0.7
	confidenceParallel    = 0.6
	confidenceWordCloud   = 0.6
)

// strongRelationship suggests a scatter plot of the most correlated pair
func strongRelationship(a *analysis) []viz.Recommendation {
	for _, rel := range a.prof.StrongestFirst() {
		if rel.Strength <= a.cfg.StrongRelationship {
			break
		}
		x, y := a.inOrder(rel.A, rel.B)

		enc := viz.Encoding{}
		enc.Set(viz.ChannelX, viz.Field(x, record.Quantitative))
		enc.Set(viz.ChannelY, viz.Field(y, record.Quantitative))
		if len(a.categorical) > 0 {
			enc.Set(viz.ChannelColor, a.field(a.categorical[0]))
		}
		if size := a.numericExcept(x, y); size != "" {
			enc.Set(viz.ChannelSize, viz.Field(size, record.Quantitative))
		}

		return []viz.Recommendation{{
			ChartType:  viz.ChartScatter,
			Confidence: confidenceScatter,
			Reason:     fmt.Sprintf("%s and %s are strongly correlated (r = %.2f)", x, y, rel.Coefficient),
			Encoding:   enc,
		}}
	}
	return nil
}

// outliersByCategory suggests a box plot when a measure has outliers
func outliersByCategory(a *analysis) []viz.Recommendation {
	cat := a.anyCategory()
	if cat == "" {
		return nil
	}
	for _, f := range a.meaningful {
		d := a.distribution(f)
		if d == nil || d.OutlierCount == 0 {
			continue
		}

		enc := viz.Encoding{}
		enc.Set(viz.ChannelX, a.field(cat))
		enc.Set(viz.ChannelY, viz.Field(f, record.Quantitative))
		enc.Set(viz.ChannelColor, a.field(cat))

		return []viz.Recommendation{{
			ChartType:  viz.ChartBoxplot,
			Confidence: confidenceBoxplot,
			Reason:     fmt.Sprintf("%s has %d outliers; compare its spread across %s", f, d.OutlierCount, cat),
			Encoding:   enc,
		}}
	}
	return nil
}

// temporalTrend suggests a line chart for the first detected trend and,
// when a category exists, a stacked area of its sum over time.
func temporalTrend(a *analysis) []viz.Recommendation {
	if !a.prof.Patterns.HasTrend || len(a.prof.Trends) == 0 {
		return nil
	}
	t := a.prof.Trends[0]

	line := viz.Encoding{}
	line.Set(viz.ChannelX, viz.Field(t.Temporal, record.Temporal))
	line.Set(viz.ChannelY, viz.Field(t.Field, record.Quantitative))
	out := []viz.Recommendation{{
		ChartType:  viz.ChartLine,
		Confidence: confidenceTrend,
		Reason:     fmt.Sprintf("%s changes by %.0f%% over %s", t.Field, t.Change*100, t.Temporal),
		Encoding:   line,
	}}

	if cat := a.anyCategory(); cat != "" {
		area := viz.Encoding{}
		area.Set(viz.ChannelX, viz.Field(t.Temporal, record.Temporal))
		area.Set(viz.ChannelY, viz.Field(t.Field, record.Quantitative).WithAggregate("sum"))
		area.Set(viz.ChannelColor, a.field(cat))
		out = append(out, viz.Recommendation{
			ChartType:  viz.ChartStackedArea,
			Confidence: confidenceStackedArea,
			Reason:     fmt.Sprintf("Share of %s by %s over time", t.Field, cat),
			Encoding:   area,
		})
	}
	return out
}

// denseHeatmap suggests a binned 2D count for dense numeric data
func denseHeatmap(a *analysis) []viz.Recommendation {
	if a.prof.Patterns.Density != profile.Dense || len(a.numeric) < 2 {
		return nil
	}
	pool := a.meaningful
	if len(pool) < 2 {
		pool = a.numeric
	}

	enc := viz.Encoding{}
	enc.Set(viz.ChannelX, viz.Field(pool[0], record.Quantitative).WithBin(&viz.Bin{}))
	enc.Set(viz.ChannelY, viz.Field(pool[1], record.Quantitative).WithBin(&viz.Bin{}))
	enc.Set(viz.ChannelColor, viz.Count())

	return []viz.Recommendation{{
		ChartType:  viz.ChartHeatmap,
		Confidence: confidenceHeatmap,
		Reason:     fmt.Sprintf("Dense data: show where %s and %s values concentrate", pool[0], pool[1]),
		Encoding:   enc,
	}}
}

// skewedDistribution suggests a histogram for the first skewed measure
func skewedDistribution(a *analysis) []viz.Recommendation {
	for _, f := range a.meaningful {
		d := a.distribution(f)
		if d == nil || math.Abs(d.Skewness) <= a.cfg.SkewThreshold {
			continue
		}

		enc := viz.Encoding{}
		enc.Set(viz.ChannelX, viz.Field(f, record.Quantitative).WithBin(&viz.Bin{}))
		enc.Set(viz.ChannelY, viz.Count())

		return []viz.Recommendation{{
			ChartType:  viz.ChartHistogram,
			Confidence: confidenceHistogram,
			Reason:     fmt.Sprintf("%s is skewed (skewness %.2f)", f, d.Skewness),
			Encoding:   enc,
		}}
	}
	return nil
}

// categoryComparison suggests bars of a measure per category, transposed
// for long labels and grouped when a second category exists.
func categoryComparison(a *analysis) []viz.Recommendation {
	cat := a.category(a.cfg.MaxCategoryCardinality)
	if cat == "" || len(a.meaningful) == 0 {
		return nil
	}
	m := a.meaningful[0]
	sum := viz.Field(m, record.Quantitative).WithAggregate("sum")

	bar := viz.Encoding{}
	bar.Set(viz.ChannelX, a.field(cat))
	bar.Set(viz.ChannelY, sum)
	out := []viz.Recommendation{{
		ChartType:  viz.ChartBar,
		Confidence: confidenceBar,
		Reason:     fmt.Sprintf("Compare %s across %d %s values", m, a.cardinality(cat), cat),
		Encoding:   bar,
	}}

	if fp, _ := a.prof.Field(cat); fp.MaxLength > a.cfg.LongLabelLength {
		horizontal := viz.Encoding{}
		horizontal.Set(viz.ChannelX, sum)
		horizontal.Set(viz.ChannelY, a.field(cat))
		out = append(out, viz.Recommendation{
			ChartType:  viz.ChartHorizontalBar,
			Confidence: confidenceHorizontal,
			Reason:     fmt.Sprintf("%s labels are long; bars read better horizontally", cat),
			Encoding:   horizontal,
		})
	}

	for _, second := range a.categorical {
		if second == cat {
			continue
		}
		grouped := viz.Encoding{}
		grouped.Set(viz.ChannelX, a.field(cat))
		grouped.Set(viz.ChannelY, sum)
		grouped.Set(viz.ChannelColor, a.field(second))
		grouped.Set(viz.ChannelXOffset, a.field(second))
		out = append(out, viz.Recommendation{
			ChartType:  viz.ChartGroupedBar,
			Confidence: confidenceGrouped,
			Reason:     fmt.Sprintf("Compare %s across %s, grouped by %s", m, cat, second),
			Encoding:   grouped,
		})
		break
	}
	return out
}

// partToWhole suggests a pie for a low-cardinality category
func partToWhole(a *analysis) []viz.Recommendation {
	cat := a.category(a.cfg.MaxPieCardinality)
	if cat == "" || len(a.meaningful) == 0 {
		return nil
	}
	m := a.measure()

	enc := viz.Encoding{}
	enc.Set(viz.ChannelTheta, viz.Field(m, record.Quantitative).WithAggregate("sum"))
	enc.Set(viz.ChannelColor, a.field(cat))

	return []viz.Recommendation{{
		ChartType:  viz.ChartPie,
		Confidence: confidencePie,
		Reason:     fmt.Sprintf("Share of %s for each of %d %s values", m, a.cardinality(cat), cat),
		Encoding:   enc,
	}}
}

// groupedHierarchy suggests size-encoded bubbles for a grouping field
func groupedHierarchy(a *analysis) []viz.Recommendation {
	if len(a.meaningful) == 0 {
		return nil
	}
	for _, cat := range a.categorical {
		if !heuristics.IsGroupingName(cat) {
			continue
		}
		m := a.measure()

		enc := viz.Encoding{}
		enc.Set(viz.ChannelX, a.field(cat))
		enc.Set(viz.ChannelSize, viz.Field(m, record.Quantitative).WithAggregate("sum"))
		enc.Set(viz.ChannelColor, a.field(cat))

		return []viz.Recommendation{{
			ChartType:  viz.ChartBubble,
			Confidence: confidenceBubble,
			Reason:     fmt.Sprintf("Size of each %s group by total %s", cat, m),
			Encoding:   enc,
		}}
	}
	return nil
}

// multiDimensional suggests parallel coordinates for three or more measures
func multiDimensional(a *analysis) []viz.Recommendation {
	if len(a.meaningful) < 3 {
		return nil
	}

	enc := viz.Encoding{}
	enc.Set(viz.ChannelDetail, a.field(a.identifier()))
	if cat := a.category(a.cfg.MaxCategoryCardinality); cat != "" {
		enc.Set(viz.ChannelColor, a.field(cat))
	}

	return []viz.Recommendation{{
		ChartType:  viz.ChartParallel,
		Confidence: confidenceParallel,
		Reason:     fmt.Sprintf("Compare %d measures side by side", len(a.meaningful)),
		Encoding:   enc,
	}}
}

// termWeights suggests a word cloud when a term field and a weight exist
func termWeights(a *analysis) []viz.Recommendation {
	var text, weight string
	for _, f := range a.order {
		switch {
		case text == "" && heuristics.IsTextName(f) && a.typeOf(f) != record.Quantitative:
			text = f
		case weight == "" && heuristics.IsWeightName(f) && a.typeOf(f) == record.Quantitative:
			weight = f
		}
	}
	if text == "" || weight == "" {
		return nil
	}

	enc := viz.Encoding{}
	enc.Set(viz.ChannelText, a.field(text))
	enc.Set(viz.ChannelSize, viz.Field(weight, record.Quantitative))

	return []viz.Recommendation{{
		ChartType:  viz.ChartWordCloud,
		Confidence: confidenceWordCloud,
		Reason:     fmt.Sprintf("%s weighted by %s", text, weight),
		Encoding:   enc,
	}}
}

// inOrder returns two fields in record-set field order
func (a *analysis) inOrder(x, y string) (string, string) {
	for _, f := range a.order {
		if f == x {
			return x, y
		}
		if f == y {
			return y, x
		}
	}
	return x, y
}

// numericExcept returns the first meaningful numeric field not in used
func (a *analysis) numericExcept(used ...string) string {
	for _, f := range a.meaningful {
		taken := false
		for _, u := range used {
			if f == u {
				taken = true
				break
			}
		}
		if !taken {
			return f
		}
	}
	return ""
}

// anyCategory prefers a category within MaxCategoryCardinality but falls
// back to any categorical field that has values.
func (a *analysis) anyCategory() string {
	if cat := a.category(a.cfg.MaxCategoryCardinality); cat != "" {
		return cat
	}
	for _, f := range a.categorical {
		if a.cardinality(f) > 0 {
			return f
		}
	}
	return ""
}

// category returns the first categorical field with at most max distinct
// values, preferring names that read like categories.
func (a *analysis) category(max int) string {
	first := ""
	for _, f := range a.categorical {
		n := a.cardinality(f)
		if n == 0 || n > max {
			continue
		}
		if heuristics.IsCategoryName(f) {
			return f
		}
		if first == "" {
			first = f
		}
	}
	return first
}

// measure prefers an additive-sounding numeric field
func (a *analysis) measure() string {
	for _, f := range a.meaningful {
		if heuristics.IsMeasureName(f) {
			return f
		}
	}
	return a.meaningful[0]
}

// identifier returns an identifier-like field, or the first field
func (a *analysis) identifier() string {
	for _, f := range a.order {
		if fp, ok := a.prof.Field(f); ok && fp.IsIdentifier() && heuristics.IsIdentifierName(f) {
			return f
		}
	}
	for _, f := range a.order {
		if fp, ok := a.prof.Field(f); ok && fp.IsIdentifier() {
			return f
		}
	}
	return a.order[0]
}

func (a *analysis) distribution(field string) *profile.Distribution {
	fp, ok := a.prof.Field(field)
	if !ok {
		return nil
	}
	return fp.Distribution
}
