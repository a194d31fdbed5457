package recommend

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vizrec/domain/record"
	"vizrec/domain/viz"
	"vizrec/internal/config"
	"vizrec/internal/inference"
	"vizrec/internal/profiler"
)

func recommendWith(cfg config.RecommendConfig, rs record.RecordSet) []viz.Recommendation {
	types := inference.NewEngine(config.DefaultInferenceConfig()).InferRecordSet(rs)
	prof := profiler.NewProfiler(config.DefaultProfilerConfig()).Profile(rs, types)
	return NewEngine(cfg).Recommend(rs, types, prof)
}

func recommendDefault(rs record.RecordSet) []viz.Recommendation {
	return recommendWith(config.DefaultRecommendConfig(), rs)
}

func unlimited() config.RecommendConfig {
	cfg := config.DefaultRecommendConfig()
	cfg.MaxRecommendations = 50
	return cfg
}

func find(recs []viz.Recommendation, chart viz.ChartType) (viz.Recommendation, bool) {
	for _, r := range recs {
		if r.ChartType == chart {
			return r, true
		}
	}
	return viz.Recommendation{}, false
}

func linearSet() record.RecordSet {
	return record.NewRecordSet([]string{"x", "y"}, []record.Record{
		{"x": record.Number(1), "y": record.Number(2)},
		{"x": record.Number(2), "y": record.Number(4)},
		{"x": record.Number(3), "y": record.Number(6)},
	})
}

func categorySet() record.RecordSet {
	cats := []string{"a", "b", "c", "a", "b"}
	vals := []float64{10, 20, 30, 15, 25}
	rows := make([]record.Record, len(cats))
	for i := range cats {
		rows[i] = record.Record{"cat": record.Text(cats[i]), "val": record.Number(vals[i])}
	}
	return record.NewRecordSet([]string{"cat", "val"}, rows)
}

func salesSet(n int) record.RecordSet {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	regions := []string{"north", "south", "east", "west"}
	rows := make([]record.Record, n)
	for i := range rows {
		rows[i] = record.Record{
			"order_id": record.Number(float64(1000 + i)),
			"day":      record.Time(base.AddDate(0, 0, i)),
			"region":   record.Text(regions[i%len(regions)]),
			"units":    record.Number(float64(i%5 + 1)),
			"amount":   record.Number(float64(50 + i*3)),
		}
	}
	return record.NewRecordSet([]string{"order_id", "day", "region", "units", "amount"}, rows)
}

func TestLinearScenarioRecommendsScatter(t *testing.T) {
	recs := recommendDefault(linearSet())

	scatter, ok := find(recs, viz.ChartScatter)
	require.True(t, ok)
	assert.GreaterOrEqual(t, scatter.Confidence, 0.9)
	assert.Equal(t, viz.MarkPoint, scatter.Mark)

	x, _ := scatter.Encoding.Get(viz.ChannelX)
	y, _ := scatter.Encoding.Get(viz.ChannelY)
	assert.Equal(t, "x", x.Field)
	assert.Equal(t, "y", y.Field)
	assert.Equal(t, record.Quantitative, x.Type)
}

func TestCategoryScenarioRecommendsBar(t *testing.T) {
	recs := recommendDefault(categorySet())

	bar, ok := find(recs, viz.ChartBar)
	require.True(t, ok)
	assert.Equal(t, 0.9, bar.Confidence)

	x, _ := bar.Encoding.Get(viz.ChannelX)
	y, _ := bar.Encoding.Get(viz.ChannelY)
	assert.Equal(t, "cat", x.Field)
	assert.Equal(t, record.Nominal, x.Type)
	assert.Equal(t, "val", y.Field)
	assert.Equal(t, record.Quantitative, y.Type)

	pie, ok := find(recs, viz.ChartPie)
	require.True(t, ok)
	assert.False(t, pie.Encoding.Has(viz.ChannelX))
	assert.True(t, pie.Encoding.Has(viz.ChannelTheta))
}

func TestRecommendationsAreOrderedAndBounded(t *testing.T) {
	for name, rs := range map[string]record.RecordSet{
		"linear":   linearSet(),
		"category": categorySet(),
		"sales":    salesSet(60),
	} {
		t.Run(name, func(t *testing.T) {
			recs := recommendDefault(rs)
			assert.LessOrEqual(t, len(recs), 5)
			for i := 1; i < len(recs); i++ {
				assert.GreaterOrEqual(t, recs[i-1].Confidence, recs[i].Confidence)
			}
		})
	}
}

func TestTiesKeepRuleOrder(t *testing.T) {
	recs := recommendWith(unlimited(), salesSet(60))
	var order []viz.ChartType
	for _, r := range recs {
		if r.Confidence == 0.9 {
			order = append(order, r.ChartType)
		}
	}
	require.Contains(t, order, viz.ChartLine)
	require.Contains(t, order, viz.ChartBar)
	lineAt, barAt := -1, -1
	for i, c := range order {
		switch c {
		case viz.ChartLine:
			lineAt = i
		case viz.ChartBar:
			barAt = i
		}
	}
	assert.Less(t, lineAt, barAt)
}

func TestTooFewRowsYieldsEmptyList(t *testing.T) {
	empty := recommendDefault(record.RecordSet{})
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	single := recommendDefault(record.NewRecordSet([]string{"x"}, []record.Record{{"x": record.Number(1)}}))
	assert.NotNil(t, single)
	assert.Empty(t, single)
}

func TestNoNumericFieldYieldsEmptyList(t *testing.T) {
	rs := record.NewRecordSet([]string{"name"}, []record.Record{
		{"name": record.Text("a")},
		{"name": record.Text("b")},
	})
	assert.Empty(t, recommendDefault(rs))
}

func TestEveryRecommendationHasTooltip(t *testing.T) {
	recs := recommendWith(unlimited(), salesSet(60))
	require.NotEmpty(t, recs)
	for _, r := range recs {
		tip := r.Encoding[viz.ChannelTooltip]
		require.NotEmpty(t, tip, r.ID)
		assert.LessOrEqual(t, len(tip), 3, r.ID)
		for _, spec := range tip {
			assert.False(t, spec.IsPlaceholder(), r.ID)
			assert.NotEmpty(t, spec.Title, r.ID)
			switch spec.Type {
			case record.Temporal:
				assert.Equal(t, "%b %d, %Y", spec.Format)
			case record.Quantitative:
				assert.Equal(t, ".1f", spec.Format)
			}
		}
	}
}

func TestIdentifierFieldsAreNotMeasures(t *testing.T) {
	recs := recommendWith(unlimited(), salesSet(60))
	bar, ok := find(recs, viz.ChartBar)
	require.True(t, ok)
	y, _ := bar.Encoding.Get(viz.ChannelY)
	assert.NotEqual(t, "order_id", y.Field)
	assert.Equal(t, "units", y.Field)
}

func TestTrendRecommendations(t *testing.T) {
	recs := recommendWith(unlimited(), salesSet(60))

	line, ok := find(recs, viz.ChartLine)
	require.True(t, ok)
	x, _ := line.Encoding.Get(viz.ChannelX)
	assert.Equal(t, "day", x.Field)
	assert.Equal(t, record.Temporal, x.Type)

	area, ok := find(recs, viz.ChartStackedArea)
	require.True(t, ok)
	assert.Equal(t, 0.85, area.Confidence)
	y, _ := area.Encoding.Get(viz.ChannelY)
	assert.Equal(t, "sum", y.Aggregate)
	color, _ := area.Encoding.Get(viz.ChannelColor)
	assert.Equal(t, "region", color.Field)
}

func TestIDsAreUnique(t *testing.T) {
	recs := recommendWith(unlimited(), salesSet(60))
	seen := map[string]bool{}
	for _, r := range recs {
		assert.False(t, seen[r.ID], r.ID)
		seen[r.ID] = true
		assert.Equal(t, viz.MarkFor(r.ChartType), r.Mark)
	}
}

func TestLongLabelsAddHorizontalBar(t *testing.T) {
	names := []string{"Northern Territory", "Southern Highlands", "Eastern Seaboard"}
	rows := make([]record.Record, 9)
	for i := range rows {
		rows[i] = record.Record{
			"area":  record.Text(names[i%3]),
			"sales": record.Number(float64(10 + i%4)),
		}
	}
	recs := recommendWith(unlimited(), record.NewRecordSet([]string{"area", "sales"}, rows))

	h, ok := find(recs, viz.ChartHorizontalBar)
	require.True(t, ok)
	y, _ := h.Encoding.Get(viz.ChannelY)
	assert.Equal(t, "area", y.Field)
}

func TestSecondCategoryAddsGroupedBar(t *testing.T) {
	rows := make([]record.Record, 12)
	for i := range rows {
		rows[i] = record.Record{
			"region":  record.Text([]string{"n", "s", "e"}[i%3]),
			"segment": record.Text([]string{"retail", "online"}[i%2]),
			"revenue": record.Number(float64(100 + i%5)),
		}
	}
	recs := recommendWith(unlimited(), record.NewRecordSet([]string{"region", "segment", "revenue"}, rows))

	g, ok := find(recs, viz.ChartGroupedBar)
	require.True(t, ok)
	assert.Equal(t, 0.8, g.Confidence)
	assert.True(t, g.Encoding.Has(viz.ChannelXOffset))
}

func TestSkewedFieldAddsHistogram(t *testing.T) {
	values := []float64{1, 1, 1, 2, 1, 2, 1, 1, 3, 1, 2, 1, 40, 1, 2, 1}
	rows := make([]record.Record, len(values))
	for i, v := range values {
		rows[i] = record.Record{"latency": record.Number(v)}
	}
	recs := recommendWith(unlimited(), record.NewRecordSet([]string{"latency"}, rows))

	h, ok := find(recs, viz.ChartHistogram)
	require.True(t, ok)
	x, _ := h.Encoding.Get(viz.ChannelX)
	require.NotNil(t, x.Bin)
	y, _ := h.Encoding.Get(viz.ChannelY)
	assert.Equal(t, "count", y.Aggregate)
}

func TestWordCloudForTermsAndWeights(t *testing.T) {
	rows := make([]record.Record, 8)
	for i := range rows {
		rows[i] = record.Record{
			"word":  record.Text(fmt.Sprintf("term%d", i)),
			"count": record.Number(float64(i%3 + 1)),
		}
	}
	recs := recommendWith(unlimited(), record.NewRecordSet([]string{"word", "count"}, rows))

	wc, ok := find(recs, viz.ChartWordCloud)
	require.True(t, ok)
	assert.Equal(t, viz.MarkWordCloud, wc.Mark)
}

// storeSet has a store field with 20 distinct names, above the category
// cap used by bar charts.
func storeSet(withTrend bool) record.RecordSet {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]record.Record, 40)
	for i := range rows {
		amount := float64(10 + i%3)
		if withTrend {
			amount = float64(10 + i/2)
		} else if i == 0 {
			amount = 1000
		}
		rows[i] = record.Record{
			"day":    record.Time(base.AddDate(0, 0, i)),
			"store":  record.Text(fmt.Sprintf("store_%02d", i%20)),
			"amount": record.Number(amount),
		}
	}
	return record.NewRecordSet([]string{"day", "store", "amount"}, rows)
}

func denseSet() record.RecordSet {
	rows := make([]record.Record, 50)
	for i := range rows {
		rows[i] = record.Record{
			"x": record.Number(float64(i)),
			"y": record.Number(float64((i * 37) % 50)),
		}
	}
	return record.NewRecordSet([]string{"x", "y"}, rows)
}

func groupSet() record.RecordSet {
	groups := []string{"a", "b", "c"}
	rows := make([]record.Record, 12)
	for i := range rows {
		rows[i] = record.Record{
			"group": record.Text(groups[i%3]),
			"sales": record.Number(float64(10*(i%4) + 5)),
		}
	}
	return record.NewRecordSet([]string{"group", "sales"}, rows)
}

func measuresSet() record.RecordSet {
	rows := make([]record.Record, 10)
	for i := range rows {
		rows[i] = record.Record{
			"id": record.Number(float64(i + 1)),
			"a":  record.Number(float64(i % 3)),
			"b":  record.Number(float64(i % 4)),
			"c":  record.Number(float64(i % 5)),
		}
	}
	return record.NewRecordSet([]string{"id", "a", "b", "c"}, rows)
}

func TestRuleTriggers(t *testing.T) {
	tests := []struct {
		name  string
		rs    record.RecordSet
		chart viz.ChartType
		conf  float64
		check func(t *testing.T, enc viz.Encoding)
	}{
		{
			name:  "outliers with a wide category",
			rs:    storeSet(false),
			chart: viz.ChartBoxplot,
			conf:  0.85,
			check: func(t *testing.T, enc viz.Encoding) {
				x, _ := enc.Get(viz.ChannelX)
				y, _ := enc.Get(viz.ChannelY)
				color, _ := enc.Get(viz.ChannelColor)
				assert.Equal(t, "store", x.Field)
				assert.Equal(t, record.Nominal, x.Type)
				assert.Equal(t, "amount", y.Field)
				assert.Equal(t, "store", color.Field)
			},
		},
		{
			name:  "trend with a wide category",
			rs:    storeSet(true),
			chart: viz.ChartStackedArea,
			conf:  0.85,
			check: func(t *testing.T, enc viz.Encoding) {
				x, _ := enc.Get(viz.ChannelX)
				y, _ := enc.Get(viz.ChannelY)
				color, _ := enc.Get(viz.ChannelColor)
				assert.Equal(t, "day", x.Field)
				assert.Equal(t, "amount", y.Field)
				assert.Equal(t, "sum", y.Aggregate)
				assert.Equal(t, "store", color.Field)
			},
		},
		{
			name:  "dense numeric pair",
			rs:    denseSet(),
			chart: viz.ChartHeatmap,
			conf:  0.8,
			check: func(t *testing.T, enc viz.Encoding) {
				x, _ := enc.Get(viz.ChannelX)
				y, _ := enc.Get(viz.ChannelY)
				color, _ := enc.Get(viz.ChannelColor)
				assert.Equal(t, "x", x.Field)
				assert.NotNil(t, x.Bin)
				assert.Equal(t, "y", y.Field)
				assert.NotNil(t, y.Bin)
				assert.Equal(t, "count", color.Aggregate)
			},
		},
		{
			name:  "grouping name",
			rs:    groupSet(),
			chart: viz.ChartBubble,
			conf:  0.7,
			check: func(t *testing.T, enc viz.Encoding) {
				x, _ := enc.Get(viz.ChannelX)
				size, _ := enc.Get(viz.ChannelSize)
				assert.Equal(t, "group", x.Field)
				assert.Equal(t, "sales", size.Field)
				assert.Equal(t, "sum", size.Aggregate)
			},
		},
		{
			name:  "three measures",
			rs:    measuresSet(),
			chart: viz.ChartParallel,
			conf:  0.6,
			check: func(t *testing.T, enc viz.Encoding) {
				detail, _ := enc.Get(viz.ChannelDetail)
				assert.Equal(t, "id", detail.Field)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := find(recommendWith(unlimited(), tt.rs), tt.chart)
			require.True(t, ok, "expected %s", tt.chart)
			assert.Equal(t, tt.conf, rec.Confidence)
			tt.check(t, rec.Encoding)
		})
	}
}

func TestWideCategoryStillSkipsBar(t *testing.T) {
	recs := recommendWith(unlimited(), storeSet(false))
	_, ok := find(recs, viz.ChartBar)
	assert.False(t, ok)
}
