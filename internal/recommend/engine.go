// Package recommend turns a profiled record set into a ranked list of chart
// recommendations with draft encodings.
package recommend

import (
	"sort"
	"strings"

	"vizrec/domain/profile"
	"vizrec/domain/record"
	"vizrec/domain/viz"
	"vizrec/internal/config"
	"vizrec/internal/heuristics"
)

const (
	temporalFormat     = "%b %d, %Y"
	quantitativeFormat = ".1f"
)

// Engine evaluates the recommendation rules. It is stateless apart from
// its thresholds and safe for concurrent use.
type Engine struct {
	cfg config.RecommendConfig
}

// NewEngine creates an engine with the given thresholds
func NewEngine(cfg config.RecommendConfig) *Engine {
	if cfg.MaxRecommendations <= 0 {
		cfg.MaxRecommendations = config.DefaultRecommendConfig().MaxRecommendations
	}
	if cfg.MaxTooltipFields <= 0 {
		cfg.MaxTooltipFields = config.DefaultRecommendConfig().MaxTooltipFields
	}
	return &Engine{cfg: cfg}
}

// analysis is the per-call view of a record set the rules read from
type analysis struct {
	cfg   config.RecommendConfig
	rs    record.RecordSet
	types record.FieldTypes
	prof  *profile.Profile

	order       []string
	numeric     []string
	meaningful  []string
	categorical []string
	temporal    []string
}

type rule func(a *analysis) []viz.Recommendation

// rules in evaluation order; the order breaks confidence ties
var rules = []rule{
	strongRelationship,
	outliersByCategory,
	temporalTrend,
	denseHeatmap,
	skewedDistribution,
	categoryComparison,
	partToWhole,
	groupedHierarchy,
	multiDimensional,
	termWeights,
}

// Recommend evaluates every rule, collapses duplicates, sorts by confidence
// (rule order on ties) and keeps at most MaxRecommendations. Record sets with
// fewer than two rows, or profiles marked degenerate, yield an empty list.
func (e *Engine) Recommend(rs record.RecordSet, types record.FieldTypes, prof *profile.Profile) []viz.Recommendation {
	out := []viz.Recommendation{}
	if rs.Len() < 2 || prof == nil || prof.Degenerate {
		return out
	}

	a := e.analyze(rs, types, prof)
	seen := make(map[string]bool)
	for _, r := range rules {
		for _, rec := range r(a) {
			rec = a.finish(rec)
			if seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if len(out) > e.cfg.MaxRecommendations {
		out = out[:e.cfg.MaxRecommendations]
	}
	return out
}

func (e *Engine) analyze(rs record.RecordSet, types record.FieldTypes, prof *profile.Profile) *analysis {
	order := prof.FieldOrder
	if len(order) == 0 {
		order = rs.FieldNames()
	}
	a := &analysis{
		cfg:         e.cfg,
		rs:          rs,
		types:       types,
		prof:        prof,
		order:       order,
		numeric:     types.Of(order, record.Quantitative),
		categorical: types.Categorical(order),
		temporal:    types.Of(order, record.Temporal),
	}
	a.meaningful = a.meaningfulNumeric()
	return a
}

// meaningfulNumeric drops identifier-like numeric fields (every sampled
// value unique). When that leaves nothing, fields merely named like
// identifiers are dropped instead, and failing that all numeric fields are
// used.
func (a *analysis) meaningfulNumeric() []string {
	var unique, named []string
	for _, f := range a.numeric {
		if fp, ok := a.prof.Field(f); !ok || !fp.IsIdentifier() {
			unique = append(unique, f)
		}
		if !heuristics.IsIdentifierName(f) {
			named = append(named, f)
		}
	}
	switch {
	case len(unique) > 0:
		return unique
	case len(named) > 0:
		return named
	}
	return a.numeric
}

func (a *analysis) typeOf(field string) record.FieldType {
	return viz.FieldTypeOf(a.types, field)
}

func (a *analysis) field(name string) viz.EncodingSpec {
	return viz.Field(name, a.typeOf(name))
}

func (a *analysis) cardinality(field string) int {
	fp, _ := a.prof.Field(field)
	return fp.UniqueCount
}

// finish fills the derived parts of a candidate: mark, tooltip and ID
func (a *analysis) finish(rec viz.Recommendation) viz.Recommendation {
	rec.Mark = viz.MarkFor(rec.ChartType)
	if !rec.Encoding.Has(viz.ChannelTooltip) {
		if tip := a.tooltip(rec.Encoding); len(tip) > 0 {
			rec.Encoding[viz.ChannelTooltip] = tip
		}
	}
	rec.ID = string(rec.ChartType) + ":" + strings.Join(rec.Encoding.Fields(), ",")
	return rec
}

// tooltip lists up to MaxTooltipFields of the fields the other channels use,
// each with a readable title and a type-appropriate format.
func (a *analysis) tooltip(enc viz.Encoding) viz.ChannelDef {
	fields := enc.Fields()
	if len(fields) > a.cfg.MaxTooltipFields {
		fields = fields[:a.cfg.MaxTooltipFields]
	}
	tip := make(viz.ChannelDef, 0, len(fields))
	for _, f := range fields {
		spec := a.field(f).WithTitle(heuristics.Title(f))
		switch spec.Type {
		case record.Temporal:
			spec.Format = temporalFormat
		case record.Quantitative:
			spec.Format = quantitativeFormat
		}
		tip = append(tip, spec)
	}
	return tip
}

var defaultEngine = NewEngine(config.DefaultRecommendConfig())

// Recommend runs the default engine
func Recommend(rs record.RecordSet, types record.FieldTypes, prof *profile.Profile) []viz.Recommendation {
	return defaultEngine.Recommend(rs, types, prof)
}
