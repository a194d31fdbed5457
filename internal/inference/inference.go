// Package inference classifies the fields of a sampled record set into
// visualization field types.
package inference

import (
	"vizrec/domain/record"
	"vizrec/internal/config"
	"vizrec/internal/heuristics"
)

// Rule names the inference rule that decided a field's type
type Rule string

const (
	RuleNumeric      Rule = "numeric"
	RuleRelationship Rule = "relationship_name"
	RuleDate         Rule = "date"
	RuleLowCardinal  Rule = "low_cardinality"
	RuleHighCardinal Rule = "high_cardinality"
	RuleBoolean      Rule = "boolean"
	RuleNoValues     Rule = "no_values"
)

// Inference is the decision for one field
type Inference struct {
	Field       string           `json:"field"`
	Type        record.FieldType `json:"type"`
	Rule        Rule             `json:"rule"`
	UniqueCount int              `json:"unique_count"`
}

// Engine infers field types from sample rows. It holds no state between
// calls and the result depends only on the sample.
type Engine struct {
	cfg config.InferenceConfig
}

// NewEngine creates an engine; a non-positive ratio falls back to the default
func NewEngine(cfg config.InferenceConfig) *Engine {
	if cfg.OrdinalCardinalityRatio <= 0 {
		cfg = config.DefaultInferenceConfig()
	}
	return &Engine{cfg: cfg}
}

// InferTypes classifies every field of the first row, scanning all rows
func (e *Engine) InferTypes(rows []record.Record) record.FieldTypes {
	if len(rows) == 0 {
		return record.FieldTypes{}
	}
	return e.infer(rows[0].Keys(), rows)
}

// InferRecordSet classifies the fields of a record set in header order
func (e *Engine) InferRecordSet(rs record.RecordSet) record.FieldTypes {
	if rs.Len() == 0 {
		return record.FieldTypes{}
	}
	return e.infer(rs.FieldNames(), rs.Rows)
}

func (e *Engine) infer(fields []string, rows []record.Record) record.FieldTypes {
	types := make(record.FieldTypes, len(fields))
	for _, f := range e.explain(fields, rows) {
		types[f.Field] = f.Type
	}
	return types
}

// Explain returns the per-field decisions with the rule that fired, in
// field order.
func (e *Engine) Explain(rs record.RecordSet) []Inference {
	if rs.Len() == 0 {
		return nil
	}
	return e.explain(rs.FieldNames(), rs.Rows)
}

func (e *Engine) explain(fields []string, rows []record.Record) []Inference {
	out := make([]Inference, 0, len(fields))
	for _, field := range fields {
		out = append(out, e.classify(field, rows))
	}
	return out
}

// classify applies the rules in priority order against the non-null values
func (e *Engine) classify(field string, rows []record.Record) Inference {
	var (
		nonNull, numbers, dates, bools int
		unique                         = make(map[string]struct{})
	)
	for _, row := range rows {
		v := row[field]
		if v.IsNull() {
			continue
		}
		nonNull++
		unique[v.Key()] = struct{}{}

		switch v.Kind() {
		case record.KindNumber:
			numbers++
		case record.KindTime:
			dates++
		case record.KindBool:
			bools++
		case record.KindText:
			s, _ := v.Str()
			if _, ok := record.ParseTimestamp(s); ok {
				dates++
			}
		}
	}

	res := Inference{Field: field, UniqueCount: len(unique)}
	switch {
	case nonNull == 0:
		res.Type, res.Rule = record.Nominal, RuleNoValues
	case numbers == nonNull:
		res.Type, res.Rule = record.Quantitative, RuleNumeric
	case heuristics.IsRelationshipName(field):
		res.Type, res.Rule = record.Hierarchical, RuleRelationship
	case dates == nonNull:
		res.Type, res.Rule = record.Temporal, RuleDate
	case bools == nonNull:
		res.Type, res.Rule = record.Nominal, RuleBoolean
	case float64(len(unique)) < e.cfg.OrdinalCardinalityRatio*float64(len(rows)):
		res.Type, res.Rule = record.Ordinal, RuleLowCardinal
	default:
		res.Type, res.Rule = record.Nominal, RuleHighCardinal
	}
	return res
}

var defaultEngine = NewEngine(config.DefaultInferenceConfig())

// InferTypes classifies rows with the default cardinality ratio
func InferTypes(rows []record.Record) record.FieldTypes {
	return defaultEngine.InferTypes(rows)
}
