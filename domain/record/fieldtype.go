package record

import "sort"

// FieldType is the semantic classification of a field
type FieldType string

const (
	Quantitative FieldType = "quantitative"
	Temporal     FieldType = "temporal"
	Nominal      FieldType = "nominal"
	Ordinal      FieldType = "ordinal"
	Hierarchical FieldType = "hierarchical"
)

// IsCategorical reports whether the type is a discrete category
func (t FieldType) IsCategorical() bool {
	return t == Nominal || t == Ordinal
}

// Valid reports whether t is one of the known types
func (t FieldType) Valid() bool {
	switch t {
	case Quantitative, Temporal, Nominal, Ordinal, Hierarchical:
		return true
	}
	return false
}

// FieldTypes maps field names to their classification
type FieldTypes map[string]FieldType

// Of returns the names with the given type, ordered by the supplied field order.
func (ft FieldTypes) Of(order []string, t FieldType) []string {
	var out []string
	for _, name := range order {
		if ft[name] == t {
			out = append(out, name)
		}
	}
	return out
}

// Categorical returns nominal and ordinal names in field order
func (ft FieldTypes) Categorical(order []string) []string {
	var out []string
	for _, name := range order {
		if ft[name].IsCategorical() {
			out = append(out, name)
		}
	}
	return out
}

// Names returns the field names sorted
func (ft FieldTypes) Names() []string {
	out := make([]string, 0, len(ft))
	for k := range ft {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
