package synth

import (
	"vizrec/domain/record"
	"vizrec/internal/heuristics"
)

// columns summarizes the value kinds of each field, in field order
type columns struct {
	order   []string
	numeric map[string]bool
	unique  map[string]bool
	kinds   map[string]record.Kind
}

func newColumns(rs record.RecordSet) columns {
	c := columns{
		order:   rs.FieldNames(),
		numeric: make(map[string]bool),
		unique:  make(map[string]bool),
		kinds:   make(map[string]record.Kind),
	}
	for _, f := range c.order {
		var kind record.Kind
		mixed, nulls := false, 0
		seen := make(map[string]struct{}, rs.Len())
		for _, row := range rs.Rows {
			v := row[f]
			if v.IsNull() {
				nulls++
				continue
			}
			seen[v.Key()] = struct{}{}
			if kind == record.KindNull {
				kind = v.Kind()
			} else if kind != v.Kind() {
				mixed = true
			}
		}
		if mixed {
			kind = record.KindText
		}
		c.kinds[f] = kind
		c.numeric[f] = kind == record.KindNumber
		c.unique[f] = nulls == 0 && len(seen) > 0 && len(seen) == rs.Len()
	}
	return c
}

// typeOf maps a column's value kind onto a field type
func (c columns) typeOf(field string) record.FieldType {
	switch c.kinds[field] {
	case record.KindNumber:
		return record.Quantitative
	case record.KindTime:
		return record.Temporal
	}
	return record.Nominal
}

// first returns the first field satisfying pred, or ""
func (c columns) first(pred func(string) bool) string {
	for _, f := range c.order {
		if pred(f) {
			return f
		}
	}
	return ""
}

func (c columns) isNumeric(f string) bool { return c.numeric[f] }

// identifier returns a field whose values are all present and distinct,
// preferring identifier names, falling back to the first field.
func (c columns) identifier() string {
	if f := c.first(func(f string) bool { return c.unique[f] && heuristics.IsIdentifierName(f) }); f != "" {
		return f
	}
	if f := c.first(func(f string) bool { return c.unique[f] }); f != "" {
		return f
	}
	if len(c.order) > 0 {
		return c.order[0]
	}
	return ""
}
