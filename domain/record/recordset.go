package record

import (
	"fmt"
	"sort"
	"strings"
)

// Record maps field names to cell values
type Record map[string]Value

// Keys returns the record's field names sorted
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RecordSet is an ordered table of records. Fields preserves the column
// order reported by the source (header order); rows may omit or add keys
// until the set is validated.
type RecordSet struct {
	Fields []string `json:"fields"`
	Rows   []Record `json:"rows"`
}

// NewRecordSet builds a record set over the given rows
func NewRecordSet(fields []string, rows []Record) RecordSet {
	return RecordSet{Fields: append([]string(nil), fields...), Rows: rows}
}

// Len returns the number of rows
func (rs RecordSet) Len() int { return len(rs.Rows) }

// FieldNames enumerates the fields of the first record, in header order
// where known and alphabetically for any remaining keys.
func (rs RecordSet) FieldNames() []string {
	if len(rs.Rows) == 0 {
		return append([]string(nil), rs.Fields...)
	}
	first := rs.Rows[0]
	seen := make(map[string]bool, len(first))
	names := make([]string, 0, len(first))
	for _, f := range rs.Fields {
		if _, ok := first[f]; ok && !seen[f] {
			names = append(names, f)
			seen[f] = true
		}
	}
	for _, k := range first.Keys() {
		if !seen[k] {
			names = append(names, k)
		}
	}
	return names
}

// Column returns every value of a field, Null where a row lacks it
func (rs RecordSet) Column(field string) []Value {
	out := make([]Value, len(rs.Rows))
	for i, row := range rs.Rows {
		out[i] = row[field]
	}
	return out
}

// Numbers returns the non-null numeric values of a field
func (rs RecordSet) Numbers(field string) []float64 {
	out := make([]float64, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		if f, ok := row[field].Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Values returns the rows as plain maps, the shape renderers expect
// for inline data.
func (rs RecordSet) Values() []map[string]interface{} {
	out := make([]map[string]interface{}, len(rs.Rows))
	for i, row := range rs.Rows {
		m := make(map[string]interface{}, len(row))
		for k, v := range row {
			m[k] = v
		}
		out[i] = m
	}
	return out
}

// Validate checks that every record carries an identical sorted key set.
func Validate(rs RecordSet) error {
	if len(rs.Rows) == 0 {
		return nil
	}
	want := strings.Join(rs.Rows[0].Keys(), "\x00")
	for i, row := range rs.Rows[1:] {
		if got := strings.Join(row.Keys(), "\x00"); got != want {
			return fmt.Errorf("record %d has fields [%s], expected [%s]",
				i+1, strings.Join(row.Keys(), ", "), strings.Join(rs.Rows[0].Keys(), ", "))
		}
	}
	return nil
}

// Normalize returns a new record set whose rows all carry exactly the
// declared fields: missing keys become Null and undeclared keys are dropped.
// When Fields is empty the first record's keys are used.
func Normalize(rs RecordSet) RecordSet {
	fields := rs.Fields
	if len(fields) == 0 {
		fields = rs.FieldNames()
	}
	rows := make([]Record, len(rs.Rows))
	for i, row := range rs.Rows {
		out := make(Record, len(fields))
		for _, f := range fields {
			out[f] = row[f]
		}
		rows[i] = out
	}
	return NewRecordSet(fields, rows)
}
