// Package profiler computes per-field statistics, dataset patterns and
// pairwise relationships over an immutable record set.
package profiler

import (
	"vizrec/domain/profile"
	"vizrec/domain/record"
	"vizrec/internal/config"
)

// Profiler derives a profile.Profile; it holds only configuration
type Profiler struct {
	cfg config.ProfilerConfig
}

// NewProfiler creates a profiler with the given heuristics
func NewProfiler(cfg config.ProfilerConfig) *Profiler {
	return &Profiler{cfg: cfg}
}

// Profile computes field profiles for every field and, unless the record
// set is degenerate (fewer than two rows or no quantitative field), the
// dataset patterns and relationships.
func (p *Profiler) Profile(rs record.RecordSet, types record.FieldTypes) *profile.Profile {
	order := rs.FieldNames()
	prof := &profile.Profile{
		RowCount:      rs.Len(),
		FieldOrder:    order,
		Fields:        make(map[string]profile.FieldProfile, len(order)),
		Relationships: []profile.Relationship{},
		Patterns:      profile.Patterns{Density: profile.Sparse},
	}

	for _, name := range order {
		prof.Fields[name] = p.profileField(rs, name, typeOf(types, name))
	}

	quantitative := types.Of(order, record.Quantitative)
	if rs.Len() < 2 || len(quantitative) == 0 {
		prof.Degenerate = true
		return prof
	}

	prof.Relationships = p.relationships(rs, quantitative)
	prof.Trends = p.trends(rs, types.Of(order, record.Temporal), quantitative)
	prof.Patterns = p.patterns(prof, quantitative)
	return prof
}

func typeOf(types record.FieldTypes, name string) record.FieldType {
	if t, ok := types[name]; ok {
		return t
	}
	return record.Nominal
}

// profileField counts presence and uniqueness for any field and adds the
// distribution for quantitative ones.
func (p *Profiler) profileField(rs record.RecordSet, name string, t record.FieldType) profile.FieldProfile {
	fp := profile.FieldProfile{Field: name, Type: t}
	unique := make(map[string]struct{})

	for _, row := range rs.Rows {
		v := row[name]
		if v.IsNull() {
			fp.NullCount++
			continue
		}
		fp.Count++
		unique[v.Key()] = struct{}{}
		if s, ok := v.Str(); ok && len([]rune(s)) > fp.MaxLength {
			fp.MaxLength = len([]rune(s))
		}
	}

	fp.UniqueCount = len(unique)
	if rs.Len() > 0 {
		fp.UniqueRatio = float64(fp.UniqueCount) / float64(rs.Len())
	}

	if t == record.Quantitative {
		fp.Distribution = p.distribution(rs.Numbers(name))
	}
	return fp
}
