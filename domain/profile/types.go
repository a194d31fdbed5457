package profile

import (
	"sort"

	"vizrec/domain/record"
)

// Distribution contains shape statistics for a quantitative field
type Distribution struct {
	Mean         float64 `json:"mean"`
	Variance     float64 `json:"variance"`
	StdDev       float64 `json:"std_dev"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"` // non-excess; 3 for a normal distribution
	Median       float64 `json:"median"`
	Q1           float64 `json:"q1"`
	Q3           float64 `json:"q3"`
	IQR          float64 `json:"iqr"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Range        float64 `json:"range"`
	OutlierCount int     `json:"outlier_count"` // Tukey fence
}

// FieldProfile contains the per-field statistics of a record set
type FieldProfile struct {
	Field        string           `json:"field"`
	Type         record.FieldType `json:"type"`
	Count        int              `json:"count"` // non-null values
	NullCount    int              `json:"null_count"`
	UniqueCount  int              `json:"unique_count"`
	UniqueRatio  float64          `json:"unique_ratio"`
	MaxLength    int              `json:"max_length,omitempty"` // longest text value
	Distribution *Distribution    `json:"distribution,omitempty"`
}

// IsIdentifier reports whether every sampled value is present and unique.
func (fp FieldProfile) IsIdentifier() bool {
	return fp.Count > 0 && fp.NullCount == 0 && fp.UniqueCount == fp.Count
}

// Density buckets the unique-value ratio of a record set
type Density string

const (
	Sparse Density = "sparse"
	Medium Density = "medium"
	Dense  Density = "dense"
)

// Patterns are dataset-level flags derived once per record set
type Patterns struct {
	HasOutliers      bool    `json:"has_outliers"`
	HasGaps          bool    `json:"has_gaps"`
	HasTrend         bool    `json:"has_trend"`
	HasHighVariance  bool    `json:"has_high_variance"`
	HasMultiModality bool    `json:"has_multi_modality"`
	Density          Density `json:"density"`
}

// RelationType classifies a pairwise relationship
type RelationType string

const (
	Linear    RelationType = "linear"
	Nonlinear RelationType = "nonlinear"
)

// Pair is an unordered field pair; A <= B always holds.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewPair orders the two names so that (a,b) and (b,a) are the same key
func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Relationship is the Pearson-based association between two quantitative
// fields. Monotonic carries Spearman's rank coefficient for the same pairs; it
// is informational and does not affect Type.
type Relationship struct {
	Pair
	Type        RelationType `json:"type"`
	Strength    float64      `json:"strength"`    // |r|
	Coefficient float64      `json:"coefficient"` // signed r
	Monotonic   float64      `json:"monotonic"`   // signed rho
}

// Trend is a temporal drift of a quantitative field: the mean of the last
// quarter of time-ordered rows against the mean of the first quarter.
type Trend struct {
	Temporal  string  `json:"temporal"`
	Field     string  `json:"field"`
	FirstMean float64 `json:"first_mean"`
	LastMean  float64 `json:"last_mean"`
	Change    float64 `json:"change"` // relative, signed
}

// Profile is the full output of the statistical profiler
type Profile struct {
	RowCount      int                     `json:"row_count"`
	FieldOrder    []string                `json:"field_order"`
	Fields        map[string]FieldProfile `json:"fields"`
	Patterns      Patterns                `json:"patterns"`
	Relationships []Relationship          `json:"relationships"`
	Trends        []Trend                 `json:"trends,omitempty"`
	// Degenerate marks a record set with fewer than two rows or no
	// quantitative field; such a profile drives no recommendations.
	Degenerate bool `json:"degenerate"`
}

// Field returns the profile of a single field
func (p *Profile) Field(name string) (FieldProfile, bool) {
	if p == nil || p.Fields == nil {
		return FieldProfile{}, false
	}
	fp, ok := p.Fields[name]
	return fp, ok
}

// Ordered returns the field profiles in field order
func (p *Profile) Ordered() []FieldProfile {
	if p == nil {
		return nil
	}
	out := make([]FieldProfile, 0, len(p.FieldOrder))
	for _, name := range p.FieldOrder {
		if fp, ok := p.Fields[name]; ok {
			out = append(out, fp)
		}
	}
	return out
}

// Relationship looks up the relationship for an unordered pair
func (p *Profile) Relationship(a, b string) (Relationship, bool) {
	if p == nil {
		return Relationship{}, false
	}
	key := NewPair(a, b)
	for _, r := range p.Relationships {
		if r.Pair == key {
			return r, true
		}
	}
	return Relationship{}, false
}

// StrongestFirst returns the relationships ordered by strength, ties by pair name
func (p *Profile) StrongestFirst() []Relationship {
	out := append([]Relationship(nil), p.Relationships...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}
