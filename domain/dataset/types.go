package dataset

import (
	"time"

	"vizrec/domain/core"
	"vizrec/domain/record"
)

// Origin tells where a dataset came from
type Origin string

const (
	OriginUpload Origin = "upload"
	OriginCLI    Origin = "cli"
	OriginAPI    Origin = "api"
)

// Dataset is the persisted form of an ingested table. Values holds the
// retained sample, never the full stream.
type Dataset struct {
	ID     core.ID  `json:"id" db:"id"`
	Name   string   `json:"name" db:"name"`
	Tags   []string `json:"tags" db:"-"`
	Origin Origin   `json:"origin" db:"origin"`

	// Source file information
	Filename string `json:"filename" db:"filename"`
	Format   string `json:"format" db:"format"`

	// Ingestion outcome
	Values        record.RecordSet  `json:"values" db:"-"`
	FieldTypes    record.FieldTypes `json:"field_types" db:"-"`
	Fingerprint   string            `json:"fingerprint" db:"fingerprint"`
	TotalRowCount int               `json:"total_row_count" db:"total_row_count"`
	IsSampled     bool              `json:"is_sampled" db:"is_sampled"`
	SkippedRows   int               `json:"skipped_rows" db:"skipped_rows"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewDataset creates a new dataset with default values
func NewDataset(name string, origin Origin) *Dataset {
	now := time.Now().UTC()
	return &Dataset{
		ID:        core.NewID(),
		Name:      name,
		Origin:    origin,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetDisplayName returns the name or falls back to the original filename
func (d *Dataset) GetDisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Filename != "" {
		return d.Filename
	}
	return d.ID.String()
}

// HasTag reports whether the dataset carries a tag
func (d *Dataset) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Summary is the list view of a dataset without its values
type Summary struct {
	ID            core.ID   `json:"id"`
	Name          string    `json:"name"`
	Tags          []string  `json:"tags"`
	Origin        Origin    `json:"origin"`
	Fingerprint   string    `json:"fingerprint"`
	TotalRowCount int       `json:"total_row_count"`
	SampleRows    int       `json:"sample_rows"`
	IsSampled     bool      `json:"is_sampled"`
	CreatedAt     time.Time `json:"created_at"`
}

// Summarize returns the list view
func (d *Dataset) Summarize() Summary {
	return Summary{
		ID:            d.ID,
		Name:          d.GetDisplayName(),
		Tags:          d.Tags,
		Origin:        d.Origin,
		Fingerprint:   d.Fingerprint,
		TotalRowCount: d.TotalRowCount,
		SampleRows:    d.Values.Len(),
		IsSampled:     d.IsSampled,
		CreatedAt:     d.CreatedAt,
	}
}
