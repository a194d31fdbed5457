package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"vizrec/domain/core"
	"vizrec/domain/dataset"
	"vizrec/domain/record"
	"vizrec/internal/errors"
	"vizrec/ports"
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// datasetRow is the table shape; JSON columns hold the sample and type map
type datasetRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Tags          []byte    `db:"tags"`
	Origin        string    `db:"origin"`
	Filename      string    `db:"filename"`
	Format        string    `db:"format"`
	Fields        []byte    `db:"fields"`
	Rows          []byte    `db:"rows"`
	FieldTypes    []byte    `db:"field_types"`
	Fingerprint   string    `db:"fingerprint"`
	TotalRowCount int       `db:"total_row_count"`
	IsSampled     bool      `db:"is_sampled"`
	SkippedRows   int       `db:"skipped_rows"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

const selectColumns = `id, name, tags, origin, filename, format, fields, rows, field_types,
	fingerprint, total_row_count, is_sampled, skipped_rows, created_at, updated_at`

func toRow(ds *dataset.Dataset) (*datasetRow, error) {
	tags := ds.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	fieldsJSON, err := json.Marshal(nonNil(ds.Values.Fields))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fields: %w", err)
	}
	rows := ds.Values.Rows
	if rows == nil {
		rows = []record.Record{}
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rows: %w", err)
	}
	typesJSON, err := json.Marshal(ds.FieldTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal field types: %w", err)
	}
	return &datasetRow{
		ID:            ds.ID.String(),
		Name:          ds.Name,
		Tags:          tagsJSON,
		Origin:        string(ds.Origin),
		Filename:      ds.Filename,
		Format:        ds.Format,
		Fields:        fieldsJSON,
		Rows:          rowsJSON,
		FieldTypes:    typesJSON,
		Fingerprint:   ds.Fingerprint,
		TotalRowCount: ds.TotalRowCount,
		IsSampled:     ds.IsSampled,
		SkippedRows:   ds.SkippedRows,
		CreatedAt:     ds.CreatedAt,
		UpdatedAt:     ds.UpdatedAt,
	}, nil
}

func (r *datasetRow) toDataset() (*dataset.Dataset, error) {
	ds := &dataset.Dataset{
		ID:            core.ID(r.ID),
		Name:          r.Name,
		Origin:        dataset.Origin(r.Origin),
		Filename:      r.Filename,
		Format:        r.Format,
		Fingerprint:   r.Fingerprint,
		TotalRowCount: r.TotalRowCount,
		IsSampled:     r.IsSampled,
		SkippedRows:   r.SkippedRows,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if err := unmarshalColumn(r.Tags, &ds.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if err := unmarshalColumn(r.Fields, &ds.Values.Fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}
	if err := unmarshalColumn(r.Rows, &ds.Values.Rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	if err := unmarshalColumn(r.FieldTypes, &ds.FieldTypes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal field types: %w", err)
	}
	if ds.Tags == nil {
		ds.Tags = []string{}
	}
	return ds, nil
}

func unmarshalColumn(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Get retrieves a dataset by its ID, or nil when it does not exist
func (r *datasetRepository) Get(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	query := `SELECT ` + selectColumns + ` FROM datasets WHERE id = $1`

	var row datasetRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.DatabaseError("failed to get dataset", err)
	}
	return row.toDataset()
}

// GetAll retrieves every dataset, newest first
func (r *datasetRepository) GetAll(ctx context.Context) ([]*dataset.Dataset, error) {
	query := `SELECT ` + selectColumns + ` FROM datasets ORDER BY created_at DESC, id`

	var rows []datasetRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.DatabaseError("failed to query datasets", err)
	}

	datasets := make([]*dataset.Dataset, 0, len(rows))
	for i := range rows {
		ds, err := rows[i].toDataset()
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

// Put inserts a dataset or replaces the one stored under the same id
func (r *datasetRepository) Put(ctx context.Context, ds *dataset.Dataset) error {
	row, err := toRow(ds)
	if err != nil {
		return err
	}

	query := `INSERT INTO datasets (` + selectColumns + `) VALUES (
		:id, :name, :tags, :origin, :filename, :format, :fields, :rows, :field_types,
		:fingerprint, :total_row_count, :is_sampled, :skipped_rows, :created_at, :updated_at
	) ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, tags = EXCLUDED.tags, origin = EXCLUDED.origin,
		filename = EXCLUDED.filename, format = EXCLUDED.format, fields = EXCLUDED.fields,
		rows = EXCLUDED.rows, field_types = EXCLUDED.field_types, fingerprint = EXCLUDED.fingerprint,
		total_row_count = EXCLUDED.total_row_count, is_sampled = EXCLUDED.is_sampled,
		skipped_rows = EXCLUDED.skipped_rows, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return errors.DatabaseError("failed to store dataset", err)
	}
	return nil
}

// Delete removes a dataset; deleting an unknown id is not an error
func (r *datasetRepository) Delete(ctx context.Context, id core.ID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, id.String()); err != nil {
		return errors.DatabaseError("failed to delete dataset", err)
	}
	return nil
}
