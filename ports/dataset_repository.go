package ports

import (
	"context"

	"vizrec/domain/core"
	"vizrec/domain/dataset"
)

// DatasetRepository is the key-value persistence contract for datasets.
// Implementations give no atomicity guarantee across multiple datasets.
type DatasetRepository interface {
	// Get returns the dataset or nil when the id is unknown
	Get(ctx context.Context, id core.ID) (*dataset.Dataset, error)
	GetAll(ctx context.Context) ([]*dataset.Dataset, error)
	// Put inserts or replaces the dataset stored under ds.ID
	Put(ctx context.Context, ds *dataset.Dataset) error
	Delete(ctx context.Context, id core.ID) error
}
