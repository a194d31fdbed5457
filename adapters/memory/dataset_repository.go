// Package memory holds in-process repository implementations used when no
// database is configured, and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"vizrec/domain/core"
	"vizrec/domain/dataset"
	"vizrec/domain/record"
	"vizrec/ports"
)

type datasetRepository struct {
	mu       sync.RWMutex
	datasets map[core.ID]*dataset.Dataset
}

// NewDatasetRepository creates an empty in-memory dataset repository
func NewDatasetRepository() ports.DatasetRepository {
	return &datasetRepository{datasets: make(map[core.ID]*dataset.Dataset)}
}

// Get returns a copy of the stored dataset, or nil
func (r *datasetRepository) Get(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.datasets[id]
	if !ok {
		return nil, nil
	}
	return clone(ds), nil
}

// GetAll returns every dataset, newest first
func (r *datasetRepository) GetAll(ctx context.Context) ([]*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]*dataset.Dataset, 0, len(r.datasets))
	for _, ds := range r.datasets {
		out = append(out, clone(ds))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Put stores a copy of the dataset under its id
func (r *datasetRepository) Put(ctx context.Context, ds *dataset.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datasets[ds.ID] = clone(ds)
	return nil
}

func (r *datasetRepository) Delete(ctx context.Context, id core.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.datasets, id)
	return nil
}

// clone copies the mutable slices and maps; record values are immutable
func clone(ds *dataset.Dataset) *dataset.Dataset {
	c := *ds
	c.Tags = append([]string{}, ds.Tags...)
	c.Values.Fields = append([]string(nil), ds.Values.Fields...)
	c.Values.Rows = append(ds.Values.Rows[:0:0], ds.Values.Rows...)
	if ds.FieldTypes != nil {
		c.FieldTypes = make(map[string]record.FieldType, len(ds.FieldTypes))
		for k, v := range ds.FieldTypes {
			c.FieldTypes[k] = v
		}
	}
	return &c
}
