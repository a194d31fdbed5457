package ingest

import (
	"context"

	"vizrec/domain/record"
	"vizrec/internal"
	"vizrec/internal/config"
)

// ChunkProgress is reported after every parsed chunk
type ChunkProgress struct {
	Chunk         int  `json:"chunk"`
	RowsProcessed int  `json:"rows_processed"`
	SkippedRows   int  `json:"skipped_rows"`
	Retained      int  `json:"retained"`
	Sampling      bool `json:"sampling"`
}

// collector accumulates the rows of one logical table: the retained
// sample, the fingerprint sub-sample, counters and the header set.
type collector struct {
	ctx     context.Context
	cfg     config.IngestConfig
	onChunk func(ChunkProgress)

	sample *reservoir
	prints *reservoir

	total   int
	skipped int
	issues  []RowIssue

	fields       []string
	fieldSet     map[string]bool
	fieldsFrozen bool

	inChunk int
	chunks  int
}

func (p *Pipeline) newCollector(ctx context.Context, opts Options) *collector {
	return &collector{
		ctx:      ctx,
		cfg:      p.cfg,
		onChunk:  opts.OnChunk,
		sample:   newReservoir(p.cfg.MaxRowsToKeep, p.cfg.MaxChunkCollect, p.rng.SeededStream("ingest.sample", p.cfg.Seed)),
		prints:   newReservoir(p.cfg.FingerprintSampleSize, p.cfg.FingerprintSampleSize, p.rng.SeededStream("ingest.fingerprint", p.cfg.Seed)),
		fieldSet: make(map[string]bool),
	}
}

// setFields fixes the header for sources that declare one up front
func (c *collector) setFields(fields []string) {
	c.fields = append([]string(nil), fields...)
	for _, f := range fields {
		c.fieldSet[f] = true
	}
	c.fieldsFrozen = true
}

// observe extends the header with keys first seen in the opening chunk
func (c *collector) observe(keys []string) {
	for _, k := range keys {
		if !c.fieldSet[k] {
			c.fieldSet[k] = true
			c.fields = append(c.fields, k)
		}
	}
}

// add counts a valid row; a non-nil error means the caller must stop
func (c *collector) add(row record.Record, keys []string) error {
	if !c.fieldsFrozen {
		c.observe(keys)
	}

	c.total++
	if c.sample.offer(row) {
		internal.DefaultLogger.Debug("[Ingest] Collected %d rows, switching to reservoir sampling (keeping %d)",
			c.total, c.cfg.MaxRowsToKeep)
	}
	c.prints.offer(row)

	c.inChunk++
	if c.inChunk >= c.cfg.ChunkRows {
		return c.endChunk()
	}
	return nil
}

// skip records a malformed row without aborting
func (c *collector) skip(issue RowIssue) {
	c.skipped++
	if len(c.issues) < c.cfg.MaxIssues {
		c.issues = append(c.issues, issue)
	}
}

// row is the 1-based position of the next row, counting skipped rows
func (c *collector) row() int {
	return c.total + c.skipped + 1
}

func (c *collector) endChunk() error {
	if c.inChunk > 0 {
		c.chunks++
		c.inChunk = 0
		if len(c.fields) > 0 {
			c.fieldsFrozen = true
		}
		if c.onChunk != nil {
			c.onChunk(ChunkProgress{
				Chunk:         c.chunks,
				RowsProcessed: c.total,
				SkippedRows:   c.skipped,
				Retained:      len(c.sample.rows),
				Sampling:      c.sample.sampling,
			})
		}
	}
	return c.ctx.Err()
}

// finish closes the trailing partial chunk and builds the result
func (c *collector) finish() (*Result, error) {
	if err := c.endChunk(); err != nil {
		return nil, err
	}

	rows := c.sample.result()
	return &Result{
		Sample:        record.NewRecordSet(c.fields, rows),
		TotalRowCount: c.total,
		Fingerprint:   fingerprint(c.fields, c.total, c.prints.result()),
		IsSampled:     len(rows) < c.total,
		SkippedRows:   c.skipped,
		Issues:        c.issues,
		Chunks:        c.chunks,
	}, nil
}
