// Package ingest streams tabular files into a bounded, uniformly sampled
// record set with an exact row count and a content fingerprint.
package ingest

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"vizrec/domain/record"
	"vizrec/internal"
	"vizrec/internal/config"
	"vizrec/internal/errors"
	"vizrec/ports"
)

// Result is the outcome of a successful ingestion
type Result struct {
	Sample        record.RecordSet
	TotalRowCount int
	Fingerprint   string
	IsSampled     bool
	SkippedRows   int
	Issues        []RowIssue
	Format        Format
	Chunks        int
}

// Options carries per-call settings
type Options struct {
	Filename string
	// OnChunk, when set, is called synchronously after every parsed chunk
	OnChunk func(ChunkProgress)
}

// Outcome is delivered by Start
type Outcome struct {
	Result *Result
	Err    error
}

// Pipeline parses files chunk by chunk without holding more than
// MaxChunkCollect rows in memory.
type Pipeline struct {
	cfg config.IngestConfig
	rng ports.RNGPort
}

// NewPipeline creates a pipeline; non-positive bounds fall back to defaults
func NewPipeline(cfg config.IngestConfig, rng ports.RNGPort) *Pipeline {
	def := config.DefaultIngestConfig()
	if cfg.MaxRowsToKeep <= 0 {
		cfg.MaxRowsToKeep = def.MaxRowsToKeep
	}
	if cfg.MaxChunkCollect < cfg.MaxRowsToKeep {
		cfg.MaxChunkCollect = cfg.MaxRowsToKeep
	}
	if cfg.ChunkRows <= 0 {
		cfg.ChunkRows = def.ChunkRows
	}
	if cfg.FingerprintSampleSize <= 0 {
		cfg.FingerprintSampleSize = def.FingerprintSampleSize
	}
	if cfg.MaxIssues <= 0 {
		cfg.MaxIssues = def.MaxIssues
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = def.Delimiter
	}
	return &Pipeline{cfg: cfg, rng: rng}
}

// Ingest parses r in the given format. It fails with an *IngestError when
// the stream is unparseable or yields no rows, and with a CANCELED error
// when ctx is done between chunks; no partial result is returned.
func (p *Pipeline) Ingest(ctx context.Context, r io.Reader, format Format, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	start := time.Now()
	var (
		c   *collector
		err error
	)
	switch format {
	case FormatCSV:
		c = p.newCollector(ctx, opts)
		err = readDelimited(c, r, []rune(p.cfg.Delimiter)[0])
	case FormatTSV:
		c = p.newCollector(ctx, opts)
		err = readDelimited(c, r, '\t')
	case FormatNDJSON:
		c = p.newCollector(ctx, opts)
		err = readNDJSON(c, r)
	case FormatXLSX:
		c = p.newCollector(ctx, opts)
		err = readXLSX(c, r)
	case FormatJSON:
		c, err = p.readJSON(ctx, r, opts)
	default:
		return nil, errors.InvalidInput("unsupported format: " + string(format))
	}
	if err != nil {
		return nil, p.fail(err, c, format, opts)
	}

	res, err := c.finish()
	if err != nil {
		return nil, p.fail(err, c, format, opts)
	}
	if res.TotalRowCount == 0 {
		return nil, p.fail(emptyError(nil), c, format, opts)
	}
	res.Format = format

	internal.DefaultLogger.Info("[Ingest] %s: %d rows (%d retained, %d skipped) in %d chunks, %.2fms",
		displayName(opts.Filename), res.TotalRowCount, res.Sample.Len(), res.SkippedRows,
		res.Chunks, float64(time.Since(start).Nanoseconds())/1e6)

	return res, nil
}

// IngestBytes parses an in-memory payload
func (p *Pipeline) IngestBytes(ctx context.Context, data []byte, format Format, opts Options) (*Result, error) {
	return p.Ingest(ctx, bytes.NewReader(data), format, opts)
}

// IngestFile opens path and detects its format from the extension
func (p *Pipeline) IngestFile(ctx context.Context, path string, opts Options) (*Result, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	if opts.Filename == "" {
		opts.Filename = filepath.Base(path)
	}
	return p.Ingest(ctx, f, format, opts)
}

// Start runs Ingest in the background. The channel receives exactly one
// Outcome and is then closed.
func (p *Pipeline) Start(ctx context.Context, r io.Reader, format Format, opts Options) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		res, err := p.Ingest(ctx, r, format, opts)
		ch <- Outcome{Result: res, Err: err}
	}()
	return ch
}

// fail attaches the progress so far to an ingestion error
func (p *Pipeline) fail(err error, c *collector, format Format, opts Options) error {
	if ctxErr := ctxError(err); ctxErr != nil {
		internal.DefaultLogger.Info("[Ingest] %s: canceled", displayName(opts.Filename))
		return canceled(ctxErr)
	}

	var ie *IngestError
	if !errors.As(err, &ie) {
		return errors.Wrap(err, "ingestion failed")
	}
	ie.Filename = opts.Filename
	ie.Format = format
	if c != nil {
		ie.RowsProcessed = c.total
		ie.SkippedRows = c.skipped
		ie.Fields = append([]string(nil), c.fields...)
	}
	internal.DefaultLogger.Warn("[Ingest] %v", ie)
	return ie
}

func ctxError(err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return nil
}

func canceled(cause error) error {
	return &errors.AppError{Code: errors.CodeCanceled, Message: "ingestion canceled", Cause: cause}
}

func displayName(filename string) string {
	if filename == "" {
		return "<stream>"
	}
	return filename
}
