package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"vizrec/adapters/ingest"
	"vizrec/domain/core"
	"vizrec/domain/dataset"
	"vizrec/domain/profile"
	"vizrec/domain/record"
	"vizrec/domain/viz"
	"vizrec/internal"
	"vizrec/internal/config"
	"vizrec/internal/errors"
	"vizrec/internal/inference"
	"vizrec/internal/profiler"
	"vizrec/internal/recommend"
	"vizrec/internal/report"
	"vizrec/internal/synth"
	"vizrec/ports"
)

// Ingester streams a source into a bounded sample
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, format ingest.Format, opts ingest.Options) (*ingest.Result, error)
}

// VisualizationService orchestrates import -> profile -> recommend -> synthesize
// over stored datasets.
type VisualizationService struct {
	repo        ports.DatasetRepository
	ingester    Ingester
	inference   *inference.Engine
	profiler    *profiler.Profiler
	recommender *recommend.Engine
	synth       *synth.Synthesizer
	parallelism int
}

// NewVisualizationService wires the pure engines from configuration
func NewVisualizationService(cfg *config.Config, repo ports.DatasetRepository, ingester Ingester) *VisualizationService {
	return &VisualizationService{
		repo:        repo,
		ingester:    ingester,
		inference:   inference.NewEngine(cfg.Inference),
		profiler:    profiler.NewProfiler(cfg.Profiler),
		recommender: recommend.NewEngine(cfg.Recommend),
		synth:       synth.NewSynthesizer(cfg.Renderer),
		parallelism: 4,
	}
}

// ImportRequest describes a source to import
type ImportRequest struct {
	Name     string
	Tags     []string
	Origin   dataset.Origin
	Filename string
	// Format overrides detection from Filename
	Format  string
	OnChunk func(ingest.ChunkProgress)
}

// ImportResult is the stored dataset plus ingestion diagnostics
type ImportResult struct {
	Dataset    *dataset.Dataset      `json:"dataset"`
	Issues     []ingest.RowIssue     `json:"issues,omitempty"`
	Inferences []inference.Inference `json:"inferences"`
	RuntimeMs  int64                 `json:"runtime_ms"`
}

// Analysis is the derived view of a stored dataset
type Analysis struct {
	Dataset         *dataset.Dataset     `json:"dataset"`
	Types           record.FieldTypes    `json:"field_types"`
	Profile         *profile.Profile     `json:"profile"`
	Recommendations []viz.Recommendation `json:"recommendations"`
}

// SynthesizeRequest selects either a stored recommendation by id or an
// explicit mark and encoding.
type SynthesizeRequest struct {
	RecommendationID string       `json:"recommendation_id,omitempty"`
	Mark             viz.Mark     `json:"mark"`
	Encoding         viz.Encoding `json:"encoding"`
	Title            string       `json:"title,omitempty"`
}

// Import ingests r, infers field types and stores the dataset
func (s *VisualizationService) Import(ctx context.Context, r io.Reader, req ImportRequest) (*ImportResult, error) {
	startTime := time.Now()

	format, err := s.resolveFormat(req)
	if err != nil {
		return nil, err
	}

	res, err := s.ingester.Ingest(ctx, r, format, ingest.Options{Filename: req.Filename, OnChunk: req.OnChunk})
	if err != nil {
		return nil, err
	}

	origin := req.Origin
	if origin == "" {
		origin = dataset.OriginAPI
	}
	ds := dataset.NewDataset(strings.TrimSpace(req.Name), origin)
	ds.Tags = normalizeTags(req.Tags)
	ds.Filename = req.Filename
	ds.Format = string(res.Format)
	ds.Values = res.Sample
	ds.FieldTypes = s.inference.InferRecordSet(res.Sample)
	ds.Fingerprint = res.Fingerprint
	ds.TotalRowCount = res.TotalRowCount
	ds.IsSampled = res.IsSampled
	ds.SkippedRows = res.SkippedRows

	if err := s.repo.Put(ctx, ds); err != nil {
		return nil, errors.Wrap(err, "failed to store dataset")
	}

	internal.DefaultLogger.Info("[Import] Stored dataset %s (%s): %d rows, %d sampled, fingerprint %s",
		ds.ID, ds.GetDisplayName(), ds.TotalRowCount, ds.Values.Len(), ds.Fingerprint)

	return &ImportResult{
		Dataset:    ds,
		Issues:     res.Issues,
		Inferences: s.inference.Explain(res.Sample),
		RuntimeMs:  time.Since(startTime).Milliseconds(),
	}, nil
}

func (s *VisualizationService) resolveFormat(req ImportRequest) (ingest.Format, error) {
	if req.Format != "" {
		return ingest.ParseFormat(req.Format)
	}
	if req.Filename == "" {
		return ingest.FormatCSV, nil
	}
	return ingest.DetectFormat(req.Filename)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// List returns summaries of every stored dataset, optionally filtered by tag
func (s *VisualizationService) List(ctx context.Context, tag string) ([]dataset.Summary, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list datasets")
	}
	tag = strings.ToLower(strings.TrimSpace(tag))
	out := make([]dataset.Summary, 0, len(all))
	for _, ds := range all {
		if tag != "" && !ds.HasTag(tag) {
			continue
		}
		out = append(out, ds.Summarize())
	}
	return out, nil
}

// Get returns a stored dataset or a NOT_FOUND error
func (s *VisualizationService) Get(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	ds, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load dataset %s", id)
	}
	if ds == nil {
		return nil, errors.NotFound(fmt.Sprintf("dataset %s", id))
	}
	return ds, nil
}

// Delete removes a stored dataset
func (s *VisualizationService) Delete(ctx context.Context, id core.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "failed to delete dataset %s", id)
	}
	return nil
}

// Analyze profiles a stored dataset and ranks chart recommendations
func (s *VisualizationService) Analyze(ctx context.Context, id core.ID) (*Analysis, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.analyze(ds), nil
}

func (s *VisualizationService) analyze(ds *dataset.Dataset) *Analysis {
	types := ds.FieldTypes
	if len(types) == 0 {
		types = s.inference.InferRecordSet(ds.Values)
	}
	prof := s.profiler.Profile(ds.Values, types)
	return &Analysis{
		Dataset:         ds,
		Types:           types,
		Profile:         prof,
		Recommendations: s.recommender.Recommend(ds.Values, types, prof),
	}
}

// Profile returns the statistical profile of a stored dataset
func (s *VisualizationService) Profile(ctx context.Context, id core.ID) (*profile.Profile, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	types := ds.FieldTypes
	if len(types) == 0 {
		types = s.inference.InferRecordSet(ds.Values)
	}
	return s.profiler.Profile(ds.Values, types), nil
}

// Recommend returns the ranked recommendations for a stored dataset
func (s *VisualizationService) Recommend(ctx context.Context, id core.ID) ([]viz.Recommendation, error) {
	a, err := s.Analyze(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.Recommendations, nil
}

// Synthesize builds a renderer-ready specification over a stored dataset's sample
func (s *VisualizationService) Synthesize(ctx context.Context, id core.ID, req SynthesizeRequest) (*viz.Specification, error) {
	if req.RecommendationID == "" {
		if req.Mark.Type == "" {
			return nil, errors.InvalidInput("either recommendation_id or mark is required")
		}
		ds, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		spec := s.synth.SynthesizeMark(req.Mark, req.Encoding, ds.Values)
		spec.Title = req.Title
		return spec, nil
	}

	a, err := s.Analyze(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, rec := range a.Recommendations {
		if rec.ID == req.RecommendationID {
			spec := s.synth.FromRecommendation(rec, a.Dataset.Values)
			if req.Title != "" {
				spec.Title = req.Title
			}
			return spec, nil
		}
	}
	return nil, errors.NotFound(fmt.Sprintf("recommendation %s", req.RecommendationID))
}

// RecommendAll analyzes every stored dataset with bounded parallelism.
// The first failure cancels the remaining work.
func (s *VisualizationService) RecommendAll(ctx context.Context) (map[core.ID][]viz.Recommendation, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list datasets")
	}

	results := make([][]viz.Recommendation, len(all))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, ds := range all {
		i, ds := i, ds
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.analyze(ds).Recommendations
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &errors.AppError{Code: errors.CodeCanceled, Message: "recommendation sweep canceled", Cause: err}
	}

	out := make(map[core.ID][]viz.Recommendation, len(all))
	for i, ds := range all {
		out[ds.ID] = results[i]
	}
	return out, nil
}

// ReportFormat selects the report rendering
type ReportFormat string

const (
	ReportMarkdown ReportFormat = "markdown"
	ReportHTML     ReportFormat = "html"
)

// Report renders the analysis of a stored dataset
func (s *VisualizationService) Report(ctx context.Context, id core.ID, format ReportFormat) ([]byte, error) {
	a, err := s.Analyze(ctx, id)
	if err != nil {
		return nil, err
	}
	in := ReportInput(a)
	switch format {
	case ReportHTML:
		return report.HTML(in), nil
	case ReportMarkdown, "":
		return []byte(report.Markdown(in)), nil
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unsupported report format %q", format))
}

// ReportInput assembles the report view of an analysis
func ReportInput(a *Analysis) report.Input {
	ds := a.Dataset
	return report.Input{
		Name:            ds.GetDisplayName(),
		Fingerprint:     ds.Fingerprint,
		TotalRowCount:   ds.TotalRowCount,
		SampleSize:      ds.Values.Len(),
		IsSampled:       ds.IsSampled,
		SkippedRows:     ds.SkippedRows,
		Types:           a.Types,
		Profile:         a.Profile,
		Recommendations: a.Recommendations,
	}
}
