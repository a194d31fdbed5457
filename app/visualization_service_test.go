package app

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vizrec/adapters/ingest"
	"vizrec/adapters/memory"
	"vizrec/adapters/rng"
	"vizrec/domain/core"
	"vizrec/domain/dataset"
	"vizrec/domain/record"
	"vizrec/domain/viz"
	"vizrec/internal"
	"vizrec/internal/config"
	"vizrec/internal/errors"
	"vizrec/ports"
)

type MockDatasetRepository struct {
	mock.Mock
}

func (m *MockDatasetRepository) Get(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	args := m.Called(ctx, id)
	ds, _ := args.Get(0).(*dataset.Dataset)
	return ds, args.Error(1)
}

func (m *MockDatasetRepository) GetAll(ctx context.Context) ([]*dataset.Dataset, error) {
	args := m.Called(ctx)
	all, _ := args.Get(0).([]*dataset.Dataset)
	return all, args.Error(1)
}

func (m *MockDatasetRepository) Put(ctx context.Context, ds *dataset.Dataset) error {
	return m.Called(ctx, ds).Error(0)
}

func (m *MockDatasetRepository) Delete(ctx context.Context, id core.ID) error {
	return m.Called(ctx, id).Error(0)
}

func newService(repo ports.DatasetRepository) *VisualizationService {
	cfg := config.Default()
	return NewVisualizationService(cfg, repo, ingest.NewPipeline(cfg.Ingest, rng.NewAdapter()))
}

func linearCSV(n int) string {
	var b strings.Builder
	b.WriteString("x,y,region\n")
	regions := []string{"north", "south", "east"}
	for i := 0; i < n; i++ {
		b.WriteString(fmt.Sprintf("%d,%d,%s\n", i, 2*i+1, regions[i%3]))
	}
	return b.String()
}

func importLinear(t *testing.T, svc *VisualizationService) *dataset.Dataset {
	t.Helper()
	res, err := svc.Import(context.Background(), strings.NewReader(linearCSV(30)), ImportRequest{
		Name:     "linear",
		Tags:     []string{" Demo ", "demo", ""},
		Filename: "linear.csv",
	})
	require.NoError(t, err)
	return res.Dataset
}

func TestImportStoresDataset(t *testing.T) {
	svc := newService(memory.NewDatasetRepository())

	var chunks int
	res, err := svc.Import(context.Background(), strings.NewReader(linearCSV(30)), ImportRequest{
		Name:     "linear",
		Tags:     []string{" Demo ", "demo", ""},
		Filename: "linear.csv",
		OnChunk:  func(ingest.ChunkProgress) { chunks++ },
	})
	require.NoError(t, err)

	ds := res.Dataset
	assert.Equal(t, "linear", ds.Name)
	assert.Equal(t, []string{"demo"}, ds.Tags)
	assert.Equal(t, dataset.OriginAPI, ds.Origin)
	assert.Equal(t, "csv", ds.Format)
	assert.Equal(t, 30, ds.TotalRowCount)
	assert.False(t, ds.IsSampled)
	assert.Len(t, ds.Fingerprint, 16)
	assert.Equal(t, record.Quantitative, ds.FieldTypes["x"])
	assert.Equal(t, record.Ordinal, ds.FieldTypes["region"])
	assert.Len(t, res.Inferences, 3)
	assert.Equal(t, 1, chunks)

	stored, err := svc.Get(context.Background(), ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.Fingerprint, stored.Fingerprint)
}

func TestImportLogRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevLevel := log.Writer(), internal.DefaultLogger.Level()
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		internal.DefaultLogger.SetLevel(prevLevel)
	})
	svc := newService(memory.NewDatasetRepository())

	internal.DefaultLogger.SetLevel(internal.LogLevelWarn)
	_, err := svc.Import(context.Background(), strings.NewReader(linearCSV(5)), ImportRequest{Filename: "quiet.csv"})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "[Import]")

	internal.DefaultLogger.SetLevel(internal.LogLevelInfo)
	_, err = svc.Import(context.Background(), strings.NewReader(linearCSV(5)), ImportRequest{Filename: "loud.csv"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[Import] Stored dataset")
}

func TestImportFormatOverride(t *testing.T) {
	svc := newService(memory.NewDatasetRepository())
	res, err := svc.Import(context.Background(), strings.NewReader(`[{"a":1},{"a":2}]`), ImportRequest{
		Filename: "upload.bin",
		Format:   "json",
	})
	require.NoError(t, err)
	assert.Equal(t, "json", res.Dataset.Format)
	assert.Equal(t, "upload.bin", res.Dataset.GetDisplayName())
}

func TestImportPropagatesIngestErrors(t *testing.T) {
	repo := new(MockDatasetRepository)
	svc := newService(repo)

	_, err := svc.Import(context.Background(), strings.NewReader("a,b\n"), ImportRequest{Filename: "empty.csv"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ingest.ErrEmptyData))
	assert.Equal(t, errors.CodeEmptyData, errors.GetCode(err))
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestImportUnknownExtension(t *testing.T) {
	svc := newService(memory.NewDatasetRepository())
	_, err := svc.Import(context.Background(), strings.NewReader("a\n1\n"), ImportRequest{Filename: "notes.txt"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestImportStoreFailure(t *testing.T) {
	repo := new(MockDatasetRepository)
	repo.On("Put", mock.Anything, mock.Anything).Return(errors.DatabaseError("insert failed", stderrors.New("boom")))
	svc := newService(repo)

	_, err := svc.Import(context.Background(), strings.NewReader(linearCSV(5)), ImportRequest{Filename: "a.csv"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	repo.AssertExpectations(t)
}

func TestGetAndDeleteUnknownDataset(t *testing.T) {
	svc := newService(memory.NewDatasetRepository())

	_, err := svc.Get(context.Background(), core.ID("missing"))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	err = svc.Delete(context.Background(), core.ID("missing"))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestDelete(t *testing.T) {
	svc := newService(memory.NewDatasetRepository())
	ds := importLinear(t, svc)

	require.NoError(t, svc.Delete(context.Background(), ds.ID))
	_, err := svc.Get(context.Background(), ds.ID)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestListFiltersByTag(t *testing.T) {
	svc := newService(memory.NewDatasetRepository())
	importLinear(t, svc)
	_, err := svc.Import(context.Background(), strings.NewReader(linearCSV(4)), ImportRequest{Name: "other", Filename: "o.csv"})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	demo, err := svc.List(context.Background(), "DEMO")
	require.NoError(t, err)
	require.Len(t, demo, 1)
	assert.Equal(t, "linear", demo[0].Name)
	assert.Equal(t, 30, demo[0].SampleRows)
}

func TestRecommendLinearDataset(t *testing.T) {
	svc := newService(memory.NewDatasetRepository())
	ds := importLinear(t, svc)

	recs, err := svc.Recommend(context.Background(), ds.ID)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, viz.ChartScatter, recs[0].ChartType)

	prof, err := svc.Profile(context.Background(), ds.ID)
	require.NoError(t, err)
	rel, ok := prof.Relationship("x", "y")
	require.True(t, ok)
	assert.InDelta(t, 1.0, rel.Coefficient, 1e-9)
}

func TestSynthesizeFromRecommendation(t *testing.T) {
	svc := newService(memory.NewDatasetRepository())
	ds := importLinear(t, svc)
	recs, err := svc.Recommend(context.Background(), ds.ID)
	require.NoError(t, err)

	spec, err := svc.Synthesize(context.Background(), ds.ID, SynthesizeRequest{RecommendationID: recs[0].ID})
	require.NoError(t, err)
	assert.Equal(t, viz.MarkPoint, spec.Mark.Type)
	assert.Len(t, spec.Data.Values, 30)
	assert.Equal(t, recs[0].Reason, spec.Title)

	_, err = svc.Synthesize(context.Background(), ds.ID, SynthesizeRequest{RecommendationID: "pie:nothing"})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestSynthesizeExplicitMark(t *testing.T) {
	svc := newService(memory.NewDatasetRepository())
	ds := importLinear(t, svc)

	enc := viz.Encoding{}
	enc.Set(viz.ChannelX, viz.Field("x", record.Quantitative))
	enc.Set(viz.ChannelY, viz.Field("y", record.Quantitative))
	spec, err := svc.Synthesize(context.Background(), ds.ID, SynthesizeRequest{
		Mark:     viz.Mark{Type: viz.MarkArc},
		Encoding: enc,
		Title:    "pie",
	})
	require.NoError(t, err)
	assert.False(t, spec.Encoding.Has(viz.ChannelX))
	assert.True(t, spec.Encoding.Has(viz.ChannelTheta))
	assert.Equal(t, "pie", spec.Title)

	_, err = svc.Synthesize(context.Background(), ds.ID, SynthesizeRequest{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestRecommendAll(t *testing.T) {
	svc := newService(memory.NewDatasetRepository())
	a := importLinear(t, svc)
	b := importLinear(t, svc)

	all, err := svc.RecommendAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, all[a.ID], all[b.ID])
}

func TestRecommendAllCanceled(t *testing.T) {
	repo := new(MockDatasetRepository)
	repo.On("GetAll", mock.Anything).Return([]*dataset.Dataset{dataset.NewDataset("a", dataset.OriginAPI)}, nil)
	svc := newService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.RecommendAll(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.CodeCanceled, errors.GetCode(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRepositoryFailureIsWrapped(t *testing.T) {
	repo := new(MockDatasetRepository)
	repo.On("Get", mock.Anything, core.ID("x")).Return(nil, errors.DatabaseError("select failed", stderrors.New("down")))
	svc := newService(repo)

	_, err := svc.Profile(context.Background(), core.ID("x"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}

func TestReport(t *testing.T) {
	svc := newService(memory.NewDatasetRepository())
	ds := importLinear(t, svc)

	md, err := svc.Report(context.Background(), ds.ID, ReportMarkdown)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# linear"))
	assert.Contains(t, string(md), "Scatter")

	page, err := svc.Report(context.Background(), ds.ID, ReportHTML)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<html")

	_, err = svc.Report(context.Background(), ds.ID, "pdf")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
