package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vizrec/adapters/rng"
	"vizrec/domain/record"
	"vizrec/internal/config"
	"vizrec/internal/errors"
)

func newTestPipeline(mutate func(*config.IngestConfig)) *Pipeline {
	cfg := config.DefaultIngestConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewPipeline(cfg, rng.NewAdapter())
}

func smallBounds(cfg *config.IngestConfig) {
	cfg.MaxRowsToKeep = 100
	cfg.MaxChunkCollect = 500
	cfg.ChunkRows = 50
	cfg.FingerprintSampleSize = 20
}

func generateCSV(n int) string {
	var b strings.Builder
	b.WriteString("id,region,value\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,r%d,%d.5\n", i+1, i%4, i%97)
	}
	return b.String()
}

func ingestString(t *testing.T, p *Pipeline, data string, format Format) (*Result, error) {
	t.Helper()
	return p.Ingest(context.Background(), strings.NewReader(data), format, Options{Filename: "test." + string(format)})
}

func TestIngestCSVTypesAndHeader(t *testing.T) {
	p := newTestPipeline(nil)
	res, err := ingestString(t, p, "name,score,joined,active\nada,10,2024-01-02,true\nbob,,2024-02-03,false\n", FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "score", "joined", "active"}, res.Sample.Fields)
	assert.Equal(t, 2, res.TotalRowCount)
	assert.False(t, res.IsSampled)
	assert.Equal(t, FormatCSV, res.Format)
	require.Equal(t, 2, res.Sample.Len())

	var ada record.Record
	for _, row := range res.Sample.Rows {
		if s, _ := row["name"].Str(); s == "ada" {
			ada = row
		}
	}
	require.NotNil(t, ada)
	assert.Equal(t, record.KindNumber, ada["score"].Kind())
	assert.Equal(t, record.KindTime, ada["joined"].Kind())
	assert.Equal(t, record.KindBool, ada["active"].Kind())
}

func TestIngestCSVEmptyCellIsNull(t *testing.T) {
	res, err := ingestString(t, newTestPipeline(nil), "a,b\n1,\n", FormatCSV)
	require.NoError(t, err)
	v, ok := res.Sample.Rows[0]["b"]
	assert.True(t, ok)
	assert.True(t, v.IsNull())
}

func TestIngestCSVShortRowLeavesFieldsAbsent(t *testing.T) {
	res, err := ingestString(t, newTestPipeline(nil), "a,b,c\n1\n", FormatCSV)
	require.NoError(t, err)
	row := res.Sample.Rows[0]
	_, hasB := row["b"]
	assert.False(t, hasB)
	assert.Equal(t, []string{"a"}, row.Keys())
}

func TestIngestCSVBOMAndDuplicateHeaders(t *testing.T) {
	res, err := ingestString(t, newTestPipeline(nil), "\xEF\xBB\xBFx,x, \n1,2,3\n", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x_2", "column_3"}, res.Sample.Fields)
}

func TestIngestCSVSkipsMalformedRows(t *testing.T) {
	res, err := ingestString(t, newTestPipeline(nil), "a,b\n1,2\n3,x\"y\n5,6\n", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalRowCount)
	assert.Equal(t, 1, res.SkippedRows)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, 2, res.Issues[0].Row)
}

func TestIngestCSVIgnoresBlankLines(t *testing.T) {
	res, err := ingestString(t, newTestPipeline(nil), "a,b\n\n1,2\n\n3,4\n", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalRowCount)
	assert.Equal(t, 0, res.SkippedRows)
}

func TestIngestCSVCountsRowsOfEmptyCells(t *testing.T) {
	p := newTestPipeline(nil)
	res, err := ingestString(t, p, "a,b\n1,2\n,\n3,4\n", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalRowCount)
	assert.Equal(t, 0, res.SkippedRows)

	nulls := 0
	for _, row := range res.Sample.Rows {
		if row["a"].IsNull() && row["b"].IsNull() {
			nulls++
		}
	}
	assert.Equal(t, 1, nulls)

	same, err := ingestString(t, p, `[{"a":1,"b":2},{"a":null,"b":null},{"a":3,"b":4}]`, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, res.TotalRowCount, same.TotalRowCount)
}

func TestIngestTSV(t *testing.T) {
	res, err := ingestString(t, newTestPipeline(nil), "a\tb\n1\tx\n", FormatTSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Sample.Fields)
	assert.Equal(t, 1, res.TotalRowCount)
}

func TestIngestCountsEveryRowWhileSampling(t *testing.T) {
	var chunks []ChunkProgress
	p := newTestPipeline(smallBounds)
	res, err := p.Ingest(context.Background(), strings.NewReader(generateCSV(6000)), FormatCSV, Options{
		OnChunk: func(cp ChunkProgress) { chunks = append(chunks, cp) },
	})
	require.NoError(t, err)

	assert.Equal(t, 6000, res.TotalRowCount)
	assert.Equal(t, 100, res.Sample.Len())
	assert.True(t, res.IsSampled)
	assert.Equal(t, 120, res.Chunks)
	require.Len(t, chunks, 120)
	assert.Equal(t, 6000, chunks[len(chunks)-1].RowsProcessed)
	assert.True(t, chunks[len(chunks)-1].Sampling)
	for _, cp := range chunks {
		assert.LessOrEqual(t, cp.Retained, 500)
	}
}

func TestIngestDownsamplesBetweenKeepAndCollect(t *testing.T) {
	res, err := ingestString(t, newTestPipeline(smallBounds), generateCSV(300), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 300, res.TotalRowCount)
	assert.Equal(t, 100, res.Sample.Len())
	assert.True(t, res.IsSampled)
}

func TestIngestLargeFileWithDefaultBounds(t *testing.T) {
	if testing.Short() {
		t.Skip("streams 600k rows")
	}
	res, err := ingestString(t, newTestPipeline(nil), generateCSV(600000), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 600000, res.TotalRowCount)
	assert.Equal(t, 100000, res.Sample.Len())
	assert.True(t, res.IsSampled)
}

func TestIngestFingerprintIsDeterministic(t *testing.T) {
	data := generateCSV(1000)
	a, err := ingestString(t, newTestPipeline(smallBounds), data, FormatCSV)
	require.NoError(t, err)
	b, err := ingestString(t, newTestPipeline(smallBounds), data, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.Len(t, a.Fingerprint, fingerprintLength)
}

func TestIngestFingerprintChangesWithContent(t *testing.T) {
	p := newTestPipeline(nil)
	a, err := ingestString(t, p, "a,b\n1,2\n3,4\n", FormatCSV)
	require.NoError(t, err)
	b, err := ingestString(t, p, "a,b\n1,2\n3,5\n", FormatCSV)
	require.NoError(t, err)
	c, err := ingestString(t, p, "a,b\n1,2\n3,4\n5,6\n", FormatCSV)
	require.NoError(t, err)

	assert.NotEqual(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestIngestFingerprintIgnoresRowOrder(t *testing.T) {
	p := newTestPipeline(nil)
	a, err := ingestString(t, p, "a,b\n1,2\n3,4\n", FormatCSV)
	require.NoError(t, err)
	b, err := ingestString(t, p, "a,b\n3,4\n1,2\n", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
}

func TestIngestHeaderOnlyIsEmptyData(t *testing.T) {
	_, err := ingestString(t, newTestPipeline(nil), "a,b,c\n", FormatCSV)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyData))
	assert.Equal(t, errors.CodeEmptyData, errors.GetCode(err))

	var ie *IngestError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, KindEmpty, ie.Kind)
	assert.Equal(t, "test.csv", ie.Filename)
	assert.Equal(t, []string{"a", "b", "c"}, ie.Fields)
}

func TestIngestEmptyStreamIsEmptyData(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatJSON, FormatNDJSON} {
		_, err := ingestString(t, newTestPipeline(nil), "", format)
		assert.True(t, errors.Is(err, ErrEmptyData), "format %s: %v", format, err)
	}
}

func TestIngestBinaryGarbageIsParseError(t *testing.T) {
	_, err := ingestString(t, newTestPipeline(nil), "\x00\xff\xfe\x01,\x02\x03\n\xff\x00", FormatCSV)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
}

func TestIngestJSONArray(t *testing.T) {
	data := `[{"city":"Oslo","temp":3.5,"at":"2024-01-01"},{"city":"Rome","temp":14},42,{"city":"Lima","temp":null}]`
	res, err := ingestString(t, newTestPipeline(nil), data, FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalRowCount)
	assert.Equal(t, 1, res.SkippedRows)
	assert.Equal(t, []string{"city", "temp", "at"}, res.Sample.Fields)
}

func TestIngestJSONObjectPicksLongestArray(t *testing.T) {
	data := `{"meta":{"v":1},"short":[{"a":1}],"name":"x","rows":[{"b":1},{"b":2},{"b":3}]}`
	res, err := ingestString(t, newTestPipeline(nil), data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalRowCount)
	assert.Equal(t, []string{"b"}, res.Sample.Fields)
}

func TestIngestJSONObjectWithoutArrayIsEmptyData(t *testing.T) {
	_, err := ingestString(t, newTestPipeline(nil), `{"a":1,"b":{"c":[1]}}`, FormatJSON)
	assert.True(t, errors.Is(err, ErrEmptyData))
}

func TestIngestJSONScalarIsEmptyData(t *testing.T) {
	_, err := ingestString(t, newTestPipeline(nil), `"just a string"`, FormatJSON)
	assert.True(t, errors.Is(err, ErrEmptyData))
}

func TestIngestJSONSyntaxErrorReportsOffset(t *testing.T) {
	_, err := ingestString(t, newTestPipeline(nil), `[{"a":1},{"a":2},{"a":`, FormatJSON)
	require.Error(t, err)

	var ie *IngestError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, KindParse, ie.Kind)
	assert.Greater(t, ie.Offset, int64(0))
	assert.Equal(t, 2, ie.RowsProcessed)
}

func TestIngestNDJSON(t *testing.T) {
	data := "{\"a\":1}\n\nnot json\n{\"a\":2,\"b\":\"x\"}\n[1,2]\n"
	res, err := ingestString(t, newTestPipeline(nil), data, FormatNDJSON)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalRowCount)
	assert.Equal(t, 2, res.SkippedRows)
	assert.Equal(t, []string{"a", "b"}, res.Sample.Fields)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, 3, res.Issues[0].Line)
}

func TestIngestNDJSONWithoutObjectsIsParseError(t *testing.T) {
	_, err := ingestString(t, newTestPipeline(nil), "hello\nworld\n", FormatNDJSON)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestIngestXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"product", "units"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"widget", 12}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"gadget", 7}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := newTestPipeline(nil).IngestBytes(context.Background(), buf.Bytes(), FormatXLSX, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"product", "units"}, res.Sample.Fields)
	assert.Equal(t, 2, res.TotalRowCount)
	for _, row := range res.Sample.Rows {
		assert.Equal(t, record.KindNumber, row["units"].Kind())
	}
}

func TestIngestXLSXGarbageIsParseError(t *testing.T) {
	_, err := ingestString(t, newTestPipeline(nil), "definitely not a zip file", FormatXLSX)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestIngestCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := newTestPipeline(nil).Ingest(ctx, strings.NewReader(generateCSV(10)), FormatCSV, Options{})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, errors.CodeCanceled, errors.GetCode(err))
}

func TestIngestCanceledBetweenChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chunks := 0
	res, err := newTestPipeline(smallBounds).Ingest(ctx, strings.NewReader(generateCSV(5000)), FormatCSV, Options{
		OnChunk: func(ChunkProgress) {
			chunks++
			cancel()
		},
	})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, chunks)
}

func TestStartDeliversOneOutcome(t *testing.T) {
	ch := newTestPipeline(nil).Start(context.Background(), strings.NewReader("a\n1\n"), FormatCSV, Options{})
	out, ok := <-ch
	require.True(t, ok)
	require.NoError(t, out.Err)
	assert.Equal(t, 1, out.Result.TotalRowCount)
	_, ok = <-ch
	assert.False(t, ok)
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := ingestString(t, newTestPipeline(nil), "a\n1\n", Format("parquet"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"sales.csv":        FormatCSV,
		"SALES.TSV":        FormatTSV,
		"events.jsonl":     FormatNDJSON,
		"events.ndjson":    FormatNDJSON,
		"data.json":        FormatJSON,
		"report.xlsx":      FormatXLSX,
		"dir/archive.xlsx": FormatXLSX,
	}
	for name, want := range tests {
		got, err := DetectFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := DetectFormat("README")
	assert.Error(t, err)
	_, err = DetectFormat("photo.png")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
