package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vizrec/internal/errors"
)

func TestDefaultsMatchDocumentedValues(t *testing.T) {
	c := Default()
	assert.Equal(t, 100000, c.Ingest.MaxRowsToKeep)
	assert.Equal(t, 500000, c.Ingest.MaxChunkCollect)
	assert.Equal(t, 0.3, c.Inference.OrdinalCardinalityRatio)
	assert.Equal(t, 0.2, c.Profiler.TrendChange)
	assert.Equal(t, 1.0, c.Recommend.SkewThreshold)
	assert.Equal(t, 2.5, c.Profiler.MultiModalKurtosis)
	assert.Equal(t, 5, c.Recommend.MaxRecommendations)
	require.NoError(t, c.Validate())
}

func TestLoadAppliesFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vizrec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ingest:
  max_rows_to_keep: 50
  max_chunk_collect: 200
recommend:
  max_recommendations: 3
`), 0o600))

	t.Setenv("VIZREC_CONFIG", path)
	t.Setenv("VIZREC_MAX_CHUNK_COLLECT", "300")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, c.Ingest.MaxRowsToKeep)
	assert.Equal(t, 300, c.Ingest.MaxChunkCollect)
	assert.Equal(t, 3, c.Recommend.MaxRecommendations)
	// untouched keys keep their defaults
	assert.Equal(t, 10000, c.Ingest.ChunkRows)
}

func TestLoadRejectsInvalidBounds(t *testing.T) {
	t.Setenv("VIZREC_CONFIG", "")
	t.Setenv("VIZREC_MAX_ROWS_TO_KEEP", "10")
	t.Setenv("VIZREC_MAX_CHUNK_COLLECT", "5")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ingest: [unterminated"), 0o600))
	t.Setenv("VIZREC_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadLogLevel(t *testing.T) {
	t.Setenv("VIZREC_CONFIG", "")
	t.Setenv("LOG_LEVEL", "debug")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)

	t.Setenv("LOG_LEVEL", "chatty")
	_, err = Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
