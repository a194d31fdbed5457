package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"vizrec/internal"
	"vizrec/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Inference InferenceConfig `yaml:"inference"`
	Profiler  ProfilerConfig  `yaml:"profiler"`
	Recommend RecommendConfig `yaml:"recommend"`
	Renderer  RendererConfig  `yaml:"renderer"`

	// LogLevel is ERROR, WARN, INFO or DEBUG
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig holds database connection settings. An empty URL selects
// the in-memory dataset repository.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port             string  `yaml:"port"`
	GinMode          string  `yaml:"gin_mode"`
	MaxUploadBytes   int64   `yaml:"max_upload_bytes"`
	UploadsPerSecond float64 `yaml:"uploads_per_second"`
	UploadBurst      int     `yaml:"upload_burst"`
}

// IngestConfig bounds the memory used while streaming a file
type IngestConfig struct {
	// MaxRowsToKeep caps the retained sample handed downstream
	MaxRowsToKeep int `yaml:"max_rows_to_keep"`
	// MaxChunkCollect is the collected-row count at which the buffer is
	// down-sampled and reservoir replacement takes over
	MaxChunkCollect int `yaml:"max_chunk_collect"`
	// ChunkRows is the number of rows parsed per chunk
	ChunkRows int `yaml:"chunk_rows"`
	// FingerprintSampleSize is the size of the independent fingerprint sub-sample
	FingerprintSampleSize int   `yaml:"fingerprint_sample_size"`
	Seed                  int64 `yaml:"seed"`
	// MaxIssues caps how many skipped-row details are kept (the count is exact)
	MaxIssues int    `yaml:"max_issues"`
	Delimiter string `yaml:"delimiter"`
}

// InferenceConfig tunes type inference
type InferenceConfig struct {
	// OrdinalCardinalityRatio: string fields with fewer unique values than
	// ratio × sample size are ordinal, otherwise nominal
	OrdinalCardinalityRatio float64 `yaml:"ordinal_cardinality_ratio"`
}

// ProfilerConfig holds the profiling heuristics
type ProfilerConfig struct {
	OutlierFence       float64 `yaml:"outlier_fence"`
	SparseDensity      float64 `yaml:"sparse_density"`
	DenseDensity       float64 `yaml:"dense_density"`
	TrendChange        float64 `yaml:"trend_change"`
	HighVarianceCV     float64 `yaml:"high_variance_cv"`
	MultiModalKurtosis float64 `yaml:"multi_modal_kurtosis"`
	LinearCorrelation  float64 `yaml:"linear_correlation"`
}

// RecommendConfig holds the recommendation rule thresholds
type RecommendConfig struct {
	MaxRecommendations     int     `yaml:"max_recommendations"`
	StrongRelationship     float64 `yaml:"strong_relationship"`
	SkewThreshold          float64 `yaml:"skew_threshold"`
	MaxCategoryCardinality int     `yaml:"max_category_cardinality"`
	MaxPieCardinality      int     `yaml:"max_pie_cardinality"`
	LongLabelLength        int     `yaml:"long_label_length"`
	MaxTooltipFields       int     `yaml:"max_tooltip_fields"`
}

// RendererConfig describes what the external renderer supports
type RendererConfig struct {
	IndependentFoldScales bool `yaml:"independent_fold_scales"`
}

// DefaultIngestConfig returns the documented ingestion defaults
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		MaxRowsToKeep:         100000,
		MaxChunkCollect:       500000,
		ChunkRows:             10000,
		FingerprintSampleSize: 1000,
		Seed:                  42,
		MaxIssues:             100,
		Delimiter:             ",",
	}
}

// DefaultInferenceConfig returns the documented inference defaults
func DefaultInferenceConfig() InferenceConfig {
	return InferenceConfig{OrdinalCardinalityRatio: 0.3}
}

// DefaultProfilerConfig returns the documented profiling defaults
func DefaultProfilerConfig() ProfilerConfig {
	return ProfilerConfig{
		OutlierFence:       1.5,
		SparseDensity:      0.2,
		DenseDensity:       0.8,
		TrendChange:        0.2,
		HighVarianceCV:     1.0,
		MultiModalKurtosis: 2.5,
		LinearCorrelation:  0.7,
	}
}

// DefaultRecommendConfig returns the documented recommendation defaults
func DefaultRecommendConfig() RecommendConfig {
	return RecommendConfig{
		MaxRecommendations:     5,
		StrongRelationship:     0.7,
		SkewThreshold:          1.0,
		MaxCategoryCardinality: 15,
		MaxPieCardinality:      6,
		LongLabelLength:        10,
		MaxTooltipFields:       3,
	}
}

// DefaultRendererConfig returns the renderer capability defaults
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{IndependentFoldScales: true}
}

// Default returns a configuration with every documented default
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             "8080",
			GinMode:          "release",
			MaxUploadBytes:   256 << 20,
			UploadsPerSecond: 2,
			UploadBurst:      4,
		},
		Ingest:    DefaultIngestConfig(),
		Inference: DefaultInferenceConfig(),
		Profiler:  DefaultProfilerConfig(),
		Recommend: DefaultRecommendConfig(),
		Renderer:  DefaultRendererConfig(),
		LogLevel:  "INFO",
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// VIZREC_CONFIG, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("VIZREC_CONFIG"); path != "" {
		if err := config.overlayFile(path); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}

	config.overlayEnv()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("parse %s: %w", path, err))
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)

	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.GinMode = getEnvOrDefault("GIN_MODE", c.Server.GinMode)
	c.Server.MaxUploadBytes = int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", int(c.Server.MaxUploadBytes)))
	c.Server.UploadsPerSecond = getEnvFloatOrDefault("UPLOADS_PER_SECOND", c.Server.UploadsPerSecond)

	c.Ingest.MaxRowsToKeep = getEnvIntOrDefault("VIZREC_MAX_ROWS_TO_KEEP", c.Ingest.MaxRowsToKeep)
	c.Ingest.MaxChunkCollect = getEnvIntOrDefault("VIZREC_MAX_CHUNK_COLLECT", c.Ingest.MaxChunkCollect)
	c.Ingest.ChunkRows = getEnvIntOrDefault("VIZREC_CHUNK_ROWS", c.Ingest.ChunkRows)
	c.Ingest.FingerprintSampleSize = getEnvIntOrDefault("VIZREC_FINGERPRINT_SAMPLE", c.Ingest.FingerprintSampleSize)
	c.Ingest.Seed = int64(getEnvIntOrDefault("VIZREC_SEED", int(c.Ingest.Seed)))

	c.Inference.OrdinalCardinalityRatio = getEnvFloatOrDefault("VIZREC_ORDINAL_RATIO", c.Inference.OrdinalCardinalityRatio)
	c.Recommend.MaxRecommendations = getEnvIntOrDefault("VIZREC_MAX_RECOMMENDATIONS", c.Recommend.MaxRecommendations)
	c.Renderer.IndependentFoldScales = getEnvBoolOrDefault("VIZREC_INDEPENDENT_FOLD_SCALES", c.Renderer.IndependentFoldScales)
}

// Validate checks the configuration for impossible values
func (c *Config) Validate() error {
	if err := c.Ingest.Validate(); err != nil {
		return err
	}
	if r := c.Inference.OrdinalCardinalityRatio; r <= 0 || r > 1 {
		return errors.ConfigInvalid("ordinal cardinality ratio must be in (0,1]")
	}
	if c.Recommend.MaxRecommendations <= 0 {
		return errors.ConfigInvalid("max recommendations must be positive")
	}
	if c.Profiler.SparseDensity >= c.Profiler.DenseDensity {
		return errors.ConfigInvalid("sparse density threshold must be below dense threshold")
	}
	if _, err := internal.ParseLogLevel(c.LogLevel); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if c.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	return nil
}

// Validate checks the ingestion bounds
func (c IngestConfig) Validate() error {
	if c.MaxRowsToKeep <= 0 {
		return errors.ConfigInvalid("max rows to keep must be positive")
	}
	if c.MaxChunkCollect < c.MaxRowsToKeep {
		return errors.ConfigInvalid("max chunk collect must be at least max rows to keep")
	}
	if c.ChunkRows <= 0 {
		return errors.ConfigInvalid("chunk rows must be positive")
	}
	if c.FingerprintSampleSize <= 0 {
		return errors.ConfigInvalid("fingerprint sample size must be positive")
	}
	if len([]rune(c.Delimiter)) > 1 {
		return errors.ConfigInvalid("delimiter must be a single character")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
