package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"vizrec/adapters/ingest"
	"vizrec/adapters/memory"
	"vizrec/adapters/postgres"
	"vizrec/adapters/rng"
	"vizrec/app"
	"vizrec/internal"
	"vizrec/internal/config"
	"vizrec/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure; DB is nil when datasets are kept in memory
	DB *sqlx.DB

	DatasetRepo ports.DatasetRepository
	RNG         ports.RNGPort
	Pipeline    *ingest.Pipeline

	VisualizationService *app.VisualizationService
}

// New creates a container. A configured DATABASE_URL selects the PostgreSQL
// repository and applies its migrations; otherwise datasets live in memory.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{Config: cfg}

	if level, err := internal.ParseLogLevel(cfg.LogLevel); err == nil {
		internal.DefaultLogger.SetLevel(level)
	}

	if err := c.initRepositories(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	c.RNG = rng.NewAdapter()
	c.Pipeline = ingest.NewPipeline(cfg.Ingest, c.RNG)
	c.VisualizationService = app.NewVisualizationService(cfg, c.DatasetRepo, c.Pipeline)

	return c, nil
}

// initRepositories initializes data access repositories
func (c *Container) initRepositories(ctx context.Context) error {
	if c.Config.Database.URL == "" {
		c.DatasetRepo = memory.NewDatasetRepository()
		internal.DefaultLogger.Info("[Container] No DATABASE_URL, keeping datasets in memory")
		return nil
	}

	db, err := postgres.Open(ctx, c.Config.Database.URL)
	if err != nil {
		return err
	}
	c.DB = db
	c.DatasetRepo = postgres.NewDatasetRepository(db)
	internal.DefaultLogger.Info("[Container] Using PostgreSQL dataset repository")
	return nil
}

// Shutdown releases held resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
