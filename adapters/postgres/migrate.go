package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"vizrec/domain/core"
	"vizrec/internal"
)

// migration is one forward schema step
type migration struct {
	Version string
	SQL     string
}

func (m migration) checksum() string {
	return core.NewHash([]byte(m.SQL)).Short(16)
}

var migrations = []migration{
	{
		Version: "001_datasets",
		SQL: `CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			tags JSONB NOT NULL DEFAULT '[]',
			origin TEXT NOT NULL DEFAULT '',
			filename TEXT NOT NULL DEFAULT '',
			format TEXT NOT NULL DEFAULT '',
			fields JSONB NOT NULL DEFAULT '[]',
			rows JSONB NOT NULL DEFAULT '[]',
			field_types JSONB NOT NULL DEFAULT '{}',
			fingerprint TEXT NOT NULL DEFAULT '',
			total_row_count INTEGER NOT NULL DEFAULT 0,
			is_sampled BOOLEAN NOT NULL DEFAULT FALSE,
			skipped_rows INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Version: "002_datasets_fingerprint_idx",
		SQL:     `CREATE INDEX IF NOT EXISTS datasets_fingerprint_idx ON datasets (fingerprint)`,
	},
}

// Open connects to PostgreSQL and applies pending migrations
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema applies every migration not yet recorded in schema_migrations.
// A recorded migration whose SQL changed is reported rather than re-run.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied := make(map[string]string)
	rows, err := db.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	for rows.Next() {
		var version, sum string
		if err := rows.Scan(&version, &sum); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration: %w", err)
		}
		applied[version] = sum
	}
	rows.Close()

	for _, m := range migrations {
		if sum, ok := applied[m.Version]; ok {
			if sum != m.checksum() {
				internal.DefaultLogger.Warn("[Postgres] Migration %s changed since it was applied", m.Version)
			}
			continue
		}
		if err := applyMigration(ctx, db.DB, m); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}
		internal.DefaultLogger.Info("[Postgres] Applied migration: %s", m.Version)
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)`,
		m.Version, m.checksum()); err != nil {
		return err
	}
	return tx.Commit()
}
