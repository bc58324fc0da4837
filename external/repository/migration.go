package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresMigrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS verifications (
		id TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		language_code TEXT NOT NULL DEFAULT '',
		reference_text TEXT NOT NULL,
		recognized_text TEXT NOT NULL DEFAULT '',
		matched BOOLEAN NOT NULL,
		failure_kind TEXT NOT NULL DEFAULT '',
		failure_detail TEXT NOT NULL DEFAULT '',
		audio_bytes INTEGER NOT NULL,
		audio_duration_ms BIGINT NOT NULL,
		provider_latency_ms BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_verifications_created ON verifications (created_at DESC)`,
}

var sqliteMigrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS verifications (
		id TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		language_code TEXT NOT NULL DEFAULT '',
		reference_text TEXT NOT NULL,
		recognized_text TEXT NOT NULL DEFAULT '',
		matched INTEGER NOT NULL,
		failure_kind TEXT NOT NULL DEFAULT '',
		failure_detail TEXT NOT NULL DEFAULT '',
		audio_bytes INTEGER NOT NULL,
		audio_duration_ms INTEGER NOT NULL,
		provider_latency_ms INTEGER NOT NULL,
		created_at_ms INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_verifications_created ON verifications (created_at_ms DESC)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range postgresMigrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func runSQLiteMigration(ctx context.Context, db *sql.DB) error {
	for _, s := range sqliteMigrationStatements {
		if _, err := db.ExecContext(ctx, strings.TrimSpace(s)); err != nil {
			return err
		}
	}
	return nil
}
