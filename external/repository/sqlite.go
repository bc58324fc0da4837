package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foxseedlab/koecheck/internal/repository"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path and
// applies the schema.
func OpenSQLite(ctx context.Context, path string) (repository.Repository, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := runSQLiteMigration(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) InsertVerification(ctx context.Context, input repository.InsertVerificationInput) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO verifications (`+verificationColumns+`, created_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		verificationArgs(input, input.CreatedAt.UnixMilli())...)
	return err
}

func (r *SQLiteRepository) ListRecentVerifications(ctx context.Context, limit int) ([]repository.Verification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+verificationColumns+`, created_at_ms
		 FROM verifications ORDER BY created_at_ms DESC, rowid DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Verification
	for rows.Next() {
		var createdMs int64
		v, err := scanVerification(rows, &createdMs)
		if err != nil {
			return nil, err
		}
		v.CreatedAt = time.UnixMilli(createdMs).UTC()
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
