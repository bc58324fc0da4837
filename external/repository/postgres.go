package repository

import (
	"context"
	"time"

	"github.com/foxseedlab/koecheck/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) InsertVerification(ctx context.Context, input repository.InsertVerificationInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO verifications (`+verificationColumns+`, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO NOTHING`,
		verificationArgs(input, input.CreatedAt)...)
	return err
}

func (r *PostgresRepository) ListRecentVerifications(ctx context.Context, limit int) ([]repository.Verification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+verificationColumns+`, created_at
		 FROM verifications ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Verification
	for rows.Next() {
		var createdAt time.Time
		v, err := scanVerification(rows, &createdAt)
		if err != nil {
			return nil, err
		}
		v.CreatedAt = createdAt
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
