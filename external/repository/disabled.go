package repository

import (
	"context"

	"github.com/foxseedlab/koecheck/internal/repository"
)

// disabledRepository is used when DATABASE_URL is empty.
type disabledRepository struct{}

func NewDisabledRepository() repository.Repository {
	return disabledRepository{}
}

func (disabledRepository) InsertVerification(context.Context, repository.InsertVerificationInput) error {
	return nil
}

func (disabledRepository) ListRecentVerifications(context.Context, int) ([]repository.Verification, error) {
	return nil, repository.ErrDisabled
}

func (disabledRepository) Close() error {
	return nil
}
