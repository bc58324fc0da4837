package repository

import (
	"context"
	"errors"
	"time"
)

// ErrDisabled is returned by listing operations when no store is configured.
var ErrDisabled = errors.New("verification log is disabled")

type InsertVerificationInput struct {
	ID              string
	Language        string
	LanguageCode    string
	ReferenceText   string
	RecognizedText  string
	Matched         bool
	FailureKind     string
	FailureDetail   string
	AudioBytes      int
	AudioDuration   time.Duration
	ProviderLatency time.Duration
	CreatedAt       time.Time
}

type Repository interface {
	InsertVerification(ctx context.Context, input InsertVerificationInput) error
	ListRecentVerifications(ctx context.Context, limit int) ([]Verification, error)
	Close() error
}
