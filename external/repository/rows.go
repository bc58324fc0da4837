package repository

import (
	"time"

	"github.com/foxseedlab/koecheck/internal/repository"
)

// Both stores keep durations as integer milliseconds; only created_at is
// stored differently (timestamptz in Postgres, unix millis in SQLite).
const verificationColumns = `id, language, language_code, reference_text, recognized_text, matched,
   failure_kind, failure_detail, audio_bytes, audio_duration_ms, provider_latency_ms`

// rowScanner is satisfied by pgx.Rows and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// verificationArgs returns the insert arguments in verificationColumns order
// followed by createdAt.
func verificationArgs(input repository.InsertVerificationInput, createdAt any) []any {
	return []any{
		input.ID, input.Language, input.LanguageCode, input.ReferenceText, input.RecognizedText, input.Matched,
		input.FailureKind, input.FailureDetail, input.AudioBytes,
		input.AudioDuration.Milliseconds(), input.ProviderLatency.Milliseconds(), createdAt,
	}
}

// scanVerification reads one row of verificationColumns plus the created_at
// column into createdAt. The caller converts createdAt into v.CreatedAt.
func scanVerification(row rowScanner, createdAt any) (repository.Verification, error) {
	var v repository.Verification
	var audioMs, latencyMs int64
	if err := row.Scan(&v.ID, &v.Language, &v.LanguageCode, &v.ReferenceText, &v.RecognizedText, &v.Matched,
		&v.FailureKind, &v.FailureDetail, &v.AudioBytes, &audioMs, &latencyMs, createdAt); err != nil {
		return repository.Verification{}, err
	}
	v.AudioDuration = time.Duration(audioMs) * time.Millisecond
	v.ProviderLatency = time.Duration(latencyMs) * time.Millisecond
	return v, nil
}
