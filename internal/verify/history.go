package verify

import (
	"time"

	"github.com/foxseedlab/koecheck/internal/repository"
)

// HistoryEntry is the JSON shape of one verification log row.
type HistoryEntry struct {
	ID             string    `json:"id"`
	Language       string    `json:"language"`
	LanguageCode   string    `json:"language_code"`
	ReferenceText  string    `json:"reference_text"`
	RecognizedText string    `json:"recognized_text"`
	Match          bool      `json:"match"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	Error          string    `json:"error,omitempty"`
	AudioBytes     int       `json:"audio_bytes"`
	AudioSeconds   float64   `json:"audio_seconds"`
	ProviderMillis int64     `json:"provider_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewHistoryEntry(v repository.Verification) HistoryEntry {
	return HistoryEntry{
		ID:             v.ID,
		Language:       v.Language,
		LanguageCode:   v.LanguageCode,
		ReferenceText:  v.ReferenceText,
		RecognizedText: v.RecognizedText,
		Match:          v.Matched,
		ErrorKind:      v.FailureKind,
		Error:          v.FailureDetail,
		AudioBytes:     v.AudioBytes,
		AudioSeconds:   v.AudioDuration.Seconds(),
		ProviderMillis: v.ProviderLatency.Milliseconds(),
		CreatedAt:      v.CreatedAt,
	}
}
