package notify

import (
	"context"
	"time"
)

// VerificationEvent is published after every relay verification.
type VerificationEvent struct {
	ID             string    `json:"id"`
	Language       string    `json:"language"`
	LanguageCode   string    `json:"language_code,omitempty"`
	ReferenceText  string    `json:"reference_text"`
	RecognizedText string    `json:"recognized_text"`
	Matched        bool      `json:"match"`
	FailureKind    string    `json:"error_kind,omitempty"`
	Error          string    `json:"error,omitempty"`
	AudioSeconds   float64   `json:"audio_seconds"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type Sender interface {
	SendVerification(ctx context.Context, event VerificationEvent) error
}
