package repository

import "time"

// Verification is one logged relay outcome. Audio is never stored; only its
// size and duration are kept.
type Verification struct {
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
