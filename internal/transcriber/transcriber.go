package transcriber

import (
	"context"
	"errors"
)

var (
	ErrNoSpeech      = errors.New("no speech could be recognized in the audio")
	ErrUnavailable   = errors.New("transcription service is unreachable")
	ErrQuotaExceeded = errors.New("transcription service quota exceeded")
	ErrTimeout       = errors.New("transcription service did not respond in time")
)

// Audio is one canonical recording. WAV is the full container and PCM the
// s16le samples it wraps; providers use whichever their API expects.
type Audio struct {
	WAV        []byte
	PCM        []byte
	SampleRate int
	Channels   int
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio, languageCode string) (string, error)
}
