package transcriber

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/foxseedlab/koecheck/internal/transcriber"
	"github.com/sashabaranov/go-openai"
)

type WhisperConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

func NewWhisperTranscriber(cfg WhisperConfig) transcriber.Transcriber {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{
		client: openai.NewClientWithConfig(c),
		model:  model,
	}
}

// Transcribe uploads the WAV container. Whisper takes an ISO-639-1 hint,
// so only the language part of the code is sent.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, a transcriber.Audio, languageCode string) (string, error) {
	lang, _, _ := strings.Cut(languageCode, "-")
	slog.Debug("calling openai transcription", "model", t.model, "language", lang, "wav_bytes", len(a.WAV))

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(a.WAV),
		Language: lang,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", transcriber.ErrNoSpeech
	}
	return text, nil
}

func classifyOpenAIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", transcriber.ErrTimeout, err)
	}
	statusCode := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		statusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		statusCode = reqErr.HTTPStatusCode
	default:
		return fmt.Errorf("%w: %v", transcriber.ErrUnavailable, err)
	}
	switch {
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", transcriber.ErrQuotaExceeded, err)
	case statusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %v", transcriber.ErrTimeout, err)
	case statusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %v", transcriber.ErrUnavailable, err)
	default:
		return fmt.Errorf("openai transcription failed: %w", err)
	}
}
