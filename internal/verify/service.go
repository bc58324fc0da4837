package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/koecheck/internal/audio"
	"github.com/foxseedlab/koecheck/internal/transcriber"
)

const DefaultProviderTimeout = 30 * time.Second

type Request struct {
	ID            string
	Waveform      []byte
	ReferenceText string
	Language      string
}

// Outcome carries the result together with what the journal records about it.
type Outcome struct {
	Request         Request
	Language        Language
	Result          Result
	AudioDuration   time.Duration
	ProviderLatency time.Duration
	CompletedAt     time.Time
}

type Service struct {
	transcriber transcriber.Transcriber
	timeout     time.Duration
	metrics     *Metrics
	journal     *Journal
}

type Option func(*Service)

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithJournal(j *Journal) Option {
	return func(s *Service) { s.journal = j }
}

func NewService(t transcriber.Transcriber, timeout time.Duration, opts ...Option) *Service {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	s := &Service{transcriber: t, timeout: timeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify transcribes req.Waveform in the requested language and compares the
// transcript to the reference text. Every failure is reported in the Result.
func (s *Service) Verify(ctx context.Context, req Request) Result {
	outcome := s.verify(ctx, req)
	outcome.CompletedAt = time.Now()
	if s.metrics != nil {
		s.metrics.Record(ctx, outcome)
	}
	if s.journal != nil {
		s.journal.Record(outcome)
	}
	return outcome.Result
}

func (s *Service) verify(ctx context.Context, req Request) Outcome {
	outcome := Outcome{Request: req}

	pcm, err := audio.ToCanonical(req.Waveform)
	if err != nil {
		outcome.Result = failed(FailureMalformedAudio, fmt.Sprintf("audio could not be decoded: %v", err))
		return outcome
	}
	outcome.AudioDuration = audio.Canonical.Duration(len(pcm))

	lang, err := ParseLanguage(req.Language)
	if err != nil {
		outcome.Result = failed(FailureUnsupportedLanguage, err.Error())
		return outcome
	}
	outcome.Language = lang

	wav, err := audio.EncodeWAV(pcm, audio.Canonical)
	if err != nil {
		outcome.Result = failed(FailureMalformedAudio, fmt.Sprintf("audio could not be re-encoded: %v", err))
		return outcome
	}

	started := time.Now()
	text, err := s.transcribe(ctx, transcriber.Audio{
		WAV:        wav,
		PCM:        pcm,
		SampleRate: audio.Canonical.SampleRate,
		Channels:   audio.Canonical.Channels,
	}, lang.Code())
	outcome.ProviderLatency = time.Since(started)
	if err != nil {
		slog.Warn("transcription failed", "request_id", req.ID, "language_code", lang.Code(), "error", err)
		outcome.Result = classify(err)
		return outcome
	}

	outcome.Result = Result{
		Matched:        TextsMatch(text, req.ReferenceText),
		RecognizedText: text,
	}
	slog.Debug("verification completed", "request_id", req.ID, "language_code", lang.Code(), "matched", outcome.Result.Matched, "provider_latency", outcome.ProviderLatency)
	return outcome
}

type transcribeResult struct {
	text string
	err  error
}

// transcribe bounds the provider call by the service timeout even when the
// provider does not honor its context.
func (s *Service) transcribe(ctx context.Context, a transcriber.Audio, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan transcribeResult, 1)
	go func() {
		text, err := s.transcriber.Transcribe(ctx, a, code)
		done <- transcribeResult{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", transcriber.ErrTimeout, r.err)
		}
		return r.text, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", transcriber.ErrTimeout, s.timeout)
		}
		return "", fmt.Errorf("%w: %v", transcriber.ErrUnavailable, ctx.Err())
	}
}

func classify(err error) Result {
	switch {
	case errors.Is(err, transcriber.ErrNoSpeech):
		return failed(FailureNoSpeech, err.Error())
	case errors.Is(err, transcriber.ErrTimeout):
		return failed(FailureProviderTimeout, err.Error())
	case errors.Is(err, transcriber.ErrQuotaExceeded):
		return failed(FailureProviderQuota, err.Error())
	case errors.Is(err, transcriber.ErrUnavailable):
		return failed(FailureProviderUnavailable, err.Error())
	default:
		return failed(FailureProviderError, err.Error())
	}
}
