package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/foxseedlab/koecheck/internal/audio"
	"github.com/foxseedlab/koecheck/internal/verify"
)

var (
	ErrTextRequired = errors.New("reference text is required")
	ErrNoAudio      = errors.New("no audio is ready; record or upload first")
	ErrNoRecorder   = errors.New("no input device is configured")
	ErrWrongState   = errors.New("operation is not allowed in the current state")
)

type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateSaved     State = "saved"
	StateSubmitted State = "submitted"
	StateResult    State = "result"
)

// Checker holds one user's workflow: the recorder, the blob waiting to be
// submitted and the last result. It replaces process-wide UI state.
type Checker struct {
	recorder   Recorder
	normalizer Normalizer
	relay      Relay

	mu     sync.Mutex
	state  State
	blob   audio.Blob
	result *verify.Response
}

// NewChecker returns a Checker in the idle state. recorder may be nil for
// upload-only use.
func NewChecker(recorder Recorder, n Normalizer, relay Relay) *Checker {
	return &Checker{
		recorder:   recorder,
		normalizer: n,
		relay:      relay,
		state:      StateIdle,
	}
}

func (c *Checker) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Blob returns the audio waiting to be submitted, if any.
func (c *Checker) Blob() (audio.Blob, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blob, !c.blob.Empty()
}

func (c *Checker) LastResult() (verify.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return verify.Response{}, false
	}
	return *c.result, true
}

// StartRecording refuses to start without reference text.
func (c *Checker) StartRecording(ctx context.Context, referenceText string) error {
	if strings.TrimSpace(referenceText) == "" {
		return ErrTextRequired
	}
	if c.recorder == nil {
		return ErrNoRecorder
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRecording || c.state == StateSubmitted {
		return fmt.Errorf("%w: %s", ErrWrongState, c.state)
	}
	if err := c.recorder.Start(ctx); err != nil {
		c.toIdleLocked()
		return err
	}
	c.blob = audio.Blob{}
	c.result = nil
	c.state = StateRecording
	return nil
}

// StopRecording stops capture and normalizes the recording into the pending
// blob. Any failure returns the checker to idle.
func (c *Checker) StopRecording() (audio.Blob, error) {
	if c.recorder == nil {
		return audio.Blob{}, ErrNoRecorder
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRecording {
		return audio.Blob{}, fmt.Errorf("%w: %s", ErrWrongState, c.state)
	}
	if _, err := c.recorder.Stop(); err != nil {
		c.toIdleLocked()
		return audio.Blob{}, err
	}
	blob, err := c.normalizer.FromSession(c.recorder)
	if err != nil {
		c.toIdleLocked()
		return audio.Blob{}, err
	}
	c.blob = blob
	c.state = StateSaved
	slog.Info("recording saved", "bytes", len(blob.Data), "duration", blob.Duration)
	return blob, nil
}

// LoadUpload normalizes an uploaded file into the pending blob. Unsupported
// formats fail here, before any relay call.
func (c *Checker) LoadUpload(ctx context.Context, data []byte, extension string) (audio.Blob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRecording || c.state == StateSubmitted {
		return audio.Blob{}, fmt.Errorf("%w: %s", ErrWrongState, c.state)
	}
	blob, err := c.normalizer.FromUpload(ctx, data, extension)
	if err != nil {
		c.toIdleLocked()
		return audio.Blob{}, err
	}
	c.blob = blob
	c.result = nil
	c.state = StateSaved
	slog.Info("upload loaded", "extension", extension, "bytes", len(blob.Data), "duration", blob.Duration)
	return blob, nil
}

// Submit sends the pending blob to the relay. The blob is consumed on a
// successful reply; a transport failure keeps it for a retry.
func (c *Checker) Submit(ctx context.Context, referenceText, language string) (verify.Response, error) {
	if strings.TrimSpace(referenceText) == "" {
		return verify.Response{}, ErrTextRequired
	}
	lang, err := verify.ParseLanguage(language)
	if err != nil {
		return verify.Response{}, err
	}

	c.mu.Lock()
	if c.state != StateSaved || c.blob.Empty() {
		c.mu.Unlock()
		return verify.Response{}, ErrNoAudio
	}
	blob := c.blob
	c.state = StateSubmitted
	c.mu.Unlock()

	resp, err := c.relay.Verify(ctx, blob, referenceText, lang)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateSubmitted {
		// Reset ran while the relay call was in flight; its idle state wins.
		return verify.Response{}, fmt.Errorf("%w: reset during submit", ErrWrongState)
	}
	if err != nil {
		c.state = StateSaved
		return verify.Response{}, err
	}
	c.blob = audio.Blob{}
	c.result = &resp
	c.state = StateResult
	return resp, nil
}

// Reset abandons any recording, pending blob and result.
func (c *Checker) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toIdleLocked()
	c.result = nil
}

func (c *Checker) toIdleLocked() {
	if c.recorder != nil {
		c.recorder.Reset()
	}
	c.blob = audio.Blob{}
	c.state = StateIdle
}
