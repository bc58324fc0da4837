package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foxseedlab/koecheck/internal/audio"
)

const (
	readErrorBackoff = 10 * time.Millisecond
	// After this many failed reads in a row the device is treated as gone,
	// the same as end of stream.
	maxConsecutiveReadErrors = 5
)

// Session manages one start→record→stop→materialize cycle.
type Session struct {
	device Device
	format audio.Format

	mu       sync.Mutex
	active   bool
	frames   [][]byte
	cancel   context.CancelFunc
	done     chan captureResult
	captured atomic.Int64
	dropped  atomic.Int64
}

type captureResult struct {
	frames [][]byte
}

func NewSession(device Device) *Session {
	return &Session{
		device: device,
		format: device.Format(),
	}
}

func (s *Session) Format() audio.Format {
	return s.format
}

func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Stats reports chunks captured and dropped by the current or last recording.
func (s *Session) Stats() (captured, dropped int64) {
	return s.captured.Load(), s.dropped.Load()
}

// Start discards any unsaved frames, acquires the device and begins capturing
// in the background. It fails with ErrAlreadyRecording while active.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrAlreadyRecording
	}
	if len(s.frames) > 0 {
		slog.Info("discarding unsaved recording", "frames", len(s.frames))
	}
	s.frames = nil
	s.captured.Store(0)
	s.dropped.Store(0)

	stream, err := s.device.Open(ctx)
	if err != nil {
		return fmt.Errorf("open input device: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan captureResult, 1)
	s.active = true
	s.cancel = cancel
	s.done = done
	go s.capture(loopCtx, stream, done)
	slog.Info("recording started", "format", s.format.String())
	return nil
}

// Stop signals the capture loop, waits for it to release the device and
// returns the captured frames in order.
func (s *Session) Stop() ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil, ErrNotRecording
	}
	s.cancel()
	result := <-s.done
	s.active = false
	s.cancel = nil
	s.done = nil
	s.frames = result.frames

	captured, dropped := s.Stats()
	slog.Info("recording stopped", "frames", len(s.frames), "captured_chunks", captured, "dropped_chunks", dropped)

	out := make([][]byte, len(s.frames))
	copy(out, s.frames)
	return out, nil
}

// Materialize encodes the stopped recording into a WAV blob at the session
// format. Frames are consumed: a second call fails with ErrEmptyRecording.
func (s *Session) Materialize() (audio.Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return audio.Blob{}, ErrStillRecording
	}
	if len(s.frames) == 0 {
		return audio.Blob{}, ErrEmptyRecording
	}
	pcm := bytes.Join(s.frames, nil)
	s.frames = nil

	// A device may deliver a short final chunk.
	pcm = pcm[:len(pcm)-len(pcm)%s.format.FrameBytes()]
	if len(pcm) == 0 {
		return audio.Blob{}, ErrEmptyRecording
	}
	data, err := audio.EncodeWAV(pcm, s.format)
	if err != nil {
		return audio.Blob{}, fmt.Errorf("encode recording: %w", err)
	}
	return audio.Blob{
		Data:     data,
		Duration: s.format.Duration(len(pcm)),
		Source:   audio.SourceRecorded,
	}, nil
}

// Reset stops any active recording and drops buffered frames.
func (s *Session) Reset() {
	if _, err := s.Stop(); err != nil && !errors.Is(err, ErrNotRecording) {
		slog.Warn("failed to stop recording during reset", "error", err)
	}
	s.mu.Lock()
	s.frames = nil
	s.mu.Unlock()
}

func (s *Session) capture(ctx context.Context, stream Stream, done chan<- captureResult) {
	var result captureResult
	defer func() {
		if err := stream.Close(); err != nil {
			slog.Warn("failed to release input device", "error", err)
		}
		done <- result
	}()

	failures := 0
	for ctx.Err() == nil {
		chunk, err := stream.ReadChunk(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				slog.Info("input device reached end of stream")
				return
			}
			n := s.dropped.Add(1)
			failures++
			slog.Warn("dropping audio chunk after read error", "error", err, "dropped_chunks", n, "consecutive_failures", failures)
			if failures >= maxConsecutiveReadErrors {
				slog.Error("input device keeps failing, ending capture", "error", err, "consecutive_failures", failures)
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(readErrorBackoff << (failures - 1)):
			}
			continue
		}
		failures = 0
		if len(chunk) == 0 {
			continue
		}
		result.frames = append(result.frames, chunk)
		s.captured.Add(1)
	}
}
