package capture

import (
	"context"
	"errors"

	"github.com/foxseedlab/koecheck/internal/audio"
)

var (
	ErrAlreadyRecording = errors.New("recording is already in progress")
	ErrNotRecording     = errors.New("no recording is in progress")
	ErrStillRecording   = errors.New("recording must be stopped before it can be saved")
	ErrEmptyRecording   = errors.New("no audio frames were recorded; check that the microphone is working")
	ErrDeviceBusy       = errors.New("input device is held by another recording")
)

// Device is a microphone-like input source. Open acquires an exclusive
// handle; a second Open before the stream is closed fails with ErrDeviceBusy.
type Device interface {
	Format() audio.Format
	Open(ctx context.Context) (Stream, error)
}

// Stream yields fixed-duration s16le chunks in capture order. ReadChunk
// returns io.EOF once the source is exhausted and ctx.Err() after ctx is done.
type Stream interface {
	ReadChunk(ctx context.Context) ([]byte, error)
	Close() error
}
