package audio

import (
	"fmt"
	"time"
)

const (
	CanonicalSampleRate = 16000
	CanonicalChannels   = 1

	// All PCM handled by this module is signed 16-bit little-endian.
	bytesPerSample = 2
)

// Format describes interleaved s16le PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// Canonical is the single format sent to transcription providers.
var Canonical = Format{SampleRate: CanonicalSampleRate, Channels: CanonicalChannels}

func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("channel count must be positive, got %d", f.Channels)
	}
	return nil
}

// FrameBytes is the size of one sample across all channels.
func (f Format) FrameBytes() int {
	return f.Channels * bytesPerSample
}

func (f Format) Duration(pcmBytes int) time.Duration {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return 0
	}
	frames := pcmBytes / f.FrameBytes()
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/s16le", f.SampleRate, f.Channels)
}
