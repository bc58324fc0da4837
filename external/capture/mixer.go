package capture

import "errors"

var errOpusUnavailable = errors.New("discord capture requires a build with -tags opus")

// opusMixer decodes per-speaker Opus packets and mixes them into one
// interleaved s16le stream at 48 kHz stereo.
type opusMixer interface {
	WriteOpusPacket(speakerID string, packet []byte)
	ReadMixedPCM(buf []byte) (int, error)
	Close()
}

const (
	discordSampleRate = 48000
	discordChannels   = 2
	discordFrameMs    = 20
	// Interleaved samples in one 20 ms Discord frame.
	discordFrameSamples = discordSampleRate * discordFrameMs * discordChannels / 1000
)
