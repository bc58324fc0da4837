//go:build opus

package capture

import (
	"encoding/binary"
	"log/slog"
	"sync"

	"github.com/hraban/opus"
)

type speakerMixer struct {
	mu       sync.Mutex
	decoders map[string]*opus.Decoder
	queues   map[string][][]int16
	closed   bool
}

func newOpusMixer() (opusMixer, error) {
	return &speakerMixer{
		decoders: make(map[string]*opus.Decoder),
		queues:   make(map[string][][]int16),
	}, nil
}

func (m *speakerMixer) WriteOpusPacket(speakerID string, packet []byte) {
	if len(packet) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	dec, ok := m.decoders[speakerID]
	if !ok {
		var err error
		dec, err = opus.NewDecoder(discordSampleRate, discordChannels)
		if err != nil {
			slog.Warn("failed to create opus decoder", "speaker_id", speakerID, "error", err)
			return
		}
		m.decoders[speakerID] = dec
	}
	pcm := make([]int16, discordFrameSamples)
	n, err := dec.Decode(packet, pcm)
	if err != nil {
		slog.Debug("dropping undecodable opus packet", "speaker_id", speakerID, "error", err)
		return
	}
	if n <= 0 {
		return
	}
	total := min(n*discordChannels, discordFrameSamples)
	m.queues[speakerID] = append(m.queues[speakerID], pcm[:total])
}

// ReadMixedPCM mixes the oldest queued frame of every speaker. It returns 0
// when nothing is queued.
func (m *speakerMixer) ReadMixedPCM(buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, nil
	}
	mixed := make([]int32, discordFrameSamples)
	queued := false
	for id, q := range m.queues {
		if len(q) == 0 {
			continue
		}
		queued = true
		for i, v := range q[0] {
			mixed[i] += int32(v)
		}
		m.queues[id] = q[1:]
	}
	if !queued {
		return 0, nil
	}
	n := min(len(buf)/2, discordFrameSamples)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(clampPCM(mixed[i])))
	}
	return n * 2, nil
}

func clampPCM(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func (m *speakerMixer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.decoders = nil
	m.queues = nil
}
