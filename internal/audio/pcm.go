package audio

import (
	"encoding/binary"
	"fmt"
)

func pcmToSamples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/bytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*bytesPerSample:]))
	}
	return samples
}

func samplesToPCM(samples []int16) []byte {
	pcm := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*bytesPerSample:], uint16(s))
	}
	return pcm
}

// Convert remixes and resamples interleaved PCM from one format to another.
// Downmixing averages channels; resampling interpolates linearly.
func Convert(pcm []byte, from, to Format) ([]byte, error) {
	if err := from.Validate(); err != nil {
		return nil, fmt.Errorf("source format: %w", err)
	}
	if err := to.Validate(); err != nil {
		return nil, fmt.Errorf("target format: %w", err)
	}
	if len(pcm)%from.FrameBytes() != 0 {
		return nil, fmt.Errorf("pcm length %d is not a multiple of frame size %d", len(pcm), from.FrameBytes())
	}
	if from == to {
		out := make([]byte, len(pcm))
		copy(out, pcm)
		return out, nil
	}
	mono := downmix(pcmToSamples(pcm), from.Channels)
	resampled := resample(mono, from.SampleRate, to.SampleRate)
	return samplesToPCM(upmix(resampled, to.Channels)), nil
}

func downmix(samples []int16, channels int) []int16 {
	if channels == 1 {
		return samples
	}
	frames := len(samples) / channels
	out := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int32
		for c := 0; c < channels; c++ {
			sum += int32(samples[i*channels+c])
		}
		out[i] = int16(sum / int32(channels))
	}
	return out
}

func upmix(mono []int16, channels int) []int16 {
	if channels == 1 {
		return mono
	}
	out := make([]int16, len(mono)*channels)
	for i, s := range mono {
		for c := 0; c < channels; c++ {
			out[i*channels+c] = s
		}
	}
	return out
}

func resample(mono []int16, fromRate, toRate int) []int16 {
	if fromRate == toRate || len(mono) == 0 {
		return mono
	}
	outLen := int(int64(len(mono)) * int64(toRate) / int64(fromRate))
	if outLen == 0 {
		outLen = 1
	}
	out := make([]int16, outLen)
	step := float64(fromRate) / float64(toRate)
	last := len(mono) - 1
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= last {
			out[i] = mono[last]
			continue
		}
		frac := pos - float64(idx)
		a, b := float64(mono[idx]), float64(mono[idx+1])
		out[i] = int16(a + (b-a)*frac)
	}
	return out
}
