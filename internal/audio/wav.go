package audio

import (
	"bytes"
	"errors"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

var (
	ErrMalformedContainer = errors.New("audio is not a decodable PCM WAV container")
	ErrNoSamples          = errors.New("audio contains no samples")
)

// EncodeWAV wraps s16le PCM into a complete RIFF/WAVE container.
func EncodeWAV(pcm []byte, f Format) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(pcm)%f.FrameBytes() != 0 {
		return nil, fmt.Errorf("pcm length %d is not a multiple of frame size %d", len(pcm), f.FrameBytes())
	}
	samples := pcmToSamples(pcm)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	out := &memWriteSeeker{}
	enc := wav.NewEncoder(out, f.SampleRate, 16, f.Channels, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}
	return out.Bytes(), nil
}

// DecodeWAV reads an integer PCM WAV container of any common bit depth and
// returns its samples as s16le together with the container's format.
func DecodeWAV(data []byte) ([]byte, Format, error) {
	if len(data) == 0 {
		return nil, Format{}, ErrMalformedContainer
	}
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, Format{}, ErrMalformedContainer
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, Format{}, fmt.Errorf("%w: wav audio format %d is not integer PCM", ErrMalformedContainer, dec.WavAudioFormat)
	}
	f := Format{SampleRate: int(dec.SampleRate), Channels: int(dec.NumChans)}
	if err := f.Validate(); err != nil {
		return nil, Format{}, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, Format{}, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		s, err := toInt16(v, int(dec.BitDepth))
		if err != nil {
			return nil, Format{}, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
		}
		samples[i] = s
	}
	// Drop a trailing partial frame rather than reject the container.
	samples = samples[:len(samples)-len(samples)%f.Channels]
	return samplesToPCM(samples), f, nil
}

func toInt16(v, bitDepth int) (int16, error) {
	switch bitDepth {
	case 8:
		// 8-bit WAV samples are unsigned.
		return int16((v - 128) << 8), nil
	case 16:
		return int16(v), nil
	case 24:
		return int16(v >> 8), nil
	case 32:
		return int16(v >> 16), nil
	default:
		return 0, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
}

// ToCanonical decodes a WAV container and converts it to the canonical format.
func ToCanonical(data []byte) ([]byte, error) {
	pcm, f, err := DecodeWAV(data)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, ErrNoSamples
	}
	return Convert(pcm, f, Canonical)
}

// CanonicalBlob re-encodes any PCM WAV container to the canonical format.
func CanonicalBlob(data []byte, source SourceKind) (Blob, error) {
	pcm, err := ToCanonical(data)
	if err != nil {
		return Blob{}, err
	}
	encoded, err := EncodeWAV(pcm, Canonical)
	if err != nil {
		return Blob{}, err
	}
	return Blob{Data: encoded, Duration: Canonical.Duration(len(pcm)), Source: source}, nil
}
