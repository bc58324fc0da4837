package audio

import (
	"errors"
	"testing"
	"time"
)

func sinePCM(frames, channels int) []int16 {
	samples := make([]int16, frames*channels)
	for i := 0; i < frames; i++ {
		v := int16((i%64 - 32) * 512)
		for c := 0; c < channels; c++ {
			samples[i*channels+c] = v
		}
	}
	return samples
}

func TestEncodeDecodeWAV(t *testing.T) {
	f := Format{SampleRate: 44100, Channels: 1}
	pcm := samplesToPCM(sinePCM(4410, 1))

	data, err := EncodeWAV(pcm, f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("unexpected container header: %q", data[:12])
	}

	got, gotFormat, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gotFormat != f {
		t.Fatalf("unexpected format: %v", gotFormat)
	}
	if len(got) != len(pcm) {
		t.Fatalf("expected %d pcm bytes, got %d", len(pcm), len(got))
	}
	for i := range pcm {
		if got[i] != pcm[i] {
			t.Fatalf("pcm mismatch at byte %d", i)
		}
	}
}

func TestEncodeWAV_RejectsMisalignedPCM(t *testing.T) {
	if _, err := EncodeWAV([]byte{1, 2, 3}, Format{SampleRate: 16000, Channels: 2}); err == nil {
		t.Fatal("expected error for misaligned pcm")
	}
}

func TestDecodeWAV_Garbage(t *testing.T) {
	_, _, err := DecodeWAV([]byte("definitely not a wav file"))
	if !errors.Is(err, ErrMalformedContainer) {
		t.Fatalf("expected ErrMalformedContainer, got %v", err)
	}
	_, _, err = DecodeWAV(nil)
	if !errors.Is(err, ErrMalformedContainer) {
		t.Fatalf("expected ErrMalformedContainer for empty input, got %v", err)
	}
}

func TestConvert_StereoToCanonical(t *testing.T) {
	from := Format{SampleRate: 48000, Channels: 2}
	pcm := samplesToPCM(sinePCM(48000, 2))

	out, err := Convert(pcm, from, Canonical)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := Canonical.Duration(len(out)); got != time.Second {
		t.Fatalf("expected 1s of canonical audio, got %v", got)
	}
}

func TestConvert_DownmixAverages(t *testing.T) {
	from := Format{SampleRate: 16000, Channels: 2}
	pcm := samplesToPCM([]int16{1000, 3000, -2000, 0})

	out, err := Convert(pcm, from, Canonical)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	got := pcmToSamples(out)
	if len(got) != 2 || got[0] != 2000 || got[1] != -1000 {
		t.Fatalf("unexpected downmix: %v", got)
	}
}

func TestCanonicalBlob(t *testing.T) {
	src, err := EncodeWAV(samplesToPCM(sinePCM(22050, 2)), Format{SampleRate: 44100, Channels: 2})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	blob, err := CanonicalBlob(src, SourceUploaded)
	if err != nil {
		t.Fatalf("canonical blob: %v", err)
	}
	_, f, err := DecodeWAV(blob.Data)
	if err != nil {
		t.Fatalf("decode canonical: %v", err)
	}
	if f != Canonical {
		t.Fatalf("expected canonical format, got %v", f)
	}
	if blob.Duration != 500*time.Millisecond {
		t.Fatalf("unexpected duration hint: %v", blob.Duration)
	}
	if blob.Source != SourceUploaded {
		t.Fatalf("unexpected source: %s", blob.Source)
	}
}

func TestToCanonical_NoSamples(t *testing.T) {
	src, err := EncodeWAV(nil, Canonical)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := ToCanonical(src); !errors.Is(err, ErrNoSamples) && !errors.Is(err, ErrMalformedContainer) {
		t.Fatalf("expected empty audio to be rejected, got %v", err)
	}
}
