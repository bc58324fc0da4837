package decoder

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/foxseedlab/koecheck/internal/normalizer"
)

func TestNewCommandDecoder_RequiresPlaceholders(t *testing.T) {
	if _, err := NewCommandDecoder("ffmpeg -i in.mp3 out.wav", ""); err == nil {
		t.Fatal("expected error when placeholders are missing")
	}
	if _, err := NewCommandDecoder("ffmpeg -i '{input}", ""); err == nil {
		t.Fatal("expected parse error for unbalanced quotes")
	}
	if _, err := NewCommandDecoder("", ""); err != nil {
		t.Fatalf("default command must be valid: %v", err)
	}
}

func TestDecode_RunsCommandAndCleansUp(t *testing.T) {
	staging := t.TempDir()
	d, err := NewCommandDecoder("cp {input} {output}", staging)
	if err != nil {
		t.Fatalf("NewCommandDecoder returned error: %v", err)
	}

	want := []byte("decoded-bytes")
	got, err := d.Decode(context.Background(), want, ".mp3")
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("unexpected output: %q", got)
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging directory was not cleaned up: %d entries left", len(entries))
	}
}

func TestDecode_CommandFailureCleansUp(t *testing.T) {
	staging := t.TempDir()
	d, err := NewCommandDecoder("false {input} {output}", staging)
	if err != nil {
		t.Fatalf("NewCommandDecoder returned error: %v", err)
	}
	if _, err := d.Decode(context.Background(), []byte("x"), "ogg"); err == nil {
		t.Fatal("expected error from failing command")
	}
	entries, _ := os.ReadDir(staging)
	if len(entries) != 0 {
		t.Fatalf("staging directory was not cleaned up: %d entries left", len(entries))
	}
}

func TestDecode_MissingBinary(t *testing.T) {
	d, err := NewCommandDecoder("koecheck-no-such-decoder {input} {output}", t.TempDir())
	if err != nil {
		t.Fatalf("NewCommandDecoder returned error: %v", err)
	}
	_, err = d.Decode(context.Background(), []byte("x"), "flac")
	if !errors.Is(err, normalizer.ErrDecoderUnavailable) {
		t.Fatalf("expected ErrDecoderUnavailable, got %v", err)
	}
}
