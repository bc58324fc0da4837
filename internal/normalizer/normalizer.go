package normalizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foxseedlab/koecheck/internal/audio"
)

var (
	ErrUnsupportedFormat  = errors.New("unsupported audio format")
	ErrDecoderUnavailable = errors.New("audio decoder is not available")
)

var supportedExtensions = []string{"wav", "mp3", "ogg", "flac", "m4a", "wma"}

// Decoder turns a compressed audio file into a PCM WAV container.
type Decoder interface {
	Decode(ctx context.Context, data []byte, extension string) ([]byte, error)
}

// Materializer is satisfied by a stopped capture.Session.
type Materializer interface {
	Materialize() (audio.Blob, error)
}

type Normalizer struct {
	decoder Decoder
}

// New returns a Normalizer. decoder may be nil, in which case only WAV
// uploads are accepted.
func New(decoder Decoder) *Normalizer {
	return &Normalizer{decoder: decoder}
}

func SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func IsSupportedExtension(ext string) bool {
	ext = normalizeExtension(ext)
	for _, s := range supportedExtensions {
		if s == ext {
			return true
		}
	}
	return false
}

// FromUpload decodes an uploaded file by its declared extension and
// re-encodes it to the canonical format.
func (n *Normalizer) FromUpload(ctx context.Context, data []byte, declaredExtension string) (audio.Blob, error) {
	ext := normalizeExtension(declaredExtension)
	if !IsSupportedExtension(ext) {
		return audio.Blob{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, declaredExtension)
	}
	if len(data) == 0 {
		return audio.Blob{}, fmt.Errorf("%w: file is empty", ErrUnsupportedFormat)
	}

	var (
		blob audio.Blob
		err  error
	)
	if ext == "wav" {
		blob, err = n.fromWAV(ctx, data)
	} else {
		blob, err = n.decode(ctx, data, ext)
	}
	if err != nil {
		return audio.Blob{}, err
	}
	slog.Debug("normalized upload", "extension", ext, "input_bytes", len(data), "output_bytes", len(blob.Data), "duration", blob.Duration)
	return blob, nil
}

// fromWAV decodes integer PCM WAV in-process. Containers the in-process
// reader rejects (WAVE_FORMAT_EXTENSIBLE, IEEE float) go through the decoder
// when one is configured.
func (n *Normalizer) fromWAV(ctx context.Context, data []byte) (audio.Blob, error) {
	blob, err := audio.CanonicalBlob(data, audio.SourceUploaded)
	if err == nil {
		return blob, nil
	}
	if n.decoder == nil {
		return audio.Blob{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	slog.Debug("in-process wav decode failed, falling back to decoder", "error", err)
	return n.decode(ctx, data, "wav")
}

func (n *Normalizer) decode(ctx context.Context, data []byte, ext string) (audio.Blob, error) {
	if n.decoder == nil {
		return audio.Blob{}, fmt.Errorf("%w: cannot decode .%s files", ErrDecoderUnavailable, ext)
	}
	decoded, err := n.decoder.Decode(ctx, data, ext)
	if err != nil {
		if errors.Is(err, ErrDecoderUnavailable) {
			return audio.Blob{}, err
		}
		return audio.Blob{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	blob, err := audio.CanonicalBlob(decoded, audio.SourceUploaded)
	if err != nil {
		return audio.Blob{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return blob, nil
}

// FromSession materializes a stopped recording and re-encodes it when the
// capture format differs from the canonical one.
func (n *Normalizer) FromSession(session Materializer) (audio.Blob, error) {
	blob, err := session.Materialize()
	if err != nil {
		return audio.Blob{}, err
	}
	pcm, f, err := audio.DecodeWAV(blob.Data)
	if err != nil {
		return audio.Blob{}, fmt.Errorf("decode recording: %w", err)
	}
	if f == audio.Canonical {
		return blob, nil
	}
	converted, err := audio.Convert(pcm, f, audio.Canonical)
	if err != nil {
		return audio.Blob{}, fmt.Errorf("convert recording: %w", err)
	}
	data, err := audio.EncodeWAV(converted, audio.Canonical)
	if err != nil {
		return audio.Blob{}, fmt.Errorf("encode recording: %w", err)
	}
	return audio.Blob{
		Data:     data,
		Duration: audio.Canonical.Duration(len(converted)),
		Source:   audio.SourceRecorded,
	}, nil
}
