package client

import (
	"context"
	"fmt"

	"github.com/foxseedlab/koecheck/internal/audio"
	"github.com/foxseedlab/koecheck/internal/normalizer"
	"github.com/foxseedlab/koecheck/internal/verify"
)

// TransportError is a non-200 reply from the relay. It never means "no match".
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend error %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Body)
}

type Relay interface {
	Verify(ctx context.Context, blob audio.Blob, referenceText string, language verify.Language) (verify.Response, error)
	ListVerifications(ctx context.Context, limit int) ([]verify.HistoryEntry, error)
}

// Recorder is satisfied by *capture.Session.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() ([][]byte, error)
	Materialize() (audio.Blob, error)
	Reset()
}

// Normalizer is satisfied by *normalizer.Normalizer.
type Normalizer interface {
	FromUpload(ctx context.Context, data []byte, declaredExtension string) (audio.Blob, error)
	FromSession(session normalizer.Materializer) (audio.Blob, error)
}
