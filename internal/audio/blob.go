package audio

import "time"

type SourceKind string

const (
	SourceRecorded SourceKind = "recorded"
	SourceUploaded SourceKind = "uploaded"
)

// Blob is a complete WAV container ready for transmission.
type Blob struct {
	Data     []byte
	Duration time.Duration
	Source   SourceKind
}

func (b Blob) Empty() bool {
	return len(b.Data) == 0
}
