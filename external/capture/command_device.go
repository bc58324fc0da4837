package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/foxseedlab/koecheck/internal/audio"
	"github.com/foxseedlab/koecheck/internal/capture"
	"github.com/mattn/go-shellwords"
)

// DefaultRecorderCommand records raw s16le from the default ALSA device.
const DefaultRecorderCommand = "arecord -q -t raw -f S16_LE -r {sample_rate} -c {channels}"

const (
	DefaultSampleRate  = 44100
	DefaultChannels    = 1
	DefaultChunkFrames = 1024
)

// CommandDevice captures from a recorder process that writes raw s16le PCM
// to stdout in the device format.
type CommandDevice struct {
	args        []string
	format      audio.Format
	chunkFrames int
	busy        atomic.Bool
}

func NewCommandDevice(command string, format audio.Format, chunkFrames int) (*CommandDevice, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if chunkFrames <= 0 {
		return nil, fmt.Errorf("chunk frames must be positive, got %d", chunkFrames)
	}
	if strings.TrimSpace(command) == "" {
		command = DefaultRecorderCommand
	}
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse recorder command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("recorder command is empty")
	}
	for i, a := range args {
		a = strings.ReplaceAll(a, "{sample_rate}", strconv.Itoa(format.SampleRate))
		args[i] = strings.ReplaceAll(a, "{channels}", strconv.Itoa(format.Channels))
	}
	return &CommandDevice{args: args, format: format, chunkFrames: chunkFrames}, nil
}

func (d *CommandDevice) Format() audio.Format {
	return d.format
}

func (d *CommandDevice) Open(_ context.Context) (capture.Stream, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return nil, capture.ErrDeviceBusy
	}

	// The process outlives Open; its lifetime is bound to the stream.
	cmd := exec.Command(d.args[0], d.args[1:]...)
	stderr := &limitedBuffer{limit: 4096}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		d.busy.Store(false)
		return nil, fmt.Errorf("recorder stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		d.busy.Store(false)
		return nil, fmt.Errorf("start recorder %s: %w", d.args[0], err)
	}
	slog.Debug("recorder started", "command", d.args[0], "pid", cmd.Process.Pid, "format", d.format.String())

	return &commandStream{
		device:     d,
		cmd:        cmd,
		stdout:     stdout,
		stderr:     stderr,
		chunkBytes: d.chunkFrames * d.format.FrameBytes(),
	}, nil
}

type commandStream struct {
	device     *CommandDevice
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	stderr     *limitedBuffer
	chunkBytes int
	closeOnce  sync.Once
	closeErr   error
}

// ReadChunk blocks for one full chunk. Cancelling ctx closes the pipe so a
// silent recorder cannot block Stop.
func (s *commandStream) ReadChunk(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = s.stdout.Close()
	})
	defer stop()

	buf := make([]byte, s.chunkBytes)
	n, err := io.ReadFull(s.stdout, buf)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return buf[:n], nil
	case errors.Is(err, io.EOF):
		if msg := s.stderr.String(); msg != "" {
			slog.Warn("recorder exited", "stderr", msg)
		}
		return nil, io.EOF
	default:
		return nil, fmt.Errorf("read recorder output: %w", err)
	}
}

func (s *commandStream) Close() error {
	s.closeOnce.Do(func() {
		defer s.device.busy.Store(false)
		_ = s.stdout.Close()
		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			slog.Warn("failed to stop recorder", "pid", s.cmd.Process.Pid, "error", err)
		}
		if err := s.cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				s.closeErr = fmt.Errorf("wait for recorder: %w", err)
			}
		}
	})
	return s.closeErr
}

// limitedBuffer keeps the head of the recorder's stderr for diagnostics.
type limitedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}
