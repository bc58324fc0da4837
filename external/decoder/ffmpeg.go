package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/foxseedlab/koecheck/internal/normalizer"
	"github.com/mattn/go-shellwords"
)

// DefaultCommand converts any ffmpeg-readable input to canonical WAV.
const DefaultCommand = "ffmpeg -hide_banner -loglevel error -nostdin -y -i {input} -ac 1 -ar 16000 -c:a pcm_s16le -f wav {output}"

const (
	inputPlaceholder  = "{input}"
	outputPlaceholder = "{output}"
)

type CommandDecoder struct {
	args    []string
	tempDir string
}

// NewCommandDecoder parses command once. It must reference {input} and
// {output}; tempDir may be empty to use the system default.
func NewCommandDecoder(command, tempDir string) (*CommandDecoder, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse decoder command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("decoder command is empty")
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, inputPlaceholder) || !strings.Contains(joined, outputPlaceholder) {
		return nil, fmt.Errorf("decoder command must reference %s and %s", inputPlaceholder, outputPlaceholder)
	}
	return &CommandDecoder{args: args, tempDir: tempDir}, nil
}

// Decode stages data in a directory owned by this call and removes it on
// every exit path.
func (d *CommandDecoder) Decode(ctx context.Context, data []byte, extension string) ([]byte, error) {
	if _, err := exec.LookPath(d.args[0]); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", normalizer.ErrDecoderUnavailable, d.args[0], err)
	}

	dir, err := os.MkdirTemp(d.tempDir, "koecheck-decode-*")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("failed to remove staging directory", "dir", dir, "error", err)
		}
	}()

	input := filepath.Join(dir, "input."+strings.TrimPrefix(extension, "."))
	output := filepath.Join(dir, "output.wav")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return nil, fmt.Errorf("stage input: %w", err)
	}

	args := make([]string, len(d.args))
	for i, a := range d.args {
		a = strings.ReplaceAll(a, inputPlaceholder, input)
		args[i] = strings.ReplaceAll(a, outputPlaceholder, output)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", normalizer.ErrDecoderUnavailable, err)
		}
		return nil, fmt.Errorf("decoder failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	out, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("read decoder output: %w", err)
	}
	slog.Debug("decoded upload", "extension", extension, "input_bytes", len(data), "output_bytes", len(out))
	return out, nil
}
