package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/foxseedlab/koecheck/internal/audio"
)

const (
	CaptureBackendCommand = "command"
	CaptureBackendDiscord = "discord"
)

type ClientConfig struct {
	Debug          bool
	RelayURL       string
	RequestTimeout time.Duration
	CaptureBackend string
	CaptureCommand string
	CaptureFormat  audio.Format
	ChunkFrames    int
	DecoderCommand string
	DiscordToken   string
	DiscordGuildID string
	DiscordVCID    string
	DiscordUserID  string
}

func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.RelayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("relay url %q is invalid", c.RelayURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	switch c.CaptureBackend {
	case CaptureBackendCommand:
		if c.CaptureCommand == "" {
			return fmt.Errorf("capture command is required for the command backend")
		}
		if err := c.CaptureFormat.Validate(); err != nil {
			return fmt.Errorf("capture format: %w", err)
		}
		if c.ChunkFrames <= 0 {
			return fmt.Errorf("chunk frames must be positive, got %d", c.ChunkFrames)
		}
	case CaptureBackendDiscord:
		if c.DiscordToken == "" || c.DiscordGuildID == "" {
			return fmt.Errorf("discord token and guild id are required for the discord backend")
		}
		if c.DiscordVCID == "" && c.DiscordUserID == "" {
			return fmt.Errorf("discord voice channel id or user id is required for the discord backend")
		}
	default:
		return fmt.Errorf("unknown capture backend %q (want %s or %s)", c.CaptureBackend, CaptureBackendCommand, CaptureBackendDiscord)
	}
	return nil
}
