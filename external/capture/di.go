package capture

import (
	"fmt"

	"github.com/foxseedlab/koecheck/internal/capture"
	"github.com/foxseedlab/koecheck/internal/config"
	"github.com/samber/do/v2"
)

// RegisterDI is the single backend-selection point for capture devices.
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (capture.Device, error) {
		c := do.MustInvoke[*config.ClientConfig](i)
		switch c.CaptureBackend {
		case config.CaptureBackendCommand:
			return NewCommandDevice(c.CaptureCommand, c.CaptureFormat, c.ChunkFrames)
		case config.CaptureBackendDiscord:
			return NewDiscordDevice(DiscordConfig{
				Token:         c.DiscordToken,
				GuildID:       c.DiscordGuildID,
				ChannelID:     c.DiscordVCID,
				SpeakerUserID: c.DiscordUserID,
			})
		default:
			return nil, fmt.Errorf("unknown capture backend %q", c.CaptureBackend)
		}
	})
	do.Provide(injector, func(i do.Injector) (*capture.Session, error) {
		return capture.NewSession(do.MustInvoke[capture.Device](i)), nil
	})
}
