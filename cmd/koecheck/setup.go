package main

import (
	"fmt"

	captureimpl "github.com/foxseedlab/koecheck/external/capture"
	"github.com/foxseedlab/koecheck/external/decoder"
	"github.com/foxseedlab/koecheck/external/relayclient"
	"github.com/foxseedlab/koecheck/internal/audio"
	"github.com/foxseedlab/koecheck/internal/capture"
	"github.com/foxseedlab/koecheck/internal/client"
	"github.com/foxseedlab/koecheck/internal/config"
	"github.com/foxseedlab/koecheck/internal/normalizer"
	"github.com/foxseedlab/koecheck/internal/verify"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func loadClientConfig() (*config.ClientConfig, error) {
	cfg := &config.ClientConfig{
		Debug:          viper.GetBool("debug"),
		RelayURL:       viper.GetString("relay_url"),
		RequestTimeout: viper.GetDuration("request_timeout"),
		CaptureBackend: viper.GetString("capture_backend"),
		CaptureCommand: viper.GetString("capture_command"),
		CaptureFormat: audio.Format{
			SampleRate: viper.GetInt("capture_sample_rate"),
			Channels:   viper.GetInt("capture_channels"),
		},
		ChunkFrames:    viper.GetInt("capture_chunk_frames"),
		DecoderCommand: viper.GetString("decoder_command"),
		DiscordToken:   viper.GetString("discord_token"),
		DiscordGuildID: viper.GetString("discord_guild_id"),
		DiscordVCID:    viper.GetString("discord_vc_id"),
		DiscordUserID:  viper.GetString("discord_user_id"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupDI(cfg *config.ClientConfig) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	captureimpl.RegisterDI(injector)
	decoder.RegisterDI(injector)
	normalizer.RegisterDI(injector)
	relayclient.RegisterDI(injector)

	return injector
}

// newChecker builds the per-invocation workflow. The capture device is only
// resolved when withRecorder is set, so uploads work without a microphone.
func newChecker(withRecorder bool) (*client.Checker, client.Relay, error) {
	cfg, err := loadClientConfig()
	if err != nil {
		return nil, nil, err
	}
	injector := setupDI(cfg)

	n, err := do.Invoke[*normalizer.Normalizer](injector)
	if err != nil {
		return nil, nil, err
	}
	relay, err := do.Invoke[client.Relay](injector)
	if err != nil {
		return nil, nil, err
	}
	var recorder client.Recorder
	if withRecorder {
		session, err := do.Invoke[*capture.Session](injector)
		if err != nil {
			return nil, nil, fmt.Errorf("set up %s capture: %w", cfg.CaptureBackend, err)
		}
		recorder = session
	}
	return client.NewChecker(recorder, n, relay), relay, nil
}

func requireFlag(cmd *cobra.Command, name string) (string, error) {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	return v, nil
}

// languageFlag validates --language up front so a bad value fails before any
// recording or decoding work.
func languageFlag(cmd *cobra.Command) (string, error) {
	v, err := cmd.Flags().GetString("language")
	if err != nil {
		return "", err
	}
	lang, err := verify.ParseLanguage(v)
	if err != nil {
		return "", err
	}
	return string(lang), nil
}
