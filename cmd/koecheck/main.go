package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	captureimpl "github.com/foxseedlab/koecheck/external/capture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "koecheck",
	Short:         "Check whether spoken audio matches a reference text",
	Long:          `koecheck records or uploads speech, sends it to a koecheck relay and reports whether the transcript matches the reference text (English or Hindi).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(viper.GetBool("debug"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("relay-url", "http://127.0.0.1:8000", "Base URL of the koecheck relay")
	flags.Duration("request-timeout", 60*time.Second, "Timeout for one relay request")
	flags.String("capture-backend", "command", "Capture backend: command or discord")
	flags.String("capture-command", captureimpl.DefaultRecorderCommand, "Recorder command writing raw s16le to stdout; {sample_rate} and {channels} are substituted")
	flags.Int("capture-sample-rate", captureimpl.DefaultSampleRate, "Sample rate requested from the recorder")
	flags.Int("capture-channels", captureimpl.DefaultChannels, "Channel count requested from the recorder")
	flags.Int("capture-chunk-frames", captureimpl.DefaultChunkFrames, "Frames per captured chunk")
	flags.String("decoder-command", "", "Command converting {input} to canonical WAV at {output} (default: ffmpeg)")
	flags.String("discord-token", "", "Discord bot token for the discord backend")
	flags.String("discord-guild-id", "", "Discord guild to join")
	flags.String("discord-vc-id", "", "Discord voice channel to join (default: the channel of --discord-user-id)")
	flags.String("discord-user-id", "", "Only capture this Discord user (default: everyone in the channel)")
	flags.Bool("debug", false, "Enable debug logging")

	for _, name := range []string{
		"relay-url", "request-timeout", "capture-backend", "capture-command",
		"capture-sample-rate", "capture-channels", "capture-chunk-frames", "decoder-command",
		"discord-token", "discord-guild-id", "discord-vc-id", "discord-user-id", "debug",
	} {
		_ = viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(historyCmd)
}

func initConfig() {
	viper.SetEnvPrefix("koecheck")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("koecheck")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, "koecheck"))
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "failed to read config file: %v\n", err)
		}
	}
}

func initLogger(debug bool) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "koecheck",
	})
	logger.SetLevel(log.InfoLevel)
	if debug {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportCaller(true)
	}
	slog.SetDefault(slog.New(logger))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		renderError(os.Stderr, err)
		os.Exit(1)
	}
}
