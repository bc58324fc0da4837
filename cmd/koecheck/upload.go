package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Check an audio file against --text",
	Long:  `Converts FILE (wav, mp3, ogg, flac, m4a or wma) to canonical audio and sends it to the relay.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringP("text", "t", "", "Reference text the speaker should say")
	uploadCmd.Flags().StringP("language", "l", "English", "Language of the reference text: English or Hindi")
}

func runUpload(cmd *cobra.Command, args []string) error {
	text, err := requireFlag(cmd, "text")
	if err != nil {
		return err
	}
	language, err := languageFlag(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	checker, _, err := newChecker(false)
	if err != nil {
		return err
	}
	blob, err := checker.LoadUpload(cmd.Context(), data, filepath.Ext(path))
	if err != nil {
		return err
	}
	slog.Debug("submitting upload", "path", path, "duration", blob.Duration)

	resp, err := checker.Submit(cmd.Context(), text, language)
	if err != nil {
		return err
	}
	renderResponse(os.Stdout, text, resp)
	return nil
}
