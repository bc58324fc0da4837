package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record speech and check it against --text",
	Long:  `Starts capturing from the configured backend, stops on Enter or Ctrl+C, then sends the recording to the relay.`,
	Args:  cobra.NoArgs,
	RunE:  runRecord,
}

func init() {
	recordCmd.Flags().StringP("text", "t", "", "Reference text the speaker should say")
	recordCmd.Flags().StringP("language", "l", "English", "Language of the reference text: English or Hindi")
}

func runRecord(cmd *cobra.Command, _ []string) error {
	text, err := requireFlag(cmd, "text")
	if err != nil {
		return err
	}
	language, err := languageFlag(cmd)
	if err != nil {
		return err
	}

	checker, _, err := newChecker(true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The capture goroutine outlives the signal context so that Ctrl+C ends
	// the recording rather than discarding it.
	if err := checker.StartRecording(context.WithoutCancel(ctx), text); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, promptStyle.Render("Recording... press Enter to stop."))

	enter := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
		close(enter)
	}()
	select {
	case <-enter:
	case <-ctx.Done():
	}
	stop()

	blob, err := checker.StopRecording()
	if err != nil {
		return fmt.Errorf("recording failed: %w", err)
	}
	slog.Debug("submitting recording", "duration", blob.Duration, "bytes", len(blob.Data))

	resp, err := checker.Submit(cmd.Context(), text, language)
	if err != nil {
		return err
	}
	renderResponse(os.Stdout, text, resp)
	return nil
}
