package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func newLanguageCmd(t *testing.T, value string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("language", "English", "")
	if err := cmd.Flags().Set("language", value); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	return cmd
}

func TestLanguageFlag(t *testing.T) {
	got, err := languageFlag(newLanguageCmd(t, " hindi "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hindi" {
		t.Fatalf("expected Hindi, got %q", got)
	}

	if _, err := languageFlag(newLanguageCmd(t, "French")); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestRunRecord_RejectsLanguageBeforeCapture(t *testing.T) {
	cmd := newLanguageCmd(t, "French")
	cmd.Flags().String("text", "", "")
	if err := cmd.Flags().Set("text", "hello world"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	// No relay or capture device is configured; reaching them would fail
	// with a configuration error instead of the language error.
	err := runRecord(cmd, nil)
	if err == nil || err.Error() != `language "French" is not supported (want English or Hindi)` {
		t.Fatalf("expected language error, got %v", err)
	}
}
