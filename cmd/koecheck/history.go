package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent verifications stored by the relay",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	_, relay, err := newChecker(false)
	if err != nil {
		return err
	}
	entries, err := relay.ListVerifications(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No verifications recorded yet.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"When", "Lang", "Reference", "Recognized", "Result", "Audio", "Provider"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, e := range entries {
		result := "match"
		switch {
		case e.ErrorKind != "":
			result = e.ErrorKind
		case !e.Match:
			result = "mismatch"
		}
		table.Append([]string{
			e.CreatedAt.Local().Format(time.DateTime),
			e.LanguageCode,
			e.ReferenceText,
			e.RecognizedText,
			result,
			strconv.FormatFloat(e.AudioSeconds, 'f', 1, 64) + "s",
			strconv.FormatInt(e.ProviderMillis, 10) + "ms",
		})
	}
	table.Render()
	return nil
}
