package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/foxseedlab/koecheck/internal/client"
	"github.com/foxseedlab/koecheck/internal/verify"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	matchStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	missStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func renderResponse(w io.Writer, referenceText string, resp verify.Response) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Expected:  "), referenceText)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Recognized:"), resp.RecognizedText)
	if resp.Match {
		fmt.Fprintln(w, matchStyle.Render("✔ Match"))
	} else {
		fmt.Fprintln(w, missStyle.Render("✘ No match"))
	}
	if resp.Error != nil {
		fmt.Fprintln(w, warnStyle.Render("warning: "+*resp.Error))
	}
}

func renderError(w io.Writer, err error) {
	var te *client.TransportError
	if errors.As(err, &te) {
		fmt.Fprintln(w, missStyle.Render(fmt.Sprintf("backend error %d", te.StatusCode)))
		if te.Body != "" {
			fmt.Fprintln(w, te.Body)
		}
		return
	}
	fmt.Fprintln(w, missStyle.Render("error: "+err.Error()))
}
