package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/foxseedlab/koecheck/internal/client"
	"github.com/foxseedlab/koecheck/internal/verify"
)

func TestRenderResponse_ShowsMatchAndWarning(t *testing.T) {
	detail := "no speech detected"
	var buf bytes.Buffer
	renderResponse(&buf, "hello world", verify.Response{Match: false, RecognizedText: "", Error: &detail})

	out := buf.String()
	if !strings.Contains(out, "No match") {
		t.Fatalf("expected no-match line, got %q", out)
	}
	if !strings.Contains(out, "warning: no speech detected") {
		t.Fatalf("expected warning line, got %q", out)
	}
}

func TestRenderResponse_Match(t *testing.T) {
	var buf bytes.Buffer
	renderResponse(&buf, "Hello World", verify.Response{Match: true, RecognizedText: "hello world"})
	out := buf.String()
	if !strings.Contains(out, "Match") || strings.Contains(out, "No match") {
		t.Fatalf("expected match line, got %q", out)
	}
	if strings.Contains(out, "warning") {
		t.Fatalf("unexpected warning: %q", out)
	}
}

func TestRenderError_TransportErrorShowsStatus(t *testing.T) {
	var buf bytes.Buffer
	err := fmt.Errorf("submit: %w", &client.TransportError{StatusCode: 503, Body: "upstream down"})
	renderError(&buf, err)
	out := buf.String()
	if !strings.Contains(out, "backend error 503") || !strings.Contains(out, "upstream down") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRenderError_Plain(t *testing.T) {
	var buf bytes.Buffer
	renderError(&buf, errors.New("boom"))
	if !strings.Contains(buf.String(), "error: boom") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
