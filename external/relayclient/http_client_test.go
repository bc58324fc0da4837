package relayclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foxseedlab/koecheck/internal/audio"
	"github.com/foxseedlab/koecheck/internal/client"
	"github.com/foxseedlab/koecheck/internal/verify"
)

func TestVerify_PostsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/check-speech/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart: %v", err)
		}
		if r.FormValue("text") != "hello world" || r.FormValue("language") != "Hindi" {
			t.Errorf("unexpected fields: %v", r.MultipartForm.Value)
		}
		f, header, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("missing audio: %v", err)
		} else {
			data, _ := io.ReadAll(f)
			if string(data) != "RIFFDATA" || header.Filename != "audio.wav" {
				t.Errorf("unexpected audio part: %q %q", data, header.Filename)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"match":false,"recognized_text":"","error":"no speech"}`))
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL+"/", time.Second)
	resp, err := c.Verify(context.Background(), audio.Blob{Data: []byte("RIFFDATA")}, "hello world", verify.Hindi)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if resp.Match || resp.Error == nil || *resp.Error != "no speech" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestVerify_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "missing text", http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, time.Second)
	_, err := c.Verify(context.Background(), audio.Blob{Data: []byte("RIFF")}, "x", verify.English)
	var te *client.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.StatusCode != http.StatusBadRequest || te.Body != "missing text" {
		t.Fatalf("unexpected transport error: %+v", te)
	}
}

func TestListVerifications(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verifications" || r.URL.Query().Get("limit") != "7" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a","language":"English","language_code":"en-US","match":true,"created_at":"2026-03-01T00:00:00Z"}]`))
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, time.Second)
	list, err := c.ListVerifications(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListVerifications returned error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "a" || !list[0].Match {
		t.Fatalf("unexpected list: %+v", list)
	}
}
