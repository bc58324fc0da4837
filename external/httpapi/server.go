package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/foxseedlab/koecheck/internal/repository"
	"github.com/foxseedlab/koecheck/internal/verify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	multipartMemory     = 8 << 20
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

type Verifier interface {
	Verify(ctx context.Context, req verify.Request) verify.Result
}

type Server struct {
	verifier       Verifier
	repo           repository.Repository
	metrics        http.Handler
	maxUploadBytes int64
}

// NewServer builds the relay handler. repo and metrics may be nil.
func NewServer(v Verifier, repo repository.Repository, metrics http.Handler, maxUploadBytes int64) *Server {
	return &Server{
		verifier:       v,
		repo:           repo,
		metrics:        metrics,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/check-speech/", s.handleCheckSpeech)
	r.Post("/check-speech", s.handleCheckSpeech)
	r.Get("/verifications", s.handleListVerifications)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

func (s *Server) handleCheckSpeech(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUploadBytes {
		http.Error(w, fmt.Sprintf("request body exceeds %d bytes", s.maxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "request must be multipart/form-data", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("failed to remove multipart staging files", "error", err)
		}
	}()

	file, header, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "missing audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()
	waveform, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read audio file", http.StatusBadRequest)
		return
	}

	text := r.FormValue("text")
	if strings.TrimSpace(text) == "" {
		http.Error(w, "missing text", http.StatusBadRequest)
		return
	}
	language := r.FormValue("language")
	if strings.TrimSpace(language) == "" {
		http.Error(w, "missing language", http.StatusBadRequest)
		return
	}

	id := RequestIDFromContext(r.Context())
	slog.Info("verification requested", "request_id", id, "filename", header.Filename, "audio_bytes", len(waveform), "language", language)
	result := s.verifier.Verify(r.Context(), verify.Request{
		ID:            id,
		Waveform:      waveform,
		ReferenceText: text,
		Language:      language,
	})
	writeJSON(w, http.StatusOK, result.Response())
}

func (s *Server) handleListVerifications(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		http.Error(w, repository.ErrDisabled.Error(), http.StatusNotFound)
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	list, err := s.repo.ListRecentVerifications(r.Context(), limit)
	if err != nil {
		if errors.Is(err, repository.ErrDisabled) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		slog.Error("failed to list verifications", "error", err)
		http.Error(w, "failed to list verifications", http.StatusInternalServerError)
		return
	}
	entries := make([]verify.HistoryEntry, 0, len(list))
	for _, v := range list {
		entries = append(entries, verify.NewHistoryEntry(v))
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

type requestIDKey struct{}

const requestIDHeader = "X-Request-ID"

// requestID accepts a caller-supplied UUID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"request_id", RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(started),
			"remote_addr", r.RemoteAddr,
		)
	})
}
