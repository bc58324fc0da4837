package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTelemetry_ServesRecordedMetrics(t *testing.T) {
	tel, err := New(context.Background(), "test")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer tel.Shutdown(context.Background())

	counter, err := tel.MeterProvider().Meter("test").Int64Counter("koecheck.test.events")
	if err != nil {
		t.Fatalf("failed to create counter: %v", err)
	}
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "koecheck_test_events") {
		t.Fatalf("metric missing from exposition:\n%s", body)
	}
}
