package verify

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/foxseedlab/koecheck/internal/verify"

type Metrics struct {
	verifications    metric.Int64Counter
	providerDuration metric.Float64Histogram
	audioDuration    metric.Float64Histogram
}

// NewMetrics registers instruments on provider. A failed registration is
// logged and leaves that instrument unset.
func NewMetrics(provider metric.MeterProvider) *Metrics {
	meter := provider.Meter(meterName)
	m := &Metrics{}

	var err error
	if m.verifications, err = meter.Int64Counter("koecheck.verifications",
		metric.WithDescription("Verifications handled by the relay, by outcome")); err != nil {
		slog.Warn("failed to register metric", "name", "koecheck.verifications", "error", err)
	}
	if m.providerDuration, err = meter.Float64Histogram("koecheck.provider.duration",
		metric.WithDescription("Transcription provider call latency"),
		metric.WithUnit("s")); err != nil {
		slog.Warn("failed to register metric", "name", "koecheck.provider.duration", "error", err)
	}
	if m.audioDuration, err = meter.Float64Histogram("koecheck.audio.duration",
		metric.WithDescription("Length of verified audio"),
		metric.WithUnit("s")); err != nil {
		slog.Warn("failed to register metric", "name", "koecheck.audio.duration", "error", err)
	}
	return m
}

func (m *Metrics) Record(ctx context.Context, o Outcome) {
	outcome := "match"
	switch {
	case o.Result.Failure != nil:
		outcome = string(o.Result.Failure.Kind)
	case !o.Result.Matched:
		outcome = "mismatch"
	}
	attrs := metric.WithAttributes(
		attribute.String("language", o.Language.Code()),
		attribute.String("outcome", outcome),
	)

	if m.verifications != nil {
		m.verifications.Add(ctx, 1, attrs)
	}
	if m.providerDuration != nil && o.ProviderLatency > 0 {
		m.providerDuration.Record(ctx, o.ProviderLatency.Seconds(), attrs)
	}
	if m.audioDuration != nil && o.AudioDuration > 0 {
		m.audioDuration.Record(ctx, o.AudioDuration.Seconds())
	}
}
