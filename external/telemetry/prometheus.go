package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const serviceName = "koecheck-relay"

// Telemetry owns the meter provider and the /metrics handler.
type Telemetry struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler
}

// New wires an OpenTelemetry meter provider to a dedicated Prometheus
// registry. When the exporter cannot be created, metrics are still recorded
// but not served.
func New(ctx context.Context, environment string) (*Telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		slog.Warn("failed to initialize prometheus exporter", "error", err)
		return &Telemetry{
			provider: sdkmetric.NewMeterProvider(sdkmetric.WithResource(res)),
			handler:  http.NotFoundHandler(),
		}, nil
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)
	return &Telemetry{
		provider: provider,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

func (t *Telemetry) MeterProvider() *sdkmetric.MeterProvider {
	return t.provider
}

func (t *Telemetry) Handler() http.Handler {
	return t.handler
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}
