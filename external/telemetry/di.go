package telemetry

import (
	"context"

	"github.com/foxseedlab/koecheck/internal/config"
	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/metric"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Telemetry, error) {
		c := do.MustInvoke[*config.Config](i)
		return New(context.Background(), c.Env)
	})
	do.Provide(injector, func(i do.Injector) (metric.MeterProvider, error) {
		return do.MustInvoke[*Telemetry](i).MeterProvider(), nil
	})
}
