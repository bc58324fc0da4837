package verify

import (
	"github.com/foxseedlab/koecheck/internal/config"
	"github.com/foxseedlab/koecheck/internal/notify"
	"github.com/foxseedlab/koecheck/internal/repository"
	"github.com/foxseedlab/koecheck/internal/transcriber"
	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/metric"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Journal, error) {
		repo := do.MustInvoke[repository.Repository](i)
		sender := do.MustInvoke[notify.Sender](i)
		return NewJournal(repo, sender), nil
	})
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		stt := do.MustInvoke[transcriber.Transcriber](i)
		meters := do.MustInvoke[metric.MeterProvider](i)
		journal := do.MustInvoke[*Journal](i)
		return NewService(stt, cfg.ProviderTimeout,
			WithMetrics(NewMetrics(meters)),
			WithJournal(journal),
		), nil
	})
}
