package httpapi

import (
	"github.com/foxseedlab/koecheck/external/telemetry"
	"github.com/foxseedlab/koecheck/internal/config"
	"github.com/foxseedlab/koecheck/internal/repository"
	"github.com/foxseedlab/koecheck/internal/verify"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		svc := do.MustInvoke[*verify.Service](i)
		repo := do.MustInvoke[repository.Repository](i)
		tel := do.MustInvoke[*telemetry.Telemetry](i)
		return NewServer(svc, repo, tel.Handler(), cfg.MaxUploadBytes), nil
	})
}
