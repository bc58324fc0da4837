package relayclient

import (
	"github.com/foxseedlab/koecheck/internal/client"
	"github.com/foxseedlab/koecheck/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (client.Relay, error) {
		c := do.MustInvoke[*config.ClientConfig](i)
		return NewHTTPClient(c.RelayURL, c.RequestTimeout), nil
	})
}
