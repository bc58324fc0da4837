package decoder

import (
	"github.com/foxseedlab/koecheck/internal/config"
	"github.com/foxseedlab/koecheck/internal/normalizer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (normalizer.Decoder, error) {
		c := do.MustInvoke[*config.ClientConfig](i)
		return NewCommandDecoder(c.DecoderCommand, "")
	})
}
