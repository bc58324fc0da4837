package normalizer

import "github.com/samber/do/v2"

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Normalizer, error) {
		return New(do.MustInvoke[Decoder](i)), nil
	})
}
