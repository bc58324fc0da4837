package notify

import (
	"github.com/foxseedlab/koecheck/internal/config"
	"github.com/foxseedlab/koecheck/internal/notify"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (notify.Sender, error) {
		c := do.MustInvoke[*config.Config](i)
		var senders []notify.Sender
		if c.VerificationWebhookURL != "" {
			senders = append(senders, NewHTTPSender(c.VerificationWebhookURL))
		}
		if c.NATSURL != "" {
			ns, err := ConnectNATS(c.NATSURL, c.NATSSubject)
			if err != nil {
				return nil, err
			}
			senders = append(senders, ns)
		}
		return NewMultiSender(senders...), nil
	})
}
