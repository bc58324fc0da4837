package notify

import (
	"context"
	"errors"
	"io"

	"github.com/foxseedlab/koecheck/internal/notify"
)

// MultiSender fans one event out to every configured sender.
type MultiSender struct {
	senders []notify.Sender
}

func NewMultiSender(senders ...notify.Sender) *MultiSender {
	return &MultiSender{senders: senders}
}

func (m *MultiSender) Len() int {
	return len(m.senders)
}

func (m *MultiSender) SendVerification(ctx context.Context, event notify.VerificationEvent) error {
	var errs []error
	for _, s := range m.senders {
		if err := s.SendVerification(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSender) Close() error {
	var errs []error
	for _, s := range m.senders {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
