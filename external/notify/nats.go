package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/koecheck/internal/notify"
	"github.com/nats-io/nats.go"
)

const natsConnectTimeout = 5 * time.Second

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSender publishes each verification as JSON on a fixed subject.
type NATSSender struct {
	conn    *nats.Conn
	pub     publisher
	subject string
}

func ConnectNATS(url, subject string) (*NATSSender, error) {
	conn, err := nats.Connect(url,
		nats.Name("koecheck-relay"),
		nats.Timeout(natsConnectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	slog.Info("connected to NATS", "url", conn.ConnectedUrlRedacted(), "subject", subject)
	return &NATSSender{conn: conn, pub: conn, subject: subject}, nil
}

func (s *NATSSender) SendVerification(_ context.Context, event notify.VerificationEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.pub.Publish(s.subject, b); err != nil {
		return fmt.Errorf("publish %s: %w", s.subject, err)
	}
	return nil
}

// Close drains pending publishes before closing the connection.
func (s *NATSSender) Close() error {
	if s.conn == nil {
		return nil
	}
	slog.Info("closing NATS connection")
	err := s.conn.Drain()
	s.conn.Close()
	return err
}
