package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

var errEmptySubject = errors.New("empty extraction subject")

type jsPublisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// NatsAnnouncer publishes announcements to a JetStream subject
type NatsAnnouncer struct {
	nc      *nats.Conn
	js      jsPublisher
	subject string
	log     zerolog.Logger
}

// NewNatsAnnouncer dials NATS and ensures a stream captures subject
func NewNatsAnnouncer(url, subject string, log zerolog.Logger) (*NatsAnnouncer, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, errEmptySubject
	}
	opts := []nats.Option{
		nats.Name("receipt-ingestion"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("disconnected from NATS")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("reconnected to NATS")
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js, StreamName(subject), subject); err != nil {
		nc.Close()
		return nil, err
	}
	log.Info().Str("subject", subject).Str("stream", StreamName(subject)).Msg("jetstream stream ready")
	return &NatsAnnouncer{nc: nc, js: js, subject: subject, log: log}, nil
}

func ensureStream(js nats.JetStreamContext, name, subject string) error {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:      name,
		Subjects:  []string{subject},
		Retention: nats.LimitsPolicy,
		Storage:   nats.FileStorage,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err == nil {
		return nil
	}
	// Stream may already exist; treat that as success.
	if _, infoErr := js.StreamInfo(name); infoErr == nil {
		return nil
	}
	return fmt.Errorf("ensure stream %s: %w", name, err)
}

// StreamName derives a JetStream stream name from a subject
func StreamName(subject string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "*", "_", ">", "_")
	return strings.ToUpper(r.Replace(subject))
}

// Announce publishes once; there is no retry on failure
func (a *NatsAnnouncer) Announce(ctx context.Context, msg pipeline.ExtractionAnnouncement) (Receipt, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal announcement: %w", err)
	}
	ack, err := a.js.Publish(a.subject, data, nats.Context(ctx), nats.RetryAttempts(0))
	if err != nil {
		return Receipt{}, fmt.Errorf("publish %s: %w", a.subject, err)
	}
	return Receipt{DeliveryID: fmt.Sprintf("%s:%d", ack.Stream, ack.Sequence)}, nil
}

// Close drains the connection
func (a *NatsAnnouncer) Close() {
	if a.nc != nil {
		a.nc.Close()
	}
}
