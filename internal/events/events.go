// Package events publishes listing and watchlist changes for other services.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	ResourceCreated  = "resources.created"
	ResourceUpdated  = "resources.updated"
	ResourceDeleted  = "resources.deleted"
	WatchlistAdded   = "watchlist.added"
	WatchlistRemoved = "watchlist.removed"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Event is the envelope written to every subject.
type Event struct {
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

type NATS struct {
	nc *nats.Conn
}

func Connect(url string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("reliefshare"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATS{nc: nc}, nil
}

func (p *NATS) Publish(_ context.Context, subject string, payload any) error {
	b, err := Marshal(subject, payload)
	if err != nil {
		return err
	}
	return p.nc.Publish(subject, b)
}

func (p *NATS) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

func Marshal(subject string, payload any) ([]byte, error) {
	return json.Marshal(Event{Subject: subject, OccurredAt: time.Now().UTC(), Data: payload})
}

// Emit publishes and logs failures; event delivery never fails a request.
func Emit(ctx context.Context, p Publisher, subject string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, payload); err != nil {
		slog.Warn("event publish failed", "subject", subject, "err", err)
	}
}
