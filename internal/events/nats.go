package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

const defaultSubjectPrefix = "content"

// NATSPublisher pushes events onto a NATS subject per event type
// (content.added, content.updated, content.deleted) for external
// subscribers.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	if err := p.conn.Publish(p.subject(event.Type), payload); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}

func (p *NATSPublisher) subject(t Type) string {
	switch t {
	case ContentAdded:
		return p.prefix + ".added"
	case ContentUpdated:
		return p.prefix + ".updated"
	case ContentDeleted:
		return p.prefix + ".deleted"
	default:
		return p.prefix + ".unknown"
	}
}

func (p *NATSPublisher) Close() {
	p.conn.Drain()
}
