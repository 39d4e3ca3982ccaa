// Package events carries the pipeline's outbound domain events. Subscribers
// are decoupled from the pipeline: it publishes into a Publisher and never
// waits on consumer logic beyond the handler call itself.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asapdigest/content-pipeline/internal/domain"
)

type Type string

const (
	ContentAdded   Type = "content_added"
	ContentUpdated Type = "content_updated"
	ContentDeleted Type = "content_deleted"
)

// Event describes one content lifecycle change. Item carries the row as
// persisted (or, for deletions, as it was before removal).
type Event struct {
	ID         uuid.UUID          `json:"id"`
	Type       Type               `json:"type"`
	ContentID  int64              `json:"contentId"`
	Item       domain.ContentItem `json:"item"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// New builds an event with a fresh id and timestamp.
func New(t Type, item domain.ContentItem) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		ContentID:  item.ID,
		Item:       item,
		OccurredAt: time.Now(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Handler func(ctx context.Context, event Event)

// Dispatcher fans events out to in-process subscribers. Handlers run
// synchronously on the publishing goroutine; the mutex guards registration
// only.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Subscribe(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

func (d *Dispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, event)
	}
	return nil
}

// NopPublisher drops events; default when no subscriber is wired.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Multi publishes to several publishers in order, logging failures and
// continuing: event delivery is best-effort relative to persistence.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			slog.Warn("event publish failed",
				"event", event.Type,
				"content_id", event.ContentID,
				"error", err,
			)
		}
	}
	return nil
}
