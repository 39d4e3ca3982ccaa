package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asapdigest/content-pipeline/internal/domain"
)

func TestNew_PopulatesIdentityAndTimestamp(t *testing.T) {
	item := domain.ContentItem{ID: 42, Title: "Hello"}

	evt := New(ContentAdded, item)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", evt.ID.String())
	assert.Equal(t, ContentAdded, evt.Type)
	assert.Equal(t, int64(42), evt.ContentID)
	assert.False(t, evt.OccurredAt.IsZero())
}

func TestDispatcher_FansOutToAllSubscribers(t *testing.T) {
	d := NewDispatcher()

	var got []Type
	d.Subscribe(func(ctx context.Context, event Event) {
		got = append(got, event.Type)
	})
	d.Subscribe(func(ctx context.Context, event Event) {
		got = append(got, event.Type)
	})

	err := d.Publish(context.Background(), New(ContentDeleted, domain.ContentItem{ID: 1}))

	require.NoError(t, err)
	assert.Equal(t, []Type{ContentDeleted, ContentDeleted}, got)
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	d := NewDispatcher()

	err := d.Publish(context.Background(), New(ContentAdded, domain.ContentItem{}))

	assert.NoError(t, err)
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, Event) error {
	p.calls++
	return errors.New("broker down")
}

func TestMulti_ContinuesPastFailures(t *testing.T) {
	failing := &failingPublisher{}
	d := NewDispatcher()

	delivered := 0
	d.Subscribe(func(ctx context.Context, event Event) { delivered++ })

	m := Multi{failing, d}
	err := m.Publish(context.Background(), New(ContentUpdated, domain.ContentItem{ID: 7}))

	require.NoError(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, delivered)
}
