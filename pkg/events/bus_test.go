package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusPublishesToTopicSubscribers(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(SiteCreated, func(e Event) { got = append(got, "first:"+e.Site) })
	bus.Subscribe(SiteCreated, func(e Event) { got = append(got, "second:"+e.Site) })
	bus.Subscribe(SiteDeleted, func(e Event) { got = append(got, "deleted:"+e.Site) })

	bus.Publish(Event{Type: SiteCreated, Site: "example.com"})

	assert.Equal(t, []string{"first:example.com", "second:example.com"}, got)
}

func TestBusSubscribeAll(t *testing.T) {
	bus := NewBus()

	seen := map[EventType]int{}
	bus.SubscribeAll(func(e Event) { seen[e.Type]++ })

	for _, typ := range All {
		bus.Publish(Event{Type: typ})
	}
	bus.Publish(Event{Type: "unknown"})

	assert.Len(t, seen, len(All))
	for _, typ := range All {
		assert.Equal(t, 1, seen[typ], string(typ))
	}
}
