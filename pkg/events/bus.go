package events

import (
	"sync"
)

type EventType string

const (
	SiteCreated        EventType = "site:created"
	SiteEnabled        EventType = "site:enabled"
	SiteDisabled       EventType = "site:disabled"
	SiteDeleted        EventType = "site:deleted"
	SiteBackedUp       EventType = "site:backed-up"
	RepoCreated        EventType = "repo:created"
	PermissionsApplied EventType = "permissions:applied"
	CertIssued         EventType = "cert:issued"
)

// All lists every event type the site manager publishes.
var All = []EventType{
	SiteCreated,
	SiteEnabled,
	SiteDisabled,
	SiteDeleted,
	SiteBackedUp,
	RepoCreated,
	PermissionsApplied,
	CertIssued,
}

type Event struct {
	Type    EventType
	Site    string
	Payload map[string]string
}

type Handler func(Event)

type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

func (b *Bus) Subscribe(topic EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// SubscribeAll registers handler for every type in All.
func (b *Bus) SubscribeAll(handler Handler) {
	for _, t := range All {
		b.Subscribe(t, handler)
	}
}

// Publish runs handlers synchronously, in subscription order.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, h := range b.handlers[event.Type] {
		h(event)
	}
}
