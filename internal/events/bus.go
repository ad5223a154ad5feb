// Package events carries domain events from the chat flow to observers over
// channels.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/capitalize-ai/investor-finder/pkg/metrics"
)

// Type names an event.
type Type string

const (
	ChatMessageReceived   Type = "chat.message.received"
	ChatResponseGenerated Type = "chat.response.generated"
	SearchStarted         Type = "search.started"
	SearchCompleted       Type = "search.completed"
	SearchFailed          Type = "search.failed"
	ScrapeCompleted       Type = "scrape.completed"
	ScrapeFailed          Type = "scrape.failed"
	InvestorFound         Type = "investor.found"
	ProviderSucceeded     Type = "provider.succeeded"
	ProviderFailed        Type = "provider.failed"
	ProvidersExhausted    Type = "provider.exhausted"
)

// Event is a single occurrence published on the bus.
type Event struct {
	ID             string         `json:"id"`
	Type           Type           `json:"type"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Source         string         `json:"source"`
	Data           map[string]any `json:"data,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// New creates an event with a fresh id and timestamp.
func New(t Type, source, conversationID string, data map[string]any) Event {
	return Event{
		ID:             uuid.NewString(),
		Type:           t,
		ConversationID: conversationID,
		Source:         source,
		Data:           data,
		CreatedAt:      time.Now().UTC(),
	}
}

// Publisher is the producer side of the bus.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type subscription struct {
	ch    chan Event
	types map[Type]struct{}
	once  sync.Once
}

func (s *subscription) wants(t Type) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

func (s *subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// Bus fans events out to subscriber channels. Publishing never blocks: an
// event is dropped for a subscriber whose buffer is full.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*subscription)}
}

// Subscribe returns a channel receiving events of the given types (all types
// when none are given) and a cancel func that unsubscribes and closes it.
func (b *Bus) Subscribe(buffer int, types ...Type) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscription{ch: make(chan Event, buffer)}
	if len(types) > 0 {
		sub.types = make(map[Type]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.close()
		return sub.ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = sub

	return sub.ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			s.close()
		}
	}
}

// Publish delivers e to every interested subscriber without blocking.
func (b *Bus) Publish(_ context.Context, e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		if !sub.wants(e.Type) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			metrics.EventsDroppedTotal.WithLabelValues(string(e.Type)).Inc()
		}
	}
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		sub.close()
		delete(b.subs, id)
	}
}

// Consume calls handle for every event on ch until ch closes or ctx ends.
func Consume(ctx context.Context, ch <-chan Event, handle func(context.Context, Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			handle(ctx, e)
		}
	}
}

// Discard is a Publisher that drops everything.
type Discard struct{}

// Publish drops e.
func (Discard) Publish(context.Context, Event) {}
