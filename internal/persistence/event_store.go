package persistence

import (
	"context"
	"slices"
	"sync"

	"github.com/petrijr/socialflow/pkg/api"
)

// EventStore is an append-only history store for task lifecycle events.
type EventStore interface {
	AppendEvent(ctx context.Context, ev api.HistoryEvent) error
	// ListEvents returns all events recorded for subject in append order.
	ListEvents(ctx context.Context, subject string) ([]api.HistoryEvent, error)
}

// NoopEventStore discards all events.
type NoopEventStore struct{}

func (NoopEventStore) AppendEvent(ctx context.Context, ev api.HistoryEvent) error { return nil }
func (NoopEventStore) ListEvents(ctx context.Context, subject string) ([]api.HistoryEvent, error) {
	return nil, nil
}

// InMemoryEventStore keeps history in process memory.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events map[string][]api.HistoryEvent
}

var _ EventStore = (*InMemoryEventStore)(nil)

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{events: make(map[string][]api.HistoryEvent)}
}

func (s *InMemoryEventStore) AppendEvent(ctx context.Context, ev api.HistoryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[ev.Subject] = append(s.events[ev.Subject], ev)
	return nil
}

func (s *InMemoryEventStore) ListEvents(ctx context.Context, subject string) ([]api.HistoryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.events[subject]), nil
}
