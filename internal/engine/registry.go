package engine

import (
	"sync"

	"github.com/petrijr/socialflow/pkg/api"
)

type eventRegistry struct {
	mu     sync.RWMutex
	byType map[api.EventType]api.EventHandlers
}

func newEventRegistry() *eventRegistry {
	return &eventRegistry{
		byType: make(map[api.EventType]api.EventHandlers),
	}
}

// Register installs or replaces the handler pair for eventType.
func (r *eventRegistry) Register(eventType api.EventType, handlers api.EventHandlers) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byType[eventType] = handlers
}

func (r *eventRegistry) Unregister(eventType api.EventType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byType, eventType)
}

// Get returns the handler pair for eventType. An unregistered type yields
// an empty pair, which runs no handlers.
func (r *eventRegistry) Get(eventType api.EventType) (api.EventHandlers, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.byType[eventType]
	return h, ok
}
