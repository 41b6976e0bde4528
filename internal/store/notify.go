package store

import (
	"sync"
)

// Hub fans change signals out to path watchers. Both backends embed one; the
// subscription layer consumes it through Store.Watch.
//
// Signals are coalescing: a watcher channel has capacity one, so a slow
// consumer sees at least one signal for any burst of changes and re-reads
// the collection once. Delivery order across different paths is not defined;
// each path's watchers are independently consistent.
type Hub struct {
	mu       sync.Mutex
	nextID   int
	watchers map[string]map[int]chan struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[int]chan struct{})}
}

// Watch registers a watcher on the exact collection path. The cancel func is
// idempotent; after it returns no further signals are delivered.
func (h *Hub) Watch(path Path) (<-chan struct{}, func()) {
	key := path.String()
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.watchers[key] == nil {
		h.watchers[key] = make(map[int]chan struct{})
	}
	h.watchers[key][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if m := h.watchers[key]; m != nil {
				delete(m, id)
				if len(m) == 0 {
					delete(h.watchers, key)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish signals every watcher of the path. Never blocks: a watcher whose
// buffered signal is still pending is skipped, it will re-read anyway.
func (h *Hub) Publish(path Path) {
	key := path.String()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.watchers[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
