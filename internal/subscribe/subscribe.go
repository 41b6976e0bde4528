// Package subscribe maintains live, ordered views of collection paths. A
// subscription delivers a fresh full snapshot of the collection to its
// callback on every change, strictly ordered within that one channel;
// ordering across different subscriptions is not defined.
package subscribe

import (
	"context"
	"sync"

	"github.com/dkoren/drivenet/internal/observe"
	"github.com/dkoren/drivenet/internal/store"
)

// CancelFunc stops further snapshot deliveries. It is idempotent: calling it
// more than once, or after the underlying path no longer exists, is a no-op.
type CancelFunc func()

// Manager wraps live ordered queries over one store.
type Manager struct {
	store store.Store
	sink  *observe.Sink
}

// NewManager builds a subscription manager. Snapshot read failures are
// reported to the sink and the last-known-good view stands.
func NewManager(s store.Store, sink *observe.Sink) *Manager {
	return &Manager{store: s, sink: sink}
}

// Subscribe registers a live ordered query on the collection path. An
// initial snapshot is delivered before Subscribe returns (empty if the
// collection is empty or the store is unreachable); thereafter every
// create/update/delete under the path triggers one full-snapshot delivery.
// Ties in the order field are broken by document id, so repeated deliveries
// of an unchanged collection are byte-for-byte identical.
//
// The callback runs on the subscription's own goroutine after the initial
// delivery and must not invoke the returned CancelFunc.
func (m *Manager) Subscribe(path store.Path, order *store.Order, fn func([]store.Record)) (CancelFunc, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	signals, stopWatch := m.store.Watch(path)

	var mu sync.Mutex
	cancelled := false

	deliver := func() {
		records, err := m.store.List(context.Background(), path, order)
		if err != nil {
			m.sink.Report("subscribe.snapshot "+path.String(), err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if cancelled {
			return
		}
		fn(records)
	}

	// Initial snapshot, even if empty.
	records, err := m.store.List(context.Background(), path, order)
	if err != nil {
		m.sink.Report("subscribe.snapshot "+path.String(), err)
		records = []store.Record{}
	}
	fn(records)

	go func() {
		for range signals {
			deliver()
		}
	}()

	cancel := func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		stopWatch()
	}
	return cancel, nil
}
