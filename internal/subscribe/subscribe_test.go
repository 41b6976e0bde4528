package subscribe_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dkoren/drivenet/internal/observe"
	"github.com/dkoren/drivenet/internal/store"
	"github.com/dkoren/drivenet/internal/store/memstore"
	"github.com/dkoren/drivenet/internal/subscribe"
)

var ctx = context.Background()

// collector accumulates delivered snapshots for assertions
type collector struct {
	mu        sync.Mutex
	snapshots [][]store.Record
}

func (c *collector) deliver(records []store.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, records)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snapshots)
}

func (c *collector) last() []store.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snapshots) == 0 {
		return nil
	}
	return c.snapshots[len(c.snapshots)-1]
}

// waitFor polls until cond holds or the deadline passes
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// TestInitialSnapshotBeforeReturn tests that Subscribe delivers synchronously
func TestInitialSnapshotBeforeReturn(t *testing.T) {
	s := memstore.New()
	path := store.MustPath("threads", "t-1", "comments")
	_, _ = s.Add(ctx, path, store.Record{"text": "pre-existing"})

	m := subscribe.NewManager(s, observe.NewNopSink())
	var c collector
	cancel, err := m.Subscribe(path, nil, c.deliver)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer cancel()

	// The initial snapshot has already landed, no waiting
	if c.count() != 1 {
		t.Fatalf("Expected the initial snapshot before Subscribe returned, got %d deliveries", c.count())
	}
	if len(c.last()) != 1 || c.last()[0]["text"] != "pre-existing" {
		t.Errorf("Unexpected initial snapshot: %+v", c.last())
	}
}

// TestEmptyCollectionDeliversEmptySnapshot tests the empty-not-absent contract
func TestEmptyCollectionDeliversEmptySnapshot(t *testing.T) {
	s := memstore.New()
	m := subscribe.NewManager(s, observe.NewNopSink())

	var c collector
	cancel, err := m.Subscribe(store.MustPath("users"), nil, c.deliver)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer cancel()

	if c.count() != 1 {
		t.Fatalf("Expected an initial delivery, got %d", c.count())
	}
	if c.last() == nil || len(c.last()) != 0 {
		t.Errorf("Expected an empty snapshot, got %v", c.last())
	}
}

// TestDeliveryOnEveryMutation tests that each change triggers a full snapshot
func TestDeliveryOnEveryMutation(t *testing.T) {
	s := memstore.New()
	path := store.MustPath("cars", "c-1", "logs")
	m := subscribe.NewManager(s, observe.NewNopSink())

	var c collector
	cancel, err := m.Subscribe(path, &store.Order{Field: "date"}, c.deliver)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer cancel()

	id, _ := s.Add(ctx, path, store.Record{"date": "2026-01-10"})
	waitFor(t, func() bool { return c.count() >= 2 && len(c.last()) == 1 },
		"Expected a snapshot after add")

	_ = s.Patch(ctx, path, id, store.Record{"liters": 40})
	waitFor(t, func() bool {
		last := c.last()
		return len(last) == 1 && last[0]["liters"] != nil
	}, "Expected a snapshot after patch")

	_ = s.Delete(ctx, path, id)
	waitFor(t, func() bool { return len(c.last()) == 0 },
		"Expected an empty snapshot after delete")
}

// TestSnapshotOrdering tests ordered delivery with the id tiebreak
func TestSnapshotOrdering(t *testing.T) {
	s := memstore.New()
	path := store.MustPath("cars", "c-1", "logs")
	_, _ = s.Add(ctx, path, store.Record{"date": "2026-02-01"})
	_, _ = s.Add(ctx, path, store.Record{"date": "2026-01-01"})

	m := subscribe.NewManager(s, observe.NewNopSink())
	var c collector
	cancel, err := m.Subscribe(path, &store.Order{Field: "date"}, c.deliver)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer cancel()

	snap := c.last()
	if len(snap) != 2 || snap[0]["date"] != "2026-01-01" {
		t.Errorf("Expected date-ordered snapshot, got %+v", snap)
	}
}

// TestCancelStopsDeliveries tests cancel idempotency and silence after cancel
func TestCancelStopsDeliveries(t *testing.T) {
	s := memstore.New()
	path := store.MustPath("threads")
	m := subscribe.NewManager(s, observe.NewNopSink())

	var c collector
	cancel, err := m.Subscribe(path, nil, c.deliver)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	cancel()
	cancel() // idempotent

	before := c.count()
	_, _ = s.Add(ctx, path, store.Record{"title": "after cancel"})
	time.Sleep(50 * time.Millisecond)

	if c.count() != before {
		t.Errorf("Expected no deliveries after cancel, got %d new", c.count()-before)
	}
}

// TestUnreachableStoreDeliversEmpty tests the degraded initial snapshot
func TestUnreachableStoreDeliversEmpty(t *testing.T) {
	s := memstore.New()
	s.FailNext(1)
	m := subscribe.NewManager(s, observe.NewNopSink())

	var c collector
	cancel, err := m.Subscribe(store.MustPath("users"), nil, c.deliver)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer cancel()

	if c.count() != 1 || len(c.last()) != 0 {
		t.Errorf("Expected an empty initial snapshot on store failure, got %v", c.last())
	}
}

// TestInvalidPathRejected tests path validation at subscribe time
func TestInvalidPathRejected(t *testing.T) {
	m := subscribe.NewManager(memstore.New(), observe.NewNopSink())

	_, err := m.Subscribe(store.Path{"users", "u-1"}, nil, func([]store.Record) {})
	if err == nil {
		t.Error("Expected invalid path to be rejected")
	}
}
