// binding.go
//
// Community and vehicle tracking data service
// Copyright (c) 2026 Daniel Koren <dan@dkoren.dev>
//
// This file is part of drivenet.
// drivenet is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// drivenet is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with drivenet.
// If not, see <https://www.gnu.org/licenses/>.

// Package binding is the synchronization unit a view depends on: the
// current collection state, a loading flag, and mutation verbs that
// converge the state with the store. Two strategies coexist:
// poll-on-mutation for top-level collections (users, cars, threads) and
// live-subscription for nested ones (comments, replies, logs).
package binding

import (
	"context"
	"sync"

	"github.com/rs/xid"

	"github.com/dkoren/drivenet/internal/observe"
	"github.com/dkoren/drivenet/internal/repository"
	"github.com/dkoren/drivenet/internal/store"
	"github.com/dkoren/drivenet/internal/subscribe"
)

// Strategy selects how a binding keeps its snapshot current.
type Strategy int

const (
	// PollOnMutation fetches once on mount and refetches after every
	// successful mutation. Concurrent writers only show up after the local
	// writer's own next mutation, or on next mount.
	PollOnMutation Strategy = iota
	// Live subscribes to the collection; mutations need no manual refetch,
	// but a corrective refetch still runs after each successful mutation in
	// case the live channel has not yet delivered.
	Live
)

// State is the binding's view state: Loading until the first snapshot
// lands, Ready after. Poll bindings pass back through Loading on every
// accepted mutation; live bindings go Ready→Ready via pushed snapshots.
type State int

const (
	Loading State = iota
	Ready
)

// clientIDField gives a row added before the store echoed its id a
// reproducibly stable identity, so it stays individually deletable.
const clientIDField = "clientId"

// Config assembles a binding. Decode maps store records onto the entity
// type, ID extracts the entity's store id.
type Config[T any] struct {
	Store     store.Store
	Sink      *observe.Sink
	Template  store.Template
	Ancestors []string
	Order     *store.Order
	Strategy  Strategy
	Decode    func(store.Record) (T, error)
	Encode    func(T) (store.Record, error)
	ID        func(T) string
}

// Binding pairs a collection's synchronized state with the mutation verbs
// that affect it.
type Binding[T any] struct {
	repo      *repository.DocumentRepository
	sink      *observe.Sink
	ancestors []string
	order     *store.Order
	strategy  Strategy
	decode    func(store.Record) (T, error)
	encode    func(T) (store.Record, error)
	id        func(T) string

	mu     sync.RWMutex
	state  State
	items  []T
	cancel subscribe.CancelFunc
	closed bool
}

// New mounts a binding: poll bindings perform one initial fetch, live
// bindings subscribe and receive their initial snapshot before New returns.
func New[T any](cfg Config[T]) (*Binding[T], error) {
	b := &Binding[T]{
		repo:      repository.New(cfg.Store, cfg.Template),
		sink:      cfg.Sink,
		ancestors: cfg.Ancestors,
		order:     cfg.Order,
		strategy:  cfg.Strategy,
		decode:    cfg.Decode,
		encode:    cfg.Encode,
		id:        cfg.ID,
		state:     Loading,
	}

	if _, err := cfg.Template.Bind(cfg.Ancestors...); err != nil {
		return nil, err
	}

	switch cfg.Strategy {
	case Live:
		manager := subscribe.NewManager(cfg.Store, cfg.Sink)
		path, err := cfg.Template.Bind(cfg.Ancestors...)
		if err != nil {
			return nil, err
		}
		cancel, err := manager.Subscribe(path, cfg.Order, b.applySnapshot)
		if err != nil {
			return nil, err
		}
		b.cancel = cancel
	default:
		b.refresh(context.Background())
	}

	return b, nil
}

// State reports whether the binding has a snapshot yet.
func (b *Binding[T]) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Items returns a copy of the most recent collection snapshot.
func (b *Binding[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// FindByID scans the last-loaded snapshot in memory — no store round-trip —
// and returns an explicit absent result instead of panicking, so views can
// render a loading/absent state.
func (b *Binding[T]) FindByID(id string) (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, item := range b.items {
		if b.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Add stores a new entity. Fire-and-forget: the caller is not blocked and
// sees no error; failures go to the observability sink and the state is
// left unchanged, so the view simply keeps its last-known-good snapshot.
func (b *Binding[T]) Add(ctx context.Context, item T) {
	go b.addSync(ctx, item)
}

// Update merge-patches an existing entity. Fire-and-forget, like Add.
func (b *Binding[T]) Update(ctx context.Context, id string, partial store.Record) {
	go b.updateSync(ctx, id, partial)
}

// Delete removes an entity. Fire-and-forget, like Add. It does not cascade
// to nested collections.
func (b *Binding[T]) Delete(ctx context.Context, id string) {
	go b.deleteSync(ctx, id)
}

// AddWait, UpdateWait and DeleteWait are the synchronous forms used by the
// HTTP handlers, where the response should reflect the converged state.
// Errors still go to the sink only.
func (b *Binding[T]) AddWait(ctx context.Context, item T) {
	b.addSync(ctx, item)
}

func (b *Binding[T]) UpdateWait(ctx context.Context, id string, partial store.Record) {
	b.updateSync(ctx, id, partial)
}

func (b *Binding[T]) DeleteWait(ctx context.Context, id string) {
	b.deleteSync(ctx, id)
}

// Close cancels the live subscription, if any. Idempotent; a closed binding
// delivers no further snapshots. Failing to close a live binding leaks the
// listener past its consumer's lifetime.
func (b *Binding[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	cancel := b.cancel
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (b *Binding[T]) addSync(ctx context.Context, item T) {
	rec, err := b.encode(item)
	if err != nil {
		b.sink.Report(b.op("add"), err)
		return
	}
	if rec.ID() == "" {
		// Stable identity for the slot even before the store id is known.
		rec[clientIDField] = xid.New().String()
	}
	delete(rec, store.IDField)

	if _, err := b.repo.Add(ctx, rec, b.ancestors...); err != nil {
		b.sink.Report(b.op("add"), err)
		return
	}
	b.settle(ctx)
}

func (b *Binding[T]) updateSync(ctx context.Context, id string, partial store.Record) {
	if err := b.repo.Update(ctx, id, partial, b.ancestors...); err != nil {
		b.sink.Report(b.op("update"), err)
		return
	}
	b.settle(ctx)
}

func (b *Binding[T]) deleteSync(ctx context.Context, id string) {
	if err := b.repo.Delete(ctx, id, b.ancestors...); err != nil {
		b.sink.Report(b.op("delete"), err)
		return
	}
	b.settle(ctx)
}

// settle re-converges state after a successful mutation. Poll bindings go
// Ready→Loading→Ready around a full refetch. Live bindings normally get the
// pushed snapshot, but a corrective refetch runs anyway in case the live
// channel has not delivered yet; applying it is harmless because snapshots
// are deterministic.
func (b *Binding[T]) settle(ctx context.Context) {
	switch b.strategy {
	case Live:
		records, err := b.repo.FindAll(ctx, b.order, b.ancestors...)
		if err != nil {
			b.sink.Report(b.op("refetch"), err)
			return
		}
		b.applySnapshot(records)
	default:
		b.refresh(ctx)
	}
}

// refresh performs the poll strategy's full fetch, passing through Loading.
func (b *Binding[T]) refresh(ctx context.Context) {
	b.mu.Lock()
	prev := b.state
	b.state = Loading
	b.mu.Unlock()

	records, err := b.repo.FindAll(ctx, b.order, b.ancestors...)
	if err != nil {
		b.sink.Report(b.op("findAll"), err)
		// Last-known-good stands; a never-loaded binding keeps loading.
		b.mu.Lock()
		b.state = prev
		b.mu.Unlock()
		return
	}
	b.applySnapshot(records)
}

// applySnapshot decodes a full snapshot and swaps it in. Records that fail
// to decode are reported and skipped rather than poisoning the collection.
func (b *Binding[T]) applySnapshot(records []store.Record) {
	items := make([]T, 0, len(records))
	for _, rec := range records {
		item, err := b.decode(rec)
		if err != nil {
			b.sink.Report(b.op("decode"), err)
			continue
		}
		items = append(items, item)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.items = items
	b.state = Ready
	b.mu.Unlock()
}

func (b *Binding[T]) op(verb string) string {
	path, err := b.repo.Path(b.ancestors...)
	if err != nil {
		return verb
	}
	return verb + " " + path.String()
}
