// Package memstore is an in-memory document store used by tests and by any
// caller that wants the synchronization layer without a database. It
// implements the same contract as gormstore, including change notification,
// and supports failure injection for exercising unavailable-store paths.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkoren/drivenet/internal/store"
	"github.com/dkoren/drivenet/internal/types"
)

type document struct {
	id        string
	fields    store.Record
	createdAt time.Time
}

// Store is the in-memory document store.
type Store struct {
	mu    sync.Mutex
	colls map[string][]document
	hub   *store.Hub

	failNext int
	clock    time.Time
}

// Compile-time check: ensure this satisfies the store contract
var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		colls: make(map[string][]document),
		hub:   store.NewHub(),
		clock: time.Now().UTC(),
	}
}

// FailNext makes the next n operations fail with a store-unavailable error.
func (s *Store) FailNext(n int) {
	s.mu.Lock()
	s.failNext = n
	s.mu.Unlock()
}

func (s *Store) takeFailure(op string) error {
	if s.failNext > 0 {
		s.failNext--
		return fmt.Errorf("%s: %w: injected failure", op, types.ErrStoreUnavailable)
	}
	return nil
}

// tick advances the fake creation clock so ordering by createdAt is strict
// even when adds land within the same wall-clock instant.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

// List returns all documents under the path, ordered with an id tiebreak.
func (s *Store) List(_ context.Context, path store.Path, order *store.Order) ([]store.Record, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("list " + path.String()); err != nil {
		return nil, err
	}

	docs := s.colls[path.String()]
	records := make([]store.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, readRecord(doc))
	}
	store.SortRecords(records, order)
	return records, nil
}

// Get returns one document by id.
func (s *Store) Get(_ context.Context, path store.Path, id string) (store.Record, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("get " + path.String()); err != nil {
		return nil, err
	}

	for _, doc := range s.colls[path.String()] {
		if doc.id == id {
			return readRecord(doc), nil
		}
	}
	return nil, fmt.Errorf("%s/%s: %w", path.String(), id, types.ErrNotFound)
}

// Add stores a new document and returns its generated id.
func (s *Store) Add(_ context.Context, path store.Path, data store.Record) (string, error) {
	if err := path.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if err := s.takeFailure("add " + path.String()); err != nil {
		s.mu.Unlock()
		return "", err
	}

	doc := document{
		id:        uuid.NewString(),
		fields:    stripReserved(data),
		createdAt: s.tick(),
	}
	key := path.String()
	s.colls[key] = append(s.colls[key], doc)
	s.mu.Unlock()

	s.hub.Publish(path)
	return doc.id, nil
}

// Patch merges data into an existing document.
func (s *Store) Patch(_ context.Context, path store.Path, id string, data store.Record) error {
	if err := path.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.takeFailure("patch " + path.String()); err != nil {
		s.mu.Unlock()
		return err
	}

	docs := s.colls[path.String()]
	for i := range docs {
		if docs[i].id != id {
			continue
		}
		merged := docs[i].fields.Clone()
		for k, v := range stripReserved(data) {
			merged[k] = v
		}
		docs[i].fields = merged
		s.mu.Unlock()

		s.hub.Publish(path)
		return nil
	}
	s.mu.Unlock()
	return fmt.Errorf("%s/%s: %w", path.String(), id, types.ErrNotFound)
}

// Delete removes one document; missing documents and descendant collections
// are left alone.
func (s *Store) Delete(_ context.Context, path store.Path, id string) error {
	if err := path.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.takeFailure("delete " + path.String()); err != nil {
		s.mu.Unlock()
		return err
	}

	key := path.String()
	docs := s.colls[key]
	for i := range docs {
		if docs[i].id == id {
			s.colls[key] = append(docs[:i:i], docs[i+1:]...)
			s.mu.Unlock()

			s.hub.Publish(path)
			return nil
		}
	}
	s.mu.Unlock()
	return nil
}

// Watch registers a change watcher on the collection path.
func (s *Store) Watch(path store.Path) (<-chan struct{}, func()) {
	return s.hub.Watch(path)
}

func readRecord(doc document) store.Record {
	rec := doc.fields.Clone()
	rec[store.IDField] = doc.id
	rec[store.CreatedAtField] = doc.createdAt.Format(time.RFC3339Nano)
	return rec
}

func stripReserved(data store.Record) store.Record {
	out := make(store.Record, len(data))
	for k, v := range data {
		if k == store.IDField || k == store.CreatedAtField {
			continue
		}
		out[k] = v
	}
	return out
}
