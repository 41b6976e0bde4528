// Package store defines the document store contract the synchronization
// layer is written against: schemaless records grouped into named, possibly
// nested collections, with ordered reads and change notification. The
// gormstore subpackage is the SQL-backed implementation, memstore the
// in-memory one used by tests.
package store

import (
	"context"
)

// IDField is the reserved key under which a document's store-assigned id is
// merged into the record returned by reads.
const IDField = "id"

// CreatedAtField is the reserved key for the server-assigned creation
// timestamp (RFC3339). It is attached on Add and never trusted from caller
// input, so ordering by it is monotonic regardless of client clock skew.
const CreatedAtField = "createdAt"

// Record is a document's stored fields. Reads return the fields plus the id
// merged in under IDField; no other envelope.
type Record map[string]interface{}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the record's store-assigned id, or "" if absent.
func (r Record) ID() string {
	id, _ := r[IDField].(string)
	return id
}

// Order describes the ordering of a List. A nil *Order means store insertion
// order (creation time, then id).
type Order struct {
	Field string
	Desc  bool
}

// Store is the contract a conforming nested-document backend satisfies.
//
// All errors are normalized to the types package sentinels: a read of a
// missing document wraps types.ErrNotFound, any backend failure wraps
// types.ErrStoreUnavailable.
type Store interface {
	// List returns all documents directly under the collection path, ordered
	// per order (id tiebreak), each with its id merged in under IDField.
	List(ctx context.Context, path Path, order *Order) ([]Record, error)

	// Get returns one document by id, or an error wrapping types.ErrNotFound.
	Get(ctx context.Context, path Path, id string) (Record, error)

	// Add stores a new document and returns its generated id.
	Add(ctx context.Context, path Path, data Record) (string, error)

	// Patch merges data into an existing document. Fields omitted from data
	// are preserved.
	Patch(ctx context.Context, path Path, id string, data Record) error

	// Delete removes one document. It does not cascade to descendant
	// collections.
	Delete(ctx context.Context, path Path, id string) error

	// Watch registers interest in changes under the collection path. The
	// returned channel receives a signal after every mutation of a document
	// in that collection; the cancel func releases the watch and is safe to
	// call more than once.
	Watch(path Path) (<-chan struct{}, func())
}
