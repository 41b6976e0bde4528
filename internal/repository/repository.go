// Package repository exposes a uniform CRUD contract over one collection
// path template, flat or nested up to three levels
// (e.g. threads/*/comments/*/replies). The backing store is constructor
// injected so tests run against the in-memory fake.
package repository

import (
	"context"

	"github.com/dkoren/drivenet/internal/store"
)

// DocumentRepository is the generic CRUD façade for one path template,
// parameterized per call by the ancestor ids the template needs.
type DocumentRepository struct {
	store store.Store
	tmpl  store.Template
}

// New binds a repository to a store and a path template.
func New(s store.Store, tmpl store.Template) *DocumentRepository {
	return &DocumentRepository{store: s, tmpl: tmpl}
}

// Template returns the repository's path template.
func (r *DocumentRepository) Template() store.Template {
	return r.tmpl
}

// Path binds the template with concrete ancestor ids.
func (r *DocumentRepository) Path(ancestorIDs ...string) (store.Path, error) {
	return r.tmpl.Bind(ancestorIDs...)
}

// FindAll returns every record in the collection: stored fields plus the id
// under the reserved key. Order nil means store insertion order. A failure
// to reach the store wraps types.ErrStoreUnavailable; callers treat it as
// recoverable and log it rather than crash.
func (r *DocumentRepository) FindAll(ctx context.Context, order *store.Order, ancestorIDs ...string) ([]store.Record, error) {
	path, err := r.tmpl.Bind(ancestorIDs...)
	if err != nil {
		return nil, err
	}
	return r.store.List(ctx, path, order)
}

// FindByID returns one record, or an error wrapping types.ErrNotFound when
// the id does not exist — an explicit absent result, never a panic.
func (r *DocumentRepository) FindByID(ctx context.Context, id string, ancestorIDs ...string) (store.Record, error) {
	path, err := r.tmpl.Bind(ancestorIDs...)
	if err != nil {
		return nil, err
	}
	return r.store.Get(ctx, path, id)
}

// Add stores a new record and returns its generated id. The creation
// timestamp is server-assigned: any caller-supplied value is discarded so
// ordering by createdAt stays monotonic regardless of client clock skew.
func (r *DocumentRepository) Add(ctx context.Context, data store.Record, ancestorIDs ...string) (string, error) {
	path, err := r.tmpl.Bind(ancestorIDs...)
	if err != nil {
		return "", err
	}
	clean := data.Clone()
	delete(clean, store.CreatedAtField)
	return r.store.Add(ctx, path, clean)
}

// Update performs a partial merge: fields omitted from partial are
// preserved on the stored document.
func (r *DocumentRepository) Update(ctx context.Context, id string, partial store.Record, ancestorIDs ...string) error {
	path, err := r.tmpl.Bind(ancestorIDs...)
	if err != nil {
		return err
	}
	return r.store.Patch(ctx, path, id, partial)
}

// Delete removes one record. It does not cascade: documents in descendant
// collections (a car's logs, a thread's comments) are left in place,
// matching the source behavior.
func (r *DocumentRepository) Delete(ctx context.Context, id string, ancestorIDs ...string) error {
	path, err := r.tmpl.Bind(ancestorIDs...)
	if err != nil {
		return err
	}
	return r.store.Delete(ctx, path, id)
}
