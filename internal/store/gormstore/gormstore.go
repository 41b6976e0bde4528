// gormstore.go
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

// Package gormstore implements the document store contract on top of GORM,
// so the same backend runs on mysql, postgres, sqlite and sqlserver.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dkoren/drivenet/internal/store"
	"github.com/dkoren/drivenet/internal/types"
)

// Store is the SQL-backed document store.
type Store struct {
	db  *gorm.DB
	hub *store.Hub
}

// Compile-time check: ensure this satisfies the store contract
var _ store.Store = (*Store)(nil)

// New wraps an open GORM connection. Migrations are the caller's concern
// (see internal/database.AutoMigrate).
func New(db *gorm.DB) *Store {
	return &Store{
		db:  db,
		hub: store.NewHub(),
	}
}

// List returns every document under the collection path, ordered with a
// document-id tiebreak.
func (s *Store) List(ctx context.Context, path store.Path, order *store.Order) ([]store.Record, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	var docs []Document
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{Logger: s.db.Logger.LogMode(logger.Silent)}).
		Where("path = ?", path.String()).
		Order("created_at, doc_id").
		Find(&docs).Error
	if err != nil {
		return nil, unavailable("list "+path.String(), err)
	}

	records := make([]store.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := decode(doc)
		if err != nil {
			return nil, unavailable("list "+path.String(), err)
		}
		records = append(records, rec)
	}

	store.SortRecords(records, order)
	return records, nil
}

// Get returns one document by id.
func (s *Store) Get(ctx context.Context, path store.Path, id string) (store.Record, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	var doc Document
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{Logger: s.db.Logger.LogMode(logger.Silent)}).
		Where("path = ? AND doc_id = ?", path.String(), id).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s/%s: %w", path.String(), id, types.ErrNotFound)
		}
		return nil, unavailable("get "+path.String(), err)
	}

	return decode(doc)
}

// Add stores a new document under the path and returns its generated id.
func (s *Store) Add(ctx context.Context, path store.Path, data store.Record) (string, error) {
	if err := path.Validate(); err != nil {
		return "", err
	}

	payload, err := encode(data)
	if err != nil {
		return "", unavailable("add "+path.String(), err)
	}

	doc := Document{
		DocID: uuid.NewString(),
		Path:  path.String(),
		Data:  payload,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return "", unavailable("add "+path.String(), err)
	}

	s.hub.Publish(path)
	return doc.DocID, nil
}

// Patch merges data into an existing document; omitted fields are preserved.
func (s *Store) Patch(ctx context.Context, path store.Path, id string, data store.Record) error {
	if err := path.Validate(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc Document
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Where("path = ? AND doc_id = ?", path.String(), id).
			First(&doc).Error; err != nil {
			return err
		}

		fields := make(map[string]interface{})
		if len(doc.Data.JSON) > 0 {
			if err := json.Unmarshal(doc.Data.JSON, &fields); err != nil {
				return err
			}
		}
		for k, v := range data {
			if k == store.IDField || k == store.CreatedAtField {
				continue
			}
			fields[k] = v
		}

		raw, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		doc.Data.JSON = raw
		return tx.Model(&Document{}).
			Where("path = ? AND doc_id = ?", path.String(), id).
			Update("data", doc.Data).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s/%s: %w", path.String(), id, types.ErrNotFound)
		}
		return unavailable("patch "+path.String(), err)
	}

	s.hub.Publish(path)
	return nil
}

// Delete removes one document. A missing document is not an error, and
// documents in descendant collections are left in place.
func (s *Store) Delete(ctx context.Context, path store.Path, id string) error {
	if err := path.Validate(); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("path = ? AND doc_id = ?", path.String(), id).
		Delete(&Document{})
	if result.Error != nil {
		return unavailable("delete "+path.String(), result.Error)
	}

	if result.RowsAffected > 0 {
		s.hub.Publish(path)
	}
	return nil
}

// Watch registers a change watcher on the collection path.
func (s *Store) Watch(path store.Path) (<-chan struct{}, func()) {
	return s.hub.Watch(path)
}

// decode turns a row into a read record: stored fields plus id and the
// server-assigned creation timestamp.
func decode(doc Document) (store.Record, error) {
	rec := make(store.Record)
	if len(doc.Data.JSON) > 0 {
		if err := json.Unmarshal(doc.Data.JSON, &rec); err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.DocID, err)
		}
	}
	rec[store.IDField] = doc.DocID
	rec[store.CreatedAtField] = doc.CreatedAt.UTC().Format(time.RFC3339Nano)
	return rec, nil
}

// encode strips reserved fields and marshals the rest.
func encode(data store.Record) (JSON, error) {
	fields := make(map[string]interface{}, len(data))
	for k, v := range data {
		if k == store.IDField || k == store.CreatedAtField {
			continue
		}
		fields[k] = v
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return JSON{}, err
	}
	var j JSON
	j.JSON = raw
	return j, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, types.ErrStoreUnavailable, err)
}
