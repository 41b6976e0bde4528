package models

import (
	"encoding/json"

	"github.com/dkoren/drivenet/internal/store"
)

// ToRecord converts a model into the schemaless record shape the store
// persists. It round-trips through JSON so the stored field names are
// exactly the wire names.
func ToRecord(v interface{}) (store.Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	rec := make(store.Record)
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// FromRecord decodes a store record into a model. Lenient scalar decoding
// (numeric strings, bool-ish values) happens here via the types package.
func FromRecord[T any](rec store.Record) (T, error) {
	var v T
	raw, err := json.Marshal(rec)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(raw, &v)
	return v, err
}
