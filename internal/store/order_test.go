package store_test

import (
	"testing"

	"github.com/dkoren/drivenet/internal/store"
)

func recordIDs(records []store.Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID()
	}
	return ids
}

// TestSortRecordsDefault tests the default createdAt-ascending order
func TestSortRecordsDefault(t *testing.T) {
	records := []store.Record{
		{"id": "b", "createdAt": "2026-02-01T00:00:00Z"},
		{"id": "a", "createdAt": "2026-01-01T00:00:00Z"},
		{"id": "c", "createdAt": "2026-03-01T00:00:00Z"},
	}
	store.SortRecords(records, nil)

	got := recordIDs(records)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

// TestSortRecordsDescending tests explicit descending order
func TestSortRecordsDescending(t *testing.T) {
	records := []store.Record{
		{"id": "a", "createdAt": "2026-01-01T00:00:00Z"},
		{"id": "c", "createdAt": "2026-03-01T00:00:00Z"},
		{"id": "b", "createdAt": "2026-02-01T00:00:00Z"},
	}
	store.SortRecords(records, &store.Order{Field: store.CreatedAtField, Desc: true})

	got := recordIDs(records)
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

// TestSortRecordsTiebreak tests the document id tiebreak on equal field values
func TestSortRecordsTiebreak(t *testing.T) {
	records := []store.Record{
		{"id": "z", "date": "2026-01-10"},
		{"id": "a", "date": "2026-01-10"},
		{"id": "m", "date": "2026-01-05"},
	}
	store.SortRecords(records, &store.Order{Field: "date"})

	got := recordIDs(records)
	want := []string{"m", "a", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

// TestSortRecordsNumericField tests numeric comparison on a custom field
func TestSortRecordsNumericField(t *testing.T) {
	records := []store.Record{
		{"id": "a", "points": float64(100)},
		{"id": "b", "points": float64(9)},
		{"id": "c", "points": float64(25)},
	}
	store.SortRecords(records, &store.Order{Field: "points"})

	got := recordIDs(records)
	// Numeric, not lexicographic: 9 < 25 < 100
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

// TestSortRecordsMissingField tests that records without the field sort first
func TestSortRecordsMissingField(t *testing.T) {
	records := []store.Record{
		{"id": "a", "date": "2026-01-10"},
		{"id": "b"},
	}
	store.SortRecords(records, &store.Order{Field: "date"})

	if records[0].ID() != "b" {
		t.Errorf("Expected record missing the order field to sort first, got %v", recordIDs(records))
	}
}
