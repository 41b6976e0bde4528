package store

import (
	"fmt"
	"sort"
)

// SortRecords orders records per order, breaking ties on the order field by
// store-assigned document id so repeated queries return a deterministic
// order. A nil order sorts by creation timestamp, then id.
func SortRecords(records []Record, order *Order) {
	field := CreatedAtField
	desc := false
	if order != nil {
		field = order.Field
		desc = order.Desc
	}

	sort.SliceStable(records, func(i, j int) bool {
		c := compareValues(records[i][field], records[j][field])
		if c == 0 {
			c = compareValues(records[i][IDField], records[j][IDField])
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compareValues orders schemaless JSON values: nil first, then numbers, then
// everything else by string form. Cross-type comparisons fall back to the
// string form too, so ordering stays total.
func compareValues(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as := asString(a)
	bs := asString(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
