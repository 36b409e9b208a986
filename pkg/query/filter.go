package query

import "fmt"

// Filter reports whether a point's metadata passes the filter.
type Filter interface {
	Match(metadata map[string]interface{}) bool
}

// FilterOperator names a comparison applied by ComparisonFilter.
type FilterOperator string

const (
	OpEquals      FilterOperator = "eq"
	OpNotEquals   FilterOperator = "ne"
	OpGreaterThan FilterOperator = "gt"
	OpLessThan    FilterOperator = "lt"
	OpGreaterOrEq FilterOperator = "gte"
	OpLessOrEq    FilterOperator = "lte"
	OpExists      FilterOperator = "exists"
)

// ComparisonFilter filters on a single metadata field.
type ComparisonFilter struct {
	Field    string
	Operator FilterOperator
	Value    interface{}
}

// Match implements Filter.
func (f *ComparisonFilter) Match(metadata map[string]interface{}) bool {
	fieldValue, exists := metadata[f.Field]
	if f.Operator == OpExists {
		return exists
	}
	if !exists {
		return false
	}

	switch f.Operator {
	case OpEquals:
		return equals(fieldValue, f.Value)
	case OpNotEquals:
		return !equals(fieldValue, f.Value)
	case OpGreaterThan:
		return compare(fieldValue, f.Value) > 0
	case OpLessThan:
		return compare(fieldValue, f.Value) < 0
	case OpGreaterOrEq:
		return compare(fieldValue, f.Value) >= 0
	case OpLessOrEq:
		return compare(fieldValue, f.Value) <= 0
	default:
		return false
	}
}

// RangeFilter filters on a field falling within [Min, Max] (either
// bound may be nil to leave it open).
type RangeFilter struct {
	Field string
	Min   interface{}
	Max   interface{}
}

// Match implements Filter.
func (f *RangeFilter) Match(metadata map[string]interface{}) bool {
	fieldValue, exists := metadata[f.Field]
	if !exists {
		return false
	}
	if f.Min != nil && compare(fieldValue, f.Min) < 0 {
		return false
	}
	if f.Max != nil && compare(fieldValue, f.Max) > 0 {
		return false
	}
	return true
}

// InListFilter filters on membership (or non-membership) in a set of
// values.
type InListFilter struct {
	Field  string
	Values []interface{}
	Negate bool
}

// Match implements Filter.
func (f *InListFilter) Match(metadata map[string]interface{}) bool {
	fieldValue, exists := metadata[f.Field]
	if !exists {
		return f.Negate
	}

	found := false
	for _, v := range f.Values {
		if equals(fieldValue, v) {
			found = true
			break
		}
	}
	if f.Negate {
		return !found
	}
	return found
}

// AndFilter matches when every sub-filter matches.
type AndFilter struct{ Filters []Filter }

// Match implements Filter.
func (f *AndFilter) Match(metadata map[string]interface{}) bool {
	for _, sub := range f.Filters {
		if !sub.Match(metadata) {
			return false
		}
	}
	return true
}

// OrFilter matches when any sub-filter matches.
type OrFilter struct{ Filters []Filter }

// Match implements Filter.
func (f *OrFilter) Match(metadata map[string]interface{}) bool {
	for _, sub := range f.Filters {
		if sub.Match(metadata) {
			return true
		}
	}
	return false
}

func equals(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// compare returns -1, 0, or 1 comparing two numeric (or string)
// metadata values. Mismatched or non-comparable types compare equal.
func compare(a, b interface{}) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
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

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}

	return 0
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
