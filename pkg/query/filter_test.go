package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComparisonFilterEquals(t *testing.T) {
	f := &ComparisonFilter{Field: "label", Operator: OpEquals, Value: "core"}
	require.True(t, f.Match(map[string]interface{}{"label": "core"}))
	require.False(t, f.Match(map[string]interface{}{"label": "noise"}))
	require.False(t, f.Match(map[string]interface{}{}))
}

func TestComparisonFilterOrdering(t *testing.T) {
	gt := &ComparisonFilter{Field: "score", Operator: OpGreaterThan, Value: 5.0}
	require.True(t, gt.Match(map[string]interface{}{"score": 6.0}))
	require.False(t, gt.Match(map[string]interface{}{"score": 5.0}))

	gte := &ComparisonFilter{Field: "score", Operator: OpGreaterOrEq, Value: 5.0}
	require.True(t, gte.Match(map[string]interface{}{"score": 5.0}))
}

func TestComparisonFilterExists(t *testing.T) {
	f := &ComparisonFilter{Field: "label", Operator: OpExists}
	require.True(t, f.Match(map[string]interface{}{"label": "core"}))
	require.False(t, f.Match(map[string]interface{}{}))
}

func TestRangeFilter(t *testing.T) {
	f := &RangeFilter{Field: "score", Min: 1.0, Max: 10.0}
	require.True(t, f.Match(map[string]interface{}{"score": 5.0}))
	require.False(t, f.Match(map[string]interface{}{"score": 11.0}))
	require.False(t, f.Match(map[string]interface{}{"score": 0.0}))
	require.False(t, f.Match(map[string]interface{}{}))
}

func TestRangeFilterOpenBounds(t *testing.T) {
	f := &RangeFilter{Field: "score", Min: 1.0}
	require.True(t, f.Match(map[string]interface{}{"score": 1000.0}))
}

func TestInListFilter(t *testing.T) {
	f := &InListFilter{Field: "region", Values: []interface{}{"us", "eu"}}
	require.True(t, f.Match(map[string]interface{}{"region": "us"}))
	require.False(t, f.Match(map[string]interface{}{"region": "ap"}))
}

func TestInListFilterNegate(t *testing.T) {
	f := &InListFilter{Field: "region", Values: []interface{}{"us"}, Negate: true}
	require.True(t, f.Match(map[string]interface{}{"region": "eu"}))
	require.False(t, f.Match(map[string]interface{}{"region": "us"}))
	require.True(t, f.Match(map[string]interface{}{}))
}

func TestAndFilter(t *testing.T) {
	f := &AndFilter{Filters: []Filter{
		&ComparisonFilter{Field: "score", Operator: OpGreaterThan, Value: 1.0},
		&ComparisonFilter{Field: "region", Operator: OpEquals, Value: "us"},
	}}
	require.True(t, f.Match(map[string]interface{}{"score": 2.0, "region": "us"}))
	require.False(t, f.Match(map[string]interface{}{"score": 2.0, "region": "eu"}))
}

func TestOrFilter(t *testing.T) {
	f := &OrFilter{Filters: []Filter{
		&ComparisonFilter{Field: "region", Operator: OpEquals, Value: "us"},
		&ComparisonFilter{Field: "region", Operator: OpEquals, Value: "eu"},
	}}
	require.True(t, f.Match(map[string]interface{}{"region": "eu"}))
	require.False(t, f.Match(map[string]interface{}{"region": "ap"}))
}
