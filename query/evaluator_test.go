package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acksell/dynaspec/spec"
)

func TestFilters(t *testing.T) {
	engine := New(Options{})
	s := newTestSpec(t)
	record := spec.Record{
		"pk":      "a",
		"sk":      "1",
		"name":    "Widget Pro",
		"price":   25.0,
		"tags":    []any{"blue", "sale"},
		"scores":  []any{1.0, 2.0},
		"meta":    map[string]any{"color": "blue"},
		"active":  true,
		"deleted": nil,
		"blob":    []byte("abc"),
	}

	tests := []struct {
		name   string
		filter spec.Filter
		want   bool
	}{
		{"equal", spec.Filter{Attribute: "price", Operator: "=", Value: 25.0}, true},
		{"equal number never equals string", spec.Filter{Attribute: "price", Operator: "=", Value: "25"}, false},
		{"not equal", spec.Filter{Attribute: "name", Operator: "<>", Value: "Widget"}, true},
		{"less than", spec.Filter{Attribute: "price", Operator: "<", Value: 30.0}, true},
		{"less or equal", spec.Filter{Attribute: "price", Operator: "<=", Value: 25.0}, true},
		{"greater than", spec.Filter{Attribute: "price", Operator: ">", Value: 25.0}, false},
		{"greater or equal", spec.Filter{Attribute: "price", Operator: ">=", Value: 25.0}, true},
		{"between excludes bounds", spec.Filter{Attribute: "price", Operator: "between", LowerValue: 25.0, UpperValue: 30.0}, false},
		{"between inside", spec.Filter{Attribute: "price", Operator: "between", LowerValue: 20.0, UpperValue: 30.0}, true},
		{"in", spec.Filter{Attribute: "name", Operator: "in", Value: []any{"Widget", "Widget Pro"}}, true},
		{"not in", spec.Filter{Attribute: "name", Operator: "in", Value: []any{"Gadget"}}, false},
		{"attribute exists", spec.Filter{Attribute: "meta", Operator: "attribute_exists"}, true},
		{"attribute exists with null value", spec.Filter{Attribute: "deleted", Operator: "attribute_exists"}, true},
		{"attribute not exists", spec.Filter{Attribute: "missing", Operator: "attribute_not_exists"}, true},
		{"attribute not exists on present", spec.Filter{Attribute: "name", Operator: "attribute_not_exists"}, false},
		{"type string", spec.Filter{Attribute: "name", Operator: "attribute_type", Value: "S"}, true},
		{"type number", spec.Filter{Attribute: "price", Operator: "attribute_type", Value: "N"}, true},
		{"type string set", spec.Filter{Attribute: "tags", Operator: "attribute_type", Value: "SS"}, true},
		{"type number set", spec.Filter{Attribute: "scores", Operator: "attribute_type", Value: "NS"}, true},
		{"type list", spec.Filter{Attribute: "tags", Operator: "attribute_type", Value: "L"}, true},
		{"type map", spec.Filter{Attribute: "meta", Operator: "attribute_type", Value: "M"}, true},
		{"type bool", spec.Filter{Attribute: "active", Operator: "attribute_type", Value: "BOOL"}, true},
		{"type null", spec.Filter{Attribute: "deleted", Operator: "attribute_type", Value: "NULL"}, true},
		{"type binary", spec.Filter{Attribute: "blob", Operator: "attribute_type", Value: "B"}, true},
		{"type mismatch", spec.Filter{Attribute: "name", Operator: "attribute_type", Value: "N"}, false},
		{"begins with", spec.Filter{Attribute: "name", Operator: "begins_with", Value: "Widg"}, true},
		{"begins with on number", spec.Filter{Attribute: "price", Operator: "begins_with", Value: "2"}, true},
		{"contains substring", spec.Filter{Attribute: "name", Operator: "contains", Value: "Pro"}, true},
		{"contains element", spec.Filter{Attribute: "tags", Operator: "contains", Value: "sale"}, true},
		{"contains missing element", spec.Filter{Attribute: "tags", Operator: "contains", Value: "red"}, false},
		{"size of string", spec.Filter{Attribute: "name", Operator: "size", SizeOperator: "=", Value: 10.0}, true},
		{"size of list", spec.Filter{Attribute: "tags", Operator: "size", SizeOperator: ">", Value: 1.0}, true},
		{"size of map", spec.Filter{Attribute: "meta", Operator: "size", SizeOperator: "<", Value: 1.0}, false},
		{"size of number has no size", spec.Filter{Attribute: "price", Operator: "size", SizeOperator: ">=", Value: 0.0}, false},
		{"missing attribute fails comparison", spec.Filter{Attribute: "missing", Operator: "<>", Value: "x"}, false},
		{"missing attribute fails size", spec.Filter{Attribute: "missing", Operator: "size", SizeOperator: ">=", Value: 0.0}, false},
		{"missing attribute fails contains", spec.Filter{Attribute: "missing", Operator: "contains", Value: "x"}, false},
		{"incomparable operands fail", spec.Filter{Attribute: "meta", Operator: "<", Value: 1.0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := spec.Condition{
				Partition: spec.KeyValue{Value: "a"},
				Filters:   []spec.Filter{tt.filter},
			}
			got, err := engine.Matches(s, record, "main", cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterConjunction(t *testing.T) {
	engine := New(Options{})
	s := newTestSpec(t,
		spec.Record{"pk": "a", "sk": "1", "status": "OPEN", "total": 10.0},
		spec.Record{"pk": "a", "sk": "2", "status": "OPEN", "total": 99.0},
		spec.Record{"pk": "a", "sk": "3", "status": "CLOSED", "total": 10.0},
		spec.Record{"pk": "a", "sk": "4", "total": 10.0},
	)
	filters := []spec.Filter{
		{Attribute: "status", Operator: "=", Value: "OPEN"},
		{Attribute: "total", Operator: "<", Value: 50.0},
		{Attribute: "status", Operator: "attribute_exists"},
	}
	run := func(fs []spec.Filter) []any {
		p := queryPattern("main", "a")
		p.Condition.Filters = fs
		got, err := engine.Query(s, p)
		require.NoError(t, err)
		sks := make([]any, len(got))
		for i, r := range got {
			sks[i] = r["sk"]
		}
		return sks
	}

	all := run(filters)
	assert.Equal(t, []any{"1"}, all)

	// Dropping the equality or the bound widens the result.
	assert.Equal(t, []any{"1", "3"}, run(filters[1:]))
	assert.Equal(t, []any{"1", "2"}, run([]spec.Filter{filters[0], filters[2]}))
}

func TestCompile(t *testing.T) {
	t.Run("variants", func(t *testing.T) {
		c, err := Compile(spec.Condition{
			Partition: spec.KeyValue{Value: "a"},
			Sort:      &spec.SortCondition{Operator: "begins_with", Value: "ORDER#"},
			Filters: []spec.Filter{
				{Attribute: "total", Operator: "between", LowerValue: 1.0, UpperValue: 2.0},
				{Attribute: "tags", Operator: "size", SizeOperator: ">=", Value: 2.0},
				{Attribute: "kind", Operator: "attribute_type", Value: "ss"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, SortBeginsWith{Prefix: "ORDER#"}, c.Sort)
		assert.Equal(t, []Filter{
			Between{Attribute: "total", Lower: 1.0, Upper: 2.0},
			Size{Attribute: "tags", Op: GreaterOrEqual, Value: 2},
			HasType{Attribute: "kind", Type: TypeStringSet},
		}, c.Filters)
	})

	malformedFilters := []spec.Filter{
		{Operator: "="},
		{Attribute: "a", Operator: "in", Value: "not-a-list"},
		{Attribute: "a", Operator: "in", Value: []any{}},
		{Attribute: "a", Operator: "attribute_type", Value: "X"},
		{Attribute: "a", Operator: "size", SizeOperator: "<>", Value: 1.0},
		{Attribute: "a", Operator: "size", SizeOperator: ">", Value: "one"},
		{Attribute: "a", Operator: "begins_with", Value: 1.0},
		{Attribute: "a", Operator: "between", UpperValue: 1.0},
	}
	for _, f := range malformedFilters {
		_, err := CompileFilter(f)
		assert.ErrorIs(t, err, ErrMalformedCondition, "filter %+v", f)
	}

	_, err := CompileSort(spec.SortCondition{Operator: "<>", Value: "x"})
	assert.ErrorIs(t, err, ErrMalformedCondition)
}

func TestCompareSortValues(t *testing.T) {
	assert.Equal(t, -1, compareSortValues(9, 10))
	assert.Equal(t, -1, compareSortValues("9", "10"))
	assert.Equal(t, -1, compareSortValues(10, "#x"))
	assert.Equal(t, 1, compareSortValues("#x", 10))
	assert.Equal(t, 0, compareSortValues(true, "a"))
	assert.Equal(t, 0, compareSortValues(nil, 1))
}

func TestNaturalCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"1000", "10000", -1},
		{"ORDER#2", "ORDER#10", -1},
		{"a", "b", -1},
		{"abc", "abc", 0},
		{"007", "7", 1},
		{"v1.10", "v1.9", 1},
		{"item", "item2", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, naturalCompare(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, -tt.want, naturalCompare(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}
