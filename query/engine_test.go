package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acksell/dynaspec/spec"
)

func newTestSpec(t *testing.T, records ...spec.Record) *spec.Spec {
	t.Helper()
	return &spec.Spec{
		TableName: "test-table",
		Attributes: map[string]spec.AttributeType{
			"pk": spec.AttributeTypeS, "sk": spec.AttributeTypeS,
			"gsi1pk": spec.AttributeTypeS, "gsi1sk": spec.AttributeTypeS,
		},
		Indexes: map[string]spec.Index{
			spec.MainIndex: {PartitionAttribute: "pk", SortAttribute: "sk", Kind: spec.IndexKindPrimary, Projection: spec.ProjectionAll},
			"GSI1":         {PartitionAttribute: "gsi1pk", SortAttribute: "gsi1sk", Kind: spec.IndexKindGlobal, Projection: spec.ProjectionAll},
			"ByStatus":     {PartitionAttribute: "status", Kind: spec.IndexKindGlobal, Projection: spec.ProjectionKeysOnly},
			"ByStatusInc":  {PartitionAttribute: "status", Kind: spec.IndexKindGlobal, Projection: spec.ProjectionInclude, NonKeyAttributes: []string{"total"}},
		},
		Records: records,
	}
}

func queryPattern(index string, partition any) spec.AccessPattern {
	return spec.AccessPattern{
		Title:     "test",
		Index:     index,
		Type:      spec.PatternQuery,
		Condition: spec.Condition{Partition: spec.KeyValue{Value: partition}},
	}
}

func TestQuery(t *testing.T) {
	engine := New(Options{})

	t.Run("sort equality", func(t *testing.T) {
		s := newTestSpec(t,
			spec.Record{"pk": "user-1", "sk": "1000"},
			spec.Record{"pk": "user-1", "sk": "10000"},
		)
		p := queryPattern("main", "user-1")
		p.Condition.Sort = &spec.SortCondition{Operator: "=", Value: "1000"}

		got, err := engine.Query(s, p)
		require.NoError(t, err)
		assert.Equal(t, []spec.Record{{"pk": "user-1", "sk": "1000"}}, got)
	})

	t.Run("descending is numeric aware", func(t *testing.T) {
		s := newTestSpec(t,
			spec.Record{"pk": "user-1", "sk": "1000"},
			spec.Record{"pk": "user-1", "sk": "10000"},
		)
		p := queryPattern("main", "user-1")
		p.Order = spec.OrderDesc

		got, err := engine.Query(s, p)
		require.NoError(t, err)
		assert.Equal(t, []spec.Record{
			{"pk": "user-1", "sk": "10000"},
			{"pk": "user-1", "sk": "1000"},
		}, got)
	})

	t.Run("in filter", func(t *testing.T) {
		s := newTestSpec(t,
			spec.Record{"pk": "job", "sk": "1", "status": "READY"},
			spec.Record{"pk": "job", "sk": "2", "status": "STOPPED"},
			spec.Record{"pk": "job", "sk": "3", "status": "PUBLISHED"},
		)
		p := queryPattern("main", "job")
		p.Condition.Filters = []spec.Filter{
			{Attribute: "status", Operator: "in", Value: []any{"READY", "PUBLISHED"}},
		}

		got, err := engine.Query(s, p)
		require.NoError(t, err)
		assert.Equal(t, []spec.Record{s.Records[0], s.Records[2]}, got)
	})

	t.Run("ascending natural order with stable ties", func(t *testing.T) {
		s := newTestSpec(t,
			spec.Record{"pk": "a", "sk": "ORDER#10", "n": 1},
			spec.Record{"pk": "a", "sk": "ORDER#9", "n": 2},
			spec.Record{"pk": "a", "sk": "ORDER#10", "n": 3},
			spec.Record{"pk": "b", "sk": "ORDER#1", "n": 4},
		)
		got, err := engine.Query(s, queryPattern("main", "a"))
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []any{2, 1, 3}, []any{got[0]["n"], got[1]["n"], got[2]["n"]})
	})

	t.Run("limit applies after ordering", func(t *testing.T) {
		s := newTestSpec(t,
			spec.Record{"pk": "a", "sk": "1"},
			spec.Record{"pk": "a", "sk": "3"},
			spec.Record{"pk": "a", "sk": "2"},
		)
		p := queryPattern("main", "a")
		p.Order = spec.OrderDesc
		p.Limit = 2

		got, err := engine.Query(s, p)
		require.NoError(t, err)
		assert.Equal(t, []spec.Record{{"pk": "a", "sk": "3"}, {"pk": "a", "sk": "2"}}, got)
	})

	t.Run("numbers sort before strings", func(t *testing.T) {
		s := newTestSpec(t,
			spec.Record{"pk": "a", "sk": "#x"},
			spec.Record{"pk": "a", "sk": 5},
			spec.Record{"pk": "a", "sk": "9"},
			spec.Record{"pk": "a", "sk": 10},
		)
		got, err := engine.Query(s, queryPattern("main", "a"))
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, []any{5, 10, "#x", "9"}, []any{got[0]["sk"], got[1]["sk"], got[2]["sk"], got[3]["sk"]})
	})

	t.Run("descending keeps record order without sort attribute", func(t *testing.T) {
		s := newTestSpec(t,
			spec.Record{"pk": "a", "sk": "1", "status": "OPEN"},
			spec.Record{"pk": "a", "sk": "2", "status": "OPEN"},
		)
		p := queryPattern("ByStatus", "OPEN")
		p.Order = spec.OrderDesc

		got, err := engine.Query(s, p)
		require.NoError(t, err)
		assert.Equal(t, []spec.Record{s.Records[0], s.Records[1]}, got)
	})

	t.Run("no match is an empty result", func(t *testing.T) {
		s := newTestSpec(t, spec.Record{"pk": "a", "sk": "1"})
		got, err := engine.Query(s, queryPattern("main", "zzz"))
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("sparse secondary index", func(t *testing.T) {
		s := newTestSpec(t,
			spec.Record{"pk": "a", "sk": "1", "gsi1pk": "G", "gsi1sk": "x"},
			spec.Record{"pk": "a", "sk": "2", "gsi1pk": "G"},
			spec.Record{"pk": "a", "sk": "3", "gsi1pk": "G", "gsi1sk": "y"},
		)
		got, err := engine.Query(s, queryPattern("GSI1", "G"))
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, r := range got {
			assert.Contains(t, r, "gsi1pk")
			assert.Contains(t, r, "gsi1sk")
		}
	})

	t.Run("numbers compare numerically", func(t *testing.T) {
		s := newTestSpec(t,
			spec.Record{"pk": "a", "sk": 9.0},
			spec.Record{"pk": "a", "sk": 10.0},
			spec.Record{"pk": "a", "sk": 100.0},
		)
		p := queryPattern("main", "a")
		p.Condition.Sort = &spec.SortCondition{Operator: ">", Value: 9.0}

		got, err := engine.Query(s, p)
		require.NoError(t, err)
		assert.Equal(t, []spec.Record{{"pk": "a", "sk": 10.0}, {"pk": "a", "sk": 100.0}}, got)
	})

	t.Run("partition equality is strict", func(t *testing.T) {
		s := newTestSpec(t, spec.Record{"pk": "1", "sk": "a"}, spec.Record{"pk": 1.0, "sk": "b"})
		got, err := engine.Query(s, queryPattern("main", 1.0))
		require.NoError(t, err)
		assert.Equal(t, []spec.Record{{"pk": 1.0, "sk": "b"}}, got)
	})
}

func TestQuerySortOperators(t *testing.T) {
	s := newTestSpec(t,
		spec.Record{"pk": "a", "sk": "2024-01"},
		spec.Record{"pk": "a", "sk": "2024-02"},
		spec.Record{"pk": "a", "sk": "2024-03"},
		spec.Record{"pk": "a", "sk": "2025-01"},
	)
	sks := func(records []spec.Record) []any {
		out := make([]any, len(records))
		for i, r := range records {
			out[i] = r["sk"]
		}
		return out
	}

	tests := []struct {
		name      string
		sort      spec.SortCondition
		inclusive bool
		want      []any
	}{
		{"less than", spec.SortCondition{Operator: "<", Value: "2024-02"}, false, []any{"2024-01"}},
		{"less or equal", spec.SortCondition{Operator: "<=", Value: "2024-02"}, false, []any{"2024-01", "2024-02"}},
		{"greater than", spec.SortCondition{Operator: ">", Value: "2024-03"}, false, []any{"2025-01"}},
		{"greater or equal", spec.SortCondition{Operator: ">=", Value: "2024-03"}, false, []any{"2024-03", "2025-01"}},
		{"between excludes bounds", spec.SortCondition{Operator: "between", LowerValue: "2024-01", UpperValue: "2024-03"}, false, []any{"2024-02"}},
		{"between includes bounds when configured", spec.SortCondition{Operator: "between", LowerValue: "2024-01", UpperValue: "2024-03"}, true, []any{"2024-01", "2024-02", "2024-03"}},
		{"between is case insensitive", spec.SortCondition{Operator: "BETWEEN", LowerValue: "2024-01", UpperValue: "2024-03"}, false, []any{"2024-02"}},
		{"begins with", spec.SortCondition{Operator: "begins_with", Value: "2024"}, false, []any{"2024-01", "2024-02", "2024-03"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := queryPattern("main", "a")
			sc := tt.sort
			p.Condition.Sort = &sc
			got, err := New(Options{InclusiveBetween: tt.inclusive}).Query(s, p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sks(got))
		})
	}
}

func TestQueryErrors(t *testing.T) {
	engine := New(Options{})
	s := newTestSpec(t, spec.Record{"pk": "a", "sk": "1"})

	t.Run("unknown index", func(t *testing.T) {
		_, err := engine.Query(s, queryPattern("GSI9", "a"))
		assert.ErrorIs(t, err, ErrUnknownIndex)
	})

	t.Run("between without upper bound", func(t *testing.T) {
		p := queryPattern("main", "a")
		p.Condition.Sort = &spec.SortCondition{Operator: "between", LowerValue: "0"}
		_, err := engine.Query(s, p)
		assert.ErrorIs(t, err, ErrMalformedCondition)
	})

	t.Run("sort condition on partition-only index", func(t *testing.T) {
		p := queryPattern("ByStatus", "OPEN")
		p.Condition.Sort = &spec.SortCondition{Value: "x"}
		_, err := engine.Query(s, p)
		assert.ErrorIs(t, err, ErrMalformedCondition)
	})

	t.Run("unknown filter operator", func(t *testing.T) {
		p := queryPattern("main", "a")
		p.Condition.Filters = []spec.Filter{{Attribute: "x", Operator: "like", Value: "y"}}
		_, err := engine.Query(s, p)
		assert.ErrorIs(t, err, ErrMalformedCondition)
	})

	t.Run("negative limit", func(t *testing.T) {
		p := queryPattern("main", "a")
		p.Limit = -1
		_, err := engine.Query(s, p)
		assert.ErrorIs(t, err, ErrMalformedCondition)
	})

	t.Run("missing partition value", func(t *testing.T) {
		_, err := engine.Query(s, queryPattern("main", nil))
		assert.ErrorIs(t, err, ErrMalformedCondition)
	})
}

func TestGet(t *testing.T) {
	engine := New(Options{})
	s := newTestSpec(t,
		spec.Record{"pk": "user-1", "sk": "profile", "n": 1},
		spec.Record{"pk": "user-1", "sk": "profile", "n": 2},
		spec.Record{"pk": "user-2", "status": "OPEN", "total": 3},
	)
	get := func(index string, partition, sort any) spec.AccessPattern {
		p := queryPattern(index, partition)
		p.Type = spec.PatternGet
		if sort != nil {
			p.Condition.Sort = &spec.SortCondition{Operator: "=", Value: sort}
		}
		return p
	}

	t.Run("returns the first match", func(t *testing.T) {
		r, ok, err := engine.Get(s, get("main", "user-1", "profile"))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 1, r["n"])
	})

	t.Run("no match is absent and the router returns an empty sequence", func(t *testing.T) {
		p := get("main", "user-1", "settings")
		_, ok, err := engine.Get(s, p)
		require.NoError(t, err)
		assert.False(t, ok)

		records, err := engine.FindMatchingRecords(s, p)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Len(t, records, 0)
	})

	t.Run("sort value is required on a sorted index", func(t *testing.T) {
		_, _, err := engine.Get(s, get("main", "user-1", nil))
		assert.ErrorIs(t, err, ErrMalformedCondition)
	})

	t.Run("partition-only index with projection", func(t *testing.T) {
		r, ok, err := engine.Get(s, get("ByStatus", "OPEN", nil))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, spec.Record{"pk": "user-2", "status": "OPEN"}, r)
	})
}

func TestFindMatchingRecords(t *testing.T) {
	engine := New(Options{})
	s := newTestSpec(t, spec.Record{"pk": "a", "sk": "1"}, spec.Record{"pk": "a", "sk": "2"})

	t.Run("query returns all matches", func(t *testing.T) {
		got, err := engine.FindMatchingRecords(s, queryPattern("main", "a"))
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("get wraps the record", func(t *testing.T) {
		p := queryPattern("main", "a")
		p.Type = spec.PatternGet
		p.Condition.Sort = &spec.SortCondition{Operator: "=", Value: "2"}
		got, err := engine.FindMatchingRecords(s, p)
		require.NoError(t, err)
		assert.Equal(t, []spec.Record{{"pk": "a", "sk": "2"}}, got)
	})

	t.Run("unknown type", func(t *testing.T) {
		p := queryPattern("main", "a")
		p.Type = "scan"
		_, err := engine.FindMatchingRecords(s, p)
		assert.ErrorIs(t, err, ErrUnknownPatternType)
	})

	t.Run("idempotent", func(t *testing.T) {
		p := queryPattern("main", "a")
		p.Order = spec.OrderDesc
		first, err := engine.FindMatchingRecords(s, p)
		require.NoError(t, err)
		second, err := engine.FindMatchingRecords(s, p)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, []spec.Record{{"pk": "a", "sk": "1"}, {"pk": "a", "sk": "2"}}, s.Records)
	})
}

func TestRecordsInIndex(t *testing.T) {
	engine := New(Options{})
	s := newTestSpec(t,
		spec.Record{"pk": "a", "sk": "1", "status": "OPEN", "total": 5, "note": "x"},
		spec.Record{"pk": "a", "sk": "2"},
	)

	got, err := engine.RecordsInIndex(s, "ByStatusInc")
	require.NoError(t, err)
	assert.Equal(t, []spec.Record{{"pk": "a", "sk": "1", "status": "OPEN", "total": 5}}, got)

	got, err = engine.RecordsInIndex(s, "main")
	require.NoError(t, err)
	assert.Equal(t, s.Records, got)

	_, err = engine.RecordsInIndex(s, "nope")
	assert.ErrorIs(t, err, ErrUnknownIndex)
}
