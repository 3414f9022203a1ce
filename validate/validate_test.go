package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acksell/dynaspec/spec"
)

func validDoc() map[string]any {
	return map[string]any{
		"tableName":  "orders",
		"attributes": map[string]any{"pk": "S", "sk": map[string]any{"type": "N"}},
		"indexes": map[string]any{
			"main": map[string]any{"partitionAttribute": "pk", "sortAttribute": "sk"},
		},
		"accessPatterns": []any{
			map[string]any{
				"title": "Orders by customer",
				"index": "main",
				"type":  "query",
				"condition": map[string]any{
					"partition": "CUSTOMER#1",
					"sort":      map[string]any{"operator": "between", "minValue": 1, "maxValue": 9},
					"filters":   []any{map[string]any{"attribute": "status", "operator": "in", "value": []any{"OPEN"}}},
				},
				"limit": 5,
			},
		},
	}
}

func TestValidate(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	t.Run("accepts a valid document", func(t *testing.T) {
		require.NoError(t, v.Validate(validDoc()))
	})

	tests := []struct {
		name   string
		mutate func(doc map[string]any)
		field  string
	}{
		{
			name:   "missing table name",
			mutate: func(doc map[string]any) { delete(doc, "tableName") },
			field:  "(root)",
		},
		{
			name: "unknown attribute type",
			mutate: func(doc map[string]any) {
				doc["attributes"].(map[string]any)["pk"] = "X"
			},
			field: "attributes.pk",
		},
		{
			name: "missing main index",
			mutate: func(doc map[string]any) {
				doc["indexes"] = map[string]any{"GSI1": map[string]any{"partitionAttribute": "pk"}}
			},
			field: "indexes",
		},
		{
			name: "unknown filter operator",
			mutate: func(doc map[string]any) {
				p := doc["accessPatterns"].([]any)[0].(map[string]any)
				p["condition"].(map[string]any)["filters"] = []any{map[string]any{"attribute": "a", "operator": "like"}}
			},
			field: "accessPatterns.0.condition.filters.0.operator",
		},
		{
			name: "zero limit",
			mutate: func(doc map[string]any) {
				doc["accessPatterns"].([]any)[0].(map[string]any)["limit"] = 0
			},
			field: "accessPatterns.0.limit",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(doc)
			err := v.Validate(doc)
			require.Error(t, err)

			var verr *Error
			require.True(t, errors.As(err, &verr))
			fields := make([]string, 0, len(verr.Problems))
			for _, p := range verr.Problems {
				fields = append(fields, p.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidatorWithParse(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	_, err = spec.Parse([]byte(`{"tableName": "orders", "attributes": {"pk": "S"}, "indexes": {}}`), spec.FormatJSON, v)
	var verr *Error
	require.ErrorAs(t, err, &verr)

	s, err := spec.Parse([]byte(`{"tableName": "orders", "attributes": {"pk": "S"}, "indexes": {"main": {"partitionAttribute": "pk"}}}`), spec.FormatJSON, v)
	require.NoError(t, err)
	assert.Equal(t, "orders", s.TableName)
}
