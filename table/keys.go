package table

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/acksell/dynaspec/spec"
)

type PrimaryKeyDefinition struct {
	PartitionKey KeyDef
	SortKey      KeyDef
}

func (k PrimaryKeyDefinition) HasSortKey() bool {
	return k.SortKey.Name != ""
}

type KeyDef struct {
	Name string
	Kind KeyKind
}

type KeyKind string

const (
	KeyKindS KeyKind = "S"
	KeyKindN KeyKind = "N"
	KeyKindB KeyKind = "B"
)

// KeyFromRecord marshals the key attributes of a record, checking each
// against its declared kind.
func (k PrimaryKeyDefinition) KeyFromRecord(r spec.Record) (map[string]types.AttributeValue, error) {
	key := map[string]types.AttributeValue{}
	defs := []KeyDef{k.PartitionKey}
	if k.HasSortKey() {
		defs = append(defs, k.SortKey)
	}
	for _, def := range defs {
		v, ok := r[def.Name]
		if !ok {
			return nil, fmt.Errorf("key attribute %q not found on record", def.Name)
		}
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal key %q of type %T: %w", def.Name, v, err)
		}
		if err := attributeMatchesDefinition(def.Kind, av); err != nil {
			return nil, fmt.Errorf("key %q kind does not match definition: %w", def.Name, err)
		}
		key[def.Name] = av
	}
	return key, nil
}

// ItemFromRecord marshals a whole record for PutItem.
func ItemFromRecord(r spec.Record) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(map[string]any(r))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return item, nil
}

// RecordFromItem converts a DynamoDB item back to a record. Numbers become
// float64 and sets become lists, the shapes a loaded spec uses.
func RecordFromItem(item map[string]types.AttributeValue) (spec.Record, error) {
	var m map[string]any
	if err := attributevalue.UnmarshalMapWithOptions(item, &m, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = false
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	for k, v := range m {
		m[k] = setsToLists(v)
	}
	return spec.Record(m), nil
}

func setsToLists(v any) any {
	switch x := v.(type) {
	case []string:
		return toList(x)
	case []float64:
		return toList(x)
	case [][]byte:
		return toList(x)
	case []any:
		for i := range x {
			x[i] = setsToLists(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = setsToLists(x[k])
		}
	}
	return v
}

func toList[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func attributeMatchesDefinition(want KeyKind, v types.AttributeValue) error {
	var got KeyKind
	switch v.(type) {
	case *types.AttributeValueMemberS:
		got = KeyKindS
	case *types.AttributeValueMemberN:
		got = KeyKindN
	case *types.AttributeValueMemberB:
		got = KeyKindB
	default:
		return fmt.Errorf("unexpected key attribute type %T", v)
	}
	if got != want {
		return fmt.Errorf("got KeyKind %q want %q", got, want)
	}
	return nil
}
