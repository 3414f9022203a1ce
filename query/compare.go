package query

import (
	"bytes"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/constraints"
)

func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// asString returns the string form of scalar values. Lists, maps, booleans
// and nil have none.
func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	if n, ok := asNumber(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

// compareValues orders two operands: numerically when both are numbers,
// otherwise by their string forms. ok is false when either operand has no
// ordering.
func compareValues(a, b any) (c int, ok bool) {
	if x, isNum := asNumber(a); isNum {
		if y, isNum := asNumber(b); isNum {
			return compareOrdered(x, y), true
		}
	}
	if x, isBytes := a.([]byte); isBytes {
		if y, isBytes := b.([]byte); isBytes {
			return bytes.Compare(x, y), true
		}
	}
	x, okA := asString(a)
	y, okB := asString(b)
	if !okA || !okB {
		return 0, false
	}
	return strings.Compare(x, y), true
}

// equalValues is strict equality: a number never equals a string.
func equalValues(a, b any) bool {
	if x, ok := asNumber(a); ok {
		y, ok := asNumber(b)
		return ok && x == y
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

func compareWith(op Comparator, actual, operand any) bool {
	switch op {
	case Equal:
		return equalValues(actual, operand)
	case NotEqual:
		return !equalValues(actual, operand)
	}
	c, ok := compareValues(actual, operand)
	if !ok {
		return false
	}
	switch op {
	case LessThan:
		return c < 0
	case LessOrEqual:
		return c <= 0
	case GreaterThan:
		return c > 0
	case GreaterOrEqual:
		return c >= 0
	}
	return false
}

// sizeOf follows the DynamoDB size function: characters of a string, bytes
// of a binary, elements of a list or map.
func sizeOf(v any) (float64, bool) {
	switch x := v.(type) {
	case string:
		return float64(utf8.RuneCountInString(x)), true
	case []byte:
		return float64(len(x)), true
	case []any:
		return float64(len(x)), true
	case map[string]any:
		return float64(len(x)), true
	}
	return 0, false
}

func containsOperand(actual, operand any) bool {
	switch x := actual.(type) {
	case string:
		s, ok := operand.(string)
		return ok && strings.Contains(x, s)
	case []byte:
		b, ok := operand.([]byte)
		return ok && bytes.Contains(x, b)
	case []any:
		for _, el := range x {
			if equalValues(el, operand) {
				return true
			}
		}
	}
	return false
}

func hasAttributeType(v any, t AttributeTypeName) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		_, ok := asNumber(v)
		return ok
	case TypeBinary:
		_, ok := v.([]byte)
		return ok
	case TypeBool:
		_, ok := v.(bool)
		return ok
	case TypeNull:
		return v == nil
	case TypeList:
		_, ok := v.([]any)
		return ok
	case TypeMap:
		_, ok := v.(map[string]any)
		return ok
	case TypeStringSet:
		return everyElement(v, func(el any) bool { _, ok := el.(string); return ok })
	case TypeNumberSet:
		return everyElement(v, func(el any) bool { _, ok := asNumber(el); return ok })
	case TypeBinarySet:
		return everyElement(v, func(el any) bool { _, ok := el.([]byte); return ok })
	}
	return false
}

// everyElement reports whether v is a non-empty list whose elements all
// satisfy pred. Sets are modelled as lists.
func everyElement(v any, pred func(any) bool) bool {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return false
	}
	for _, el := range list {
		if !pred(el) {
			return false
		}
	}
	return true
}
