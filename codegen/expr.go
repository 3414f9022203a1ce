package codegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/acksell/dynaspec/query"
)

// goLiteral renders a document value as Go source.
func goLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case []byte:
		return fmt.Sprintf("[]byte(%q)", x)
	case []any:
		parts := make([]string, len(x))
		for i, el := range x {
			parts[i] = goLiteral(el)
		}
		return "[]any{" + strings.Join(parts, ", ") + "}"
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + goLiteral(x[k])
		}
		return "map[string]any{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%#v", v)
	}
}

var comparatorMethods = map[query.Comparator]string{
	query.Equal:          "Equal",
	query.NotEqual:       "NotEqual",
	query.LessThan:       "LessThan",
	query.LessOrEqual:    "LessThanEqual",
	query.GreaterThan:    "GreaterThan",
	query.GreaterOrEqual: "GreaterThanEqual",
}

// sortKeyExpr renders the key condition on the sort attribute, reading its
// operands from the named parameters.
func sortKeyExpr(attr string, c query.SortCondition, args []string) (string, error) {
	key := fmt.Sprintf("expression.Key(%q)", attr)
	switch c := c.(type) {
	case query.SortCompare:
		method, ok := comparatorMethods[c.Op]
		if !ok || c.Op == query.NotEqual {
			return "", fmt.Errorf("%w: %q is not a key condition operator", query.ErrMalformedCondition, c.Op)
		}
		return fmt.Sprintf("%s.%s(expression.Value(%s))", key, method, args[0]), nil
	case query.SortBetween:
		return fmt.Sprintf("%s.Between(expression.Value(%s), expression.Value(%s))", key, args[0], args[1]), nil
	case query.SortBeginsWith:
		return fmt.Sprintf("%s.BeginsWith(%s)", key, args[0]), nil
	default:
		panic(fmt.Sprintf("codegen: unhandled sort condition %T", c))
	}
}

// filterExpr renders the filters as one expression.ConditionBuilder.
// Filter operands are fixed by the access pattern and emitted as literals.
func filterExpr(filters []query.Filter) string {
	conds := make([]string, len(filters))
	for i, f := range filters {
		conds[i] = filterCond(f)
	}
	switch len(conds) {
	case 0:
		return ""
	case 1:
		return conds[0]
	default:
		return "expression.And(\n" + strings.Join(conds, ",\n") + ",\n)"
	}
}

func filterCond(f query.Filter) string {
	name := fmt.Sprintf("expression.Name(%q)", f.FilterAttribute())
	value := func(v any) string { return "expression.Value(" + goLiteral(v) + ")" }
	switch f := f.(type) {
	case query.Compare:
		return fmt.Sprintf("%s.%s(%s)", name, comparatorMethods[f.Op], value(f.Value))
	case query.Between:
		return fmt.Sprintf("%s.Between(%s, %s)", name, value(f.Lower), value(f.Upper))
	case query.In:
		values := make([]string, len(f.Values))
		for i, v := range f.Values {
			values[i] = value(v)
		}
		return fmt.Sprintf("%s.In(%s)", name, strings.Join(values, ", "))
	case query.Exists:
		return name + ".AttributeExists()"
	case query.NotExists:
		return name + ".AttributeNotExists()"
	case query.HasType:
		return fmt.Sprintf("%s.AttributeType(expression.DynamoDBAttributeType(%q))", name, string(f.Type))
	case query.BeginsWith:
		return fmt.Sprintf("%s.BeginsWith(%q)", name, f.Prefix)
	case query.Contains:
		operand, ok := f.Operand.(string)
		if !ok {
			operand = fmt.Sprint(f.Operand)
		}
		return fmt.Sprintf("%s.Contains(%q)", name, operand)
	case query.Size:
		return fmt.Sprintf("%s.Size().%s(%s)", name, comparatorMethods[f.Op], value(f.Value))
	default:
		panic(fmt.Sprintf("codegen: unhandled filter %T", f))
	}
}
