package docs

import (
	"fmt"
	"strings"

	"github.com/acksell/dynaspec/docs/md"
	"github.com/acksell/dynaspec/query"
	"github.com/acksell/dynaspec/spec"
)

var comparatorWords = map[query.Comparator]string{
	query.Equal:          "is",
	query.NotEqual:       "is not",
	query.LessThan:       "is less than",
	query.LessOrEqual:    "is at most",
	query.GreaterThan:    "is greater than",
	query.GreaterOrEqual: "is at least",
}

func literal(v any) string {
	if _, composite := v.([]any); composite {
		return cellValue(v)
	}
	if _, composite := v.(map[string]any); composite {
		return cellValue(v)
	}
	return md.Code(formatScalar(v))
}

// describe explains an access pattern in a sentence or three.
func describe(p spec.AccessPattern, idx spec.Index, cond query.Condition, inclusive bool) string {
	var sb strings.Builder
	switch p.Type {
	case spec.PatternGet:
		fmt.Fprintf(&sb, "Get a single item from the %s index where %s is %s",
			md.Bold(p.Index), md.Code(idx.PartitionAttribute), literal(cond.Partition))
	default:
		fmt.Fprintf(&sb, "Query the %s index for items where %s is %s",
			md.Bold(p.Index), md.Code(idx.PartitionAttribute), literal(cond.Partition))
	}
	if cond.Sort != nil {
		sb.WriteString(" and " + md.Code(idx.SortAttribute) + " " + describeSort(cond.Sort, inclusive))
	}
	sb.WriteString(".")

	if len(cond.Filters) > 0 && p.Type == spec.PatternQuery {
		parts := make([]string, len(cond.Filters))
		for i, f := range cond.Filters {
			parts[i] = describeFilter(f, inclusive)
		}
		sb.WriteString(" Results are filtered to items where " + strings.Join(parts, " and ") + ".")
	}
	if p.Type == spec.PatternQuery {
		if p.Descending() && idx.HasSort() {
			sb.WriteString(" Items are returned in descending order of " + md.Code(idx.SortAttribute) + ".")
		}
		if p.Limit > 0 {
			fmt.Fprintf(&sb, " At most %d items are returned.", p.Limit)
		}
	}
	return sb.String()
}

func betweenWords(lower, upper any, inclusive bool) string {
	bounds := "exclusive"
	if inclusive {
		bounds = "inclusive"
	}
	return fmt.Sprintf("is between %s and %s (%s)", literal(lower), literal(upper), bounds)
}

func describeSort(c query.SortCondition, inclusive bool) string {
	switch c := c.(type) {
	case query.SortCompare:
		return comparatorWords[c.Op] + " " + literal(c.Value)
	case query.SortBetween:
		return betweenWords(c.Lower, c.Upper, inclusive)
	case query.SortBeginsWith:
		return "begins with " + literal(c.Prefix)
	default:
		panic(fmt.Sprintf("docs: unhandled sort condition %T", c))
	}
}

func describeFilter(f query.Filter, inclusive bool) string {
	name := md.Code(f.FilterAttribute())
	switch f := f.(type) {
	case query.Compare:
		return name + " " + comparatorWords[f.Op] + " " + literal(f.Value)
	case query.Between:
		return name + " " + betweenWords(f.Lower, f.Upper, inclusive)
	case query.In:
		values := make([]string, len(f.Values))
		for i, v := range f.Values {
			values[i] = literal(v)
		}
		return name + " is one of " + strings.Join(values, ", ")
	case query.Exists:
		return name + " exists"
	case query.NotExists:
		return name + " does not exist"
	case query.HasType:
		return name + " has type " + md.Code(string(f.Type))
	case query.BeginsWith:
		return name + " begins with " + literal(f.Prefix)
	case query.Contains:
		return name + " contains " + literal(f.Operand)
	case query.Size:
		return "the size of " + name + " " + comparatorWords[f.Op] + " " + literal(f.Value)
	default:
		panic(fmt.Sprintf("docs: unhandled filter %T", f))
	}
}
