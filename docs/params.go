package docs

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/acksell/dynaspec/query"
	"github.com/acksell/dynaspec/spec"
)

// QueryParams is the DocumentClient style Query request shown in the docs.
type QueryParams struct {
	TableName                 string            `json:"TableName"`
	IndexName                 string            `json:"IndexName,omitempty"`
	KeyConditionExpression    string            `json:"KeyConditionExpression"`
	FilterExpression          string            `json:"FilterExpression,omitempty"`
	ExpressionAttributeNames  map[string]string `json:"ExpressionAttributeNames"`
	ExpressionAttributeValues map[string]any    `json:"ExpressionAttributeValues"`
	ScanIndexForward          *bool             `json:"ScanIndexForward,omitempty"`
	Limit                     int               `json:"Limit,omitempty"`
}

// GetParams is the GetItem request shown in the docs. A get against a
// secondary index is documented as an equality Query on that index.
type GetParams struct {
	TableName string         `json:"TableName"`
	Key       map[string]any `json:"Key"`
}

// placeholders allocates expression attribute names and values. Names are
// reused per attribute and suffixed when two attributes sanitize to the
// same token; values are unique per use.
type placeholders struct {
	names  map[string]string
	values map[string]any
}

func newPlaceholders() *placeholders {
	return &placeholders{names: map[string]string{}, values: map[string]any{}}
}

func (p *placeholders) name(attr string) string {
	token := placeholderToken(attr)
	ph := "#" + token
	for i := 1; ; i++ {
		taken, ok := p.names[ph]
		if !ok || taken == attr {
			break
		}
		ph = fmt.Sprintf("#%s%d", token, i)
	}
	p.names[ph] = attr
	return ph
}

func (p *placeholders) value(base string, v any) string {
	ph := ":" + placeholderToken(base)
	for i := 1; ; i++ {
		if _, taken := p.values[ph]; !taken {
			break
		}
		ph = fmt.Sprintf(":%s%d", placeholderToken(base), i)
	}
	p.values[ph] = v
	return ph
}

// placeholderToken keeps letters, digits and underscores, which is all an
// expression placeholder may contain.
func placeholderToken(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// BuildQueryParams renders the Query request for a query access pattern.
func BuildQueryParams(s *spec.Spec, p spec.AccessPattern) (QueryParams, error) {
	idx, err := s.Index(p.Index)
	if err != nil {
		return QueryParams{}, err
	}
	cond, err := query.Compile(p.Condition)
	if err != nil {
		return QueryParams{}, err
	}
	ph := newPlaceholders()
	params := QueryParams{TableName: s.TableName, Limit: p.Limit}
	if p.Index != spec.MainIndex {
		params.IndexName = p.Index
	}
	if p.Descending() {
		params.ScanIndexForward = new(bool)
	}

	key := fmt.Sprintf("%s = %s", ph.name(idx.PartitionAttribute), ph.value(idx.PartitionAttribute, cond.Partition))
	if cond.Sort != nil {
		if !idx.HasSort() {
			return QueryParams{}, fmt.Errorf("%w: index %s has no sort attribute", query.ErrMalformedCondition, p.Index)
		}
		key += " AND " + sortExpression(ph, idx.SortAttribute, cond.Sort)
	}
	params.KeyConditionExpression = key

	var filters []string
	for _, f := range cond.Filters {
		filters = append(filters, filterExpression(ph, f))
	}
	params.FilterExpression = strings.Join(filters, " AND ")
	params.ExpressionAttributeNames = ph.names
	params.ExpressionAttributeValues = ph.values
	return params, nil
}

// BuildGetParams renders the GetItem request for a get access pattern on
// the main index.
func BuildGetParams(s *spec.Spec, p spec.AccessPattern) (GetParams, error) {
	idx, err := s.Index(p.Index)
	if err != nil {
		return GetParams{}, err
	}
	if p.Condition.Partition.Value == nil {
		return GetParams{}, fmt.Errorf("%w: partition value is required", query.ErrMalformedCondition)
	}
	key := map[string]any{idx.PartitionAttribute: p.Condition.Partition.Value}
	if idx.HasSort() {
		if p.Condition.Sort == nil || p.Condition.Sort.Value == nil {
			return GetParams{}, fmt.Errorf("%w: get needs a value for %s", query.ErrMalformedCondition, idx.SortAttribute)
		}
		key[idx.SortAttribute] = p.Condition.Sort.Value
	}
	return GetParams{TableName: s.TableName, Key: key}, nil
}

func sortExpression(ph *placeholders, attr string, c query.SortCondition) string {
	name := ph.name(attr)
	switch c := c.(type) {
	case query.SortCompare:
		return fmt.Sprintf("%s %s %s", name, c.Op, ph.value(attr, c.Value))
	case query.SortBetween:
		return fmt.Sprintf("%s BETWEEN %s AND %s", name, ph.value(attr+"Min", c.Lower), ph.value(attr+"Max", c.Upper))
	case query.SortBeginsWith:
		return fmt.Sprintf("begins_with(%s, %s)", name, ph.value(attr, c.Prefix))
	default:
		panic(fmt.Sprintf("docs: unhandled sort condition %T", c))
	}
}

func filterExpression(ph *placeholders, f query.Filter) string {
	attr := f.FilterAttribute()
	name := ph.name(attr)
	switch f := f.(type) {
	case query.Compare:
		return fmt.Sprintf("%s %s %s", name, f.Op, ph.value(attr, f.Value))
	case query.Between:
		return fmt.Sprintf("%s BETWEEN %s AND %s", name, ph.value(attr+"Min", f.Lower), ph.value(attr+"Max", f.Upper))
	case query.In:
		values := make([]string, len(f.Values))
		for i, v := range f.Values {
			values[i] = ph.value(fmt.Sprintf("%s%d", attr, i), v)
		}
		return fmt.Sprintf("%s IN (%s)", name, strings.Join(values, ", "))
	case query.Exists:
		return fmt.Sprintf("attribute_exists(%s)", name)
	case query.NotExists:
		return fmt.Sprintf("attribute_not_exists(%s)", name)
	case query.HasType:
		return fmt.Sprintf("attribute_type(%s, %s)", name, ph.value(attr+"_type", string(f.Type)))
	case query.BeginsWith:
		return fmt.Sprintf("begins_with(%s, %s)", name, ph.value(attr, f.Prefix))
	case query.Contains:
		return fmt.Sprintf("contains(%s, %s)", name, ph.value(attr, f.Operand))
	case query.Size:
		return fmt.Sprintf("size(%s) %s %s", name, f.Op, ph.value(attr+"_size", f.Value))
	default:
		panic(fmt.Sprintf("docs: unhandled filter %T", f))
	}
}
