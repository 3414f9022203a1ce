package live

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/acksell/dynaspec/query"
	"github.com/acksell/dynaspec/spec"
	"github.com/acksell/dynaspec/table"
)

// BuildQueryInput translates a query access pattern into a Query request.
// A get on a secondary index is sent as a Query limited to one item, since
// GetItem only addresses the table's primary key.
func BuildQueryInput(s *spec.Spec, p spec.AccessPattern) (*dynamodb.QueryInput, error) {
	idx, err := s.Index(p.Index)
	if err != nil {
		return nil, err
	}
	cond, err := query.Compile(p.Condition)
	if err != nil {
		return nil, err
	}

	key := expression.Key(idx.PartitionAttribute).Equal(expression.Value(cond.Partition))
	if cond.Sort != nil {
		if !idx.HasSort() {
			return nil, fmt.Errorf("%w: index %s has no sort attribute", query.ErrMalformedCondition, p.Index)
		}
		sk, err := sortKeyCondition(idx.SortAttribute, cond.Sort)
		if err != nil {
			return nil, err
		}
		key = key.And(sk)
	}
	b := expression.NewBuilder().WithKeyCondition(key)

	filters := cond.Filters
	if p.Type == spec.PatternGet {
		filters = nil
	}
	if f, ok := filterCondition(filters); ok {
		b = b.WithFilter(f)
	}

	expr, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(s.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!p.Descending()),
	}
	if p.Index != spec.MainIndex {
		in.IndexName = aws.String(p.Index)
	}
	switch {
	case p.Type == spec.PatternGet:
		in.Limit = aws.Int32(1)
	case p.Limit > 0:
		in.Limit = aws.Int32(int32(p.Limit))
	}
	return in, nil
}

// BuildGetItemInput translates a get access pattern on the main index into
// a GetItem request. Key values are checked against the declared attribute
// types.
func BuildGetItemInput(s *spec.Spec, p spec.AccessPattern) (*dynamodb.GetItemInput, error) {
	if p.Index != spec.MainIndex {
		return nil, fmt.Errorf("%w: GetItem only reads the %s index, got %s", query.ErrMalformedCondition, spec.MainIndex, p.Index)
	}
	def, err := table.FromSpec(s)
	if err != nil {
		return nil, err
	}
	keys := def.KeyDefinitions
	if p.Condition.Partition.Value == nil {
		return nil, fmt.Errorf("%w: partition value is required", query.ErrMalformedCondition)
	}
	r := spec.Record{keys.PartitionKey.Name: p.Condition.Partition.Value}
	if keys.HasSortKey() {
		sc := p.Condition.Sort
		if sc == nil || sc.Value == nil || (sc.Operator != "" && sc.Operator != string(query.Equal)) {
			return nil, fmt.Errorf("%w: get needs an equality on %s", query.ErrMalformedCondition, keys.SortKey.Name)
		}
		r[keys.SortKey.Name] = sc.Value
	}
	key, err := keys.KeyFromRecord(r)
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemInput{
		TableName:      aws.String(s.TableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	}, nil
}

func sortKeyCondition(attr string, c query.SortCondition) (expression.KeyConditionBuilder, error) {
	key := expression.Key(attr)
	switch c := c.(type) {
	case query.SortCompare:
		v := expression.Value(c.Value)
		switch c.Op {
		case query.Equal:
			return key.Equal(v), nil
		case query.LessThan:
			return key.LessThan(v), nil
		case query.LessOrEqual:
			return key.LessThanEqual(v), nil
		case query.GreaterThan:
			return key.GreaterThan(v), nil
		case query.GreaterOrEqual:
			return key.GreaterThanEqual(v), nil
		default:
			return expression.KeyConditionBuilder{}, fmt.Errorf("%w: %q is not a key condition operator", query.ErrMalformedCondition, c.Op)
		}
	case query.SortBetween:
		return key.Between(expression.Value(c.Lower), expression.Value(c.Upper)), nil
	case query.SortBeginsWith:
		return key.BeginsWith(c.Prefix), nil
	default:
		panic(fmt.Sprintf("live: unhandled sort condition %T", c))
	}
}

// filterCondition joins the filters with AND. ok is false when there are
// none.
func filterCondition(filters []query.Filter) (cond expression.ConditionBuilder, ok bool) {
	conds := make([]expression.ConditionBuilder, len(filters))
	for i, f := range filters {
		conds[i] = filterBuilder(f)
	}
	switch len(conds) {
	case 0:
		return expression.ConditionBuilder{}, false
	case 1:
		return conds[0], true
	default:
		return expression.And(conds[0], conds[1], conds[2:]...), true
	}
}

func filterBuilder(f query.Filter) expression.ConditionBuilder {
	name := expression.Name(f.FilterAttribute())
	switch f := f.(type) {
	case query.Compare:
		return compareBuilder(name, f.Op, expression.Value(f.Value))
	case query.Between:
		return name.Between(expression.Value(f.Lower), expression.Value(f.Upper))
	case query.In:
		values := make([]expression.OperandBuilder, len(f.Values))
		for i, v := range f.Values {
			values[i] = expression.Value(v)
		}
		return name.In(values[0], values[1:]...)
	case query.Exists:
		return name.AttributeExists()
	case query.NotExists:
		return name.AttributeNotExists()
	case query.HasType:
		return name.AttributeType(expression.DynamoDBAttributeType(f.Type))
	case query.BeginsWith:
		return name.BeginsWith(f.Prefix)
	case query.Contains:
		operand, ok := f.Operand.(string)
		if !ok {
			operand = fmt.Sprint(f.Operand)
		}
		return name.Contains(operand)
	case query.Size:
		return compareBuilder(name.Size(), f.Op, expression.Value(f.Value))
	default:
		panic(fmt.Sprintf("live: unhandled filter %T", f))
	}
}

// comparer is implemented by expression.NameBuilder and
// expression.SizeBuilder.
type comparer interface {
	Equal(expression.OperandBuilder) expression.ConditionBuilder
	NotEqual(expression.OperandBuilder) expression.ConditionBuilder
	LessThan(expression.OperandBuilder) expression.ConditionBuilder
	LessThanEqual(expression.OperandBuilder) expression.ConditionBuilder
	GreaterThan(expression.OperandBuilder) expression.ConditionBuilder
	GreaterThanEqual(expression.OperandBuilder) expression.ConditionBuilder
}

func compareBuilder(left comparer, op query.Comparator, right expression.OperandBuilder) expression.ConditionBuilder {
	switch op {
	case query.Equal:
		return left.Equal(right)
	case query.NotEqual:
		return left.NotEqual(right)
	case query.LessThan:
		return left.LessThan(right)
	case query.LessOrEqual:
		return left.LessThanEqual(right)
	case query.GreaterThan:
		return left.GreaterThan(right)
	case query.GreaterOrEqual:
		return left.GreaterThanEqual(right)
	default:
		panic(fmt.Sprintf("live: unhandled comparator %q", op))
	}
}
