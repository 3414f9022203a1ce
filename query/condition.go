package query

import (
	"fmt"
	"strings"

	"github.com/acksell/dynaspec/spec"
)

type Comparator string

const (
	Equal          Comparator = "="
	NotEqual       Comparator = "<>"
	LessThan       Comparator = "<"
	LessOrEqual    Comparator = "<="
	GreaterThan    Comparator = ">"
	GreaterOrEqual Comparator = ">="
)

// AttributeTypeName is a DynamoDB attribute type descriptor as used by the
// attribute_type function.
type AttributeTypeName string

const (
	TypeString    AttributeTypeName = "S"
	TypeStringSet AttributeTypeName = "SS"
	TypeNumber    AttributeTypeName = "N"
	TypeNumberSet AttributeTypeName = "NS"
	TypeBinary    AttributeTypeName = "B"
	TypeBinarySet AttributeTypeName = "BS"
	TypeBool      AttributeTypeName = "BOOL"
	TypeNull      AttributeTypeName = "NULL"
	TypeList      AttributeTypeName = "L"
	TypeMap       AttributeTypeName = "M"
)

var attributeTypeNames = map[AttributeTypeName]bool{
	TypeString: true, TypeStringSet: true, TypeNumber: true, TypeNumberSet: true,
	TypeBinary: true, TypeBinarySet: true, TypeBool: true, TypeNull: true,
	TypeList: true, TypeMap: true,
}

// SortCondition is the sort key part of a key condition. The set of
// implementations is closed: SortCompare, SortBetween and SortBeginsWith.
type SortCondition interface {
	isSortCondition()
}

type SortCompare struct {
	Op    Comparator
	Value any
}

type SortBetween struct {
	Lower, Upper any
}

type SortBeginsWith struct {
	Prefix string
}

func (SortCompare) isSortCondition()    {}
func (SortBetween) isSortCondition()    {}
func (SortBeginsWith) isSortCondition() {}

// Filter is a predicate on one attribute. The set of implementations is
// closed and matched exhaustively by the evaluator.
type Filter interface {
	FilterAttribute() string
	isFilter()
}

type Compare struct {
	Attribute string
	Op        Comparator
	Value     any
}

type Between struct {
	Attribute    string
	Lower, Upper any
}

type In struct {
	Attribute string
	Values    []any
}

type Exists struct {
	Attribute string
}

type NotExists struct {
	Attribute string
}

type HasType struct {
	Attribute string
	Type      AttributeTypeName
}

type BeginsWith struct {
	Attribute string
	Prefix    string
}

type Contains struct {
	Attribute string
	Operand   any
}

type Size struct {
	Attribute string
	Op        Comparator
	Value     float64
}

func (f Compare) FilterAttribute() string    { return f.Attribute }
func (f Between) FilterAttribute() string    { return f.Attribute }
func (f In) FilterAttribute() string         { return f.Attribute }
func (f Exists) FilterAttribute() string     { return f.Attribute }
func (f NotExists) FilterAttribute() string  { return f.Attribute }
func (f HasType) FilterAttribute() string    { return f.Attribute }
func (f BeginsWith) FilterAttribute() string { return f.Attribute }
func (f Contains) FilterAttribute() string   { return f.Attribute }
func (f Size) FilterAttribute() string       { return f.Attribute }

func (Compare) isFilter()    {}
func (Between) isFilter()    {}
func (In) isFilter()         {}
func (Exists) isFilter()     {}
func (NotExists) isFilter()  {}
func (HasType) isFilter()    {}
func (BeginsWith) isFilter() {}
func (Contains) isFilter()   {}
func (Size) isFilter()       {}

// Condition is a compiled key condition plus filters.
type Condition struct {
	Partition any
	Sort      SortCondition
	Filters   []Filter
}

// Compile turns a document condition into typed conditions. Unknown
// operators and missing operands yield ErrMalformedCondition.
func Compile(c spec.Condition) (Condition, error) {
	if c.Partition.Value == nil {
		return Condition{}, malformed("partition value is required")
	}
	out := Condition{Partition: c.Partition.Value}
	if c.Sort != nil {
		sc, err := CompileSort(*c.Sort)
		if err != nil {
			return Condition{}, err
		}
		out.Sort = sc
	}
	for i, f := range c.Filters {
		cf, err := CompileFilter(f)
		if err != nil {
			return Condition{}, fmt.Errorf("filter %d: %w", i, err)
		}
		out.Filters = append(out.Filters, cf)
	}
	return out, nil
}

func CompileSort(c spec.SortCondition) (SortCondition, error) {
	op := strings.ToLower(c.Operator)
	switch op {
	case "", "=", "<", "<=", ">", ">=":
		if c.Value == nil {
			return nil, malformed("sort operator %q needs a value", c.Operator)
		}
		if op == "" {
			op = "="
		}
		return SortCompare{Op: Comparator(op), Value: c.Value}, nil
	case "between":
		if c.LowerValue == nil || c.UpperValue == nil {
			return nil, malformed("sort between needs lowerValue and upperValue")
		}
		return SortBetween{Lower: c.LowerValue, Upper: c.UpperValue}, nil
	case "begins_with":
		prefix, ok := c.Value.(string)
		if !ok {
			return nil, malformed("sort begins_with needs a string value, got %T", c.Value)
		}
		return SortBeginsWith{Prefix: prefix}, nil
	default:
		return nil, malformed("unknown sort operator %q", c.Operator)
	}
}

func CompileFilter(f spec.Filter) (Filter, error) {
	if f.Attribute == "" {
		return nil, malformed("filter attribute is required")
	}
	op := strings.ToLower(f.Operator)
	switch op {
	case "=", "<>", "<", "<=", ">", ">=":
		if f.Value == nil {
			return nil, malformed("filter %q on %s needs a value", f.Operator, f.Attribute)
		}
		return Compare{Attribute: f.Attribute, Op: Comparator(op), Value: f.Value}, nil
	case "between":
		if f.LowerValue == nil || f.UpperValue == nil {
			return nil, malformed("between on %s needs lowerValue and upperValue", f.Attribute)
		}
		return Between{Attribute: f.Attribute, Lower: f.LowerValue, Upper: f.UpperValue}, nil
	case "in":
		values, ok := f.Value.([]any)
		if !ok || len(values) == 0 {
			return nil, malformed("in on %s needs a non-empty list value", f.Attribute)
		}
		return In{Attribute: f.Attribute, Values: values}, nil
	case "attribute_exists":
		return Exists{Attribute: f.Attribute}, nil
	case "attribute_not_exists":
		return NotExists{Attribute: f.Attribute}, nil
	case "attribute_type":
		name, _ := f.Value.(string)
		t := AttributeTypeName(strings.ToUpper(name))
		if !attributeTypeNames[t] {
			return nil, malformed("attribute_type on %s: unknown type %v", f.Attribute, f.Value)
		}
		return HasType{Attribute: f.Attribute, Type: t}, nil
	case "begins_with":
		prefix, ok := f.Value.(string)
		if !ok {
			return nil, malformed("begins_with on %s needs a string value, got %T", f.Attribute, f.Value)
		}
		return BeginsWith{Attribute: f.Attribute, Prefix: prefix}, nil
	case "contains":
		if f.Value == nil {
			return nil, malformed("contains on %s needs a value", f.Attribute)
		}
		return Contains{Attribute: f.Attribute, Operand: f.Value}, nil
	case "size":
		sizeOp := Comparator(f.SizeOperator)
		switch sizeOp {
		case Equal, LessThan, LessOrEqual, GreaterThan, GreaterOrEqual:
		default:
			return nil, malformed("size on %s: unknown sizeOperator %q", f.Attribute, f.SizeOperator)
		}
		n, ok := asNumber(f.Value)
		if !ok {
			return nil, malformed("size on %s needs a numeric value, got %T", f.Attribute, f.Value)
		}
		return Size{Attribute: f.Attribute, Op: sizeOp, Value: n}, nil
	default:
		return nil, malformed("unknown filter operator %q", f.Operator)
	}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedCondition}, args...)...)
}
