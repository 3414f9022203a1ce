package query

import (
	"fmt"
	"strings"

	"github.com/acksell/dynaspec/spec"
)

// indexKeys are the key attributes of the index a condition runs against.
type indexKeys struct {
	name      string
	index     spec.Index
	partition string
	sort      string
}

func (k indexKeys) hasSort() bool {
	return k.sort != ""
}

func resolveKeys(s *spec.Spec, index string) (indexKeys, error) {
	idx, err := s.Index(index)
	if err != nil {
		return indexKeys{}, err
	}
	return indexKeys{
		name:      index,
		index:     idx,
		partition: idx.PartitionAttribute,
		sort:      idx.SortAttribute,
	}, nil
}

// compileFor compiles a condition and checks it fits the index.
func compileFor(keys indexKeys, c spec.Condition) (Condition, error) {
	cond, err := Compile(c)
	if err != nil {
		return Condition{}, err
	}
	if cond.Sort != nil && !keys.hasSort() {
		return Condition{}, malformed("index %s has no sort attribute", keys.name)
	}
	return cond, nil
}

// Matches reports whether a single record satisfies the condition on the
// named index.
func (e *Engine) Matches(s *spec.Spec, r spec.Record, index string, c spec.Condition) (bool, error) {
	keys, err := resolveKeys(s, index)
	if err != nil {
		return false, err
	}
	cond, err := compileFor(keys, c)
	if err != nil {
		return false, err
	}
	return e.matches(r, keys, cond), nil
}

func (e *Engine) matches(r spec.Record, keys indexKeys, c Condition) bool {
	pv, ok := r[keys.partition]
	if !ok || !equalValues(pv, c.Partition) {
		return false
	}
	if c.Sort != nil {
		sv, ok := r[keys.sort]
		if !ok || !e.sortMatches(sv, c.Sort) {
			return false
		}
	}
	for _, f := range c.Filters {
		if !e.filterMatches(r, f) {
			return false
		}
	}
	return true
}

func (e *Engine) sortMatches(v any, c SortCondition) bool {
	switch c := c.(type) {
	case SortCompare:
		return compareWith(c.Op, v, c.Value)
	case SortBetween:
		return e.between(v, c.Lower, c.Upper)
	case SortBeginsWith:
		s, ok := asString(v)
		return ok && strings.HasPrefix(s, c.Prefix)
	default:
		panic(fmt.Sprintf("query: unhandled sort condition %T", c))
	}
}

func (e *Engine) filterMatches(r spec.Record, f Filter) bool {
	v, present := r[f.FilterAttribute()]
	if _, ok := f.(NotExists); ok {
		return !present
	}
	if !present {
		return false
	}
	switch f := f.(type) {
	case Compare:
		return compareWith(f.Op, v, f.Value)
	case Between:
		return e.between(v, f.Lower, f.Upper)
	case In:
		for _, candidate := range f.Values {
			if equalValues(v, candidate) {
				return true
			}
		}
		return false
	case Exists:
		return true
	case NotExists:
		return false
	case HasType:
		return hasAttributeType(v, f.Type)
	case BeginsWith:
		s, ok := asString(v)
		return ok && strings.HasPrefix(s, f.Prefix)
	case Contains:
		return containsOperand(v, f.Operand)
	case Size:
		n, ok := sizeOf(v)
		return ok && compareWith(f.Op, n, f.Value)
	default:
		panic(fmt.Sprintf("query: unhandled filter %T", f))
	}
}

// between is exclusive of both bounds unless the engine was built with
// InclusiveBetween.
func (e *Engine) between(v, lower, upper any) bool {
	lo, okLo := compareValues(lower, v)
	hi, okHi := compareValues(v, upper)
	if !okLo || !okHi {
		return false
	}
	if e.opts.InclusiveBetween {
		return lo <= 0 && hi <= 0
	}
	return lo < 0 && hi < 0
}
