// Package query evaluates access patterns against the sample records of a
// spec, emulating DynamoDB Query and GetItem semantics in memory.
package query

import (
	"fmt"
	"slices"
	"sort"

	"github.com/acksell/dynaspec/spec"
)

type Options struct {
	// InclusiveBetween makes between include its bounds, as DynamoDB does.
	// By default both bounds are excluded.
	InclusiveBetween bool
}

// Engine is stateless apart from its options and safe for concurrent use.
type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

func (e *Engine) Options() Options {
	return e.opts
}

// Query returns the records matching a query access pattern. Records
// missing any key attribute of the index are never candidates. When the
// index has a sort attribute, matches are stably ordered by it and reversed
// for DESC. They are then truncated to the limit and finally projected.
func (e *Engine) Query(s *spec.Spec, p spec.AccessPattern) ([]spec.Record, error) {
	keys, err := resolveKeys(s, p.Index)
	if err != nil {
		return nil, err
	}
	cond, err := compileFor(keys, p.Condition)
	if err != nil {
		return nil, err
	}
	if p.Limit < 0 {
		return nil, malformed("limit must not be negative, got %d", p.Limit)
	}

	out := make([]spec.Record, 0)
	for _, r := range sparse(s.Records, keys) {
		if e.matches(r, keys, cond) {
			out = append(out, r)
		}
	}
	if keys.hasSort() {
		sort.SliceStable(out, func(i, j int) bool {
			return compareSortValues(out[i][keys.sort], out[j][keys.sort]) < 0
		})
		if p.Descending() {
			slices.Reverse(out)
		}
	}
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return project(s, keys, out), nil
}

// Get returns the first record whose key attributes equal the pattern's
// partition and sort values. The sort value is required when the index has
// a sort attribute.
func (e *Engine) Get(s *spec.Spec, p spec.AccessPattern) (spec.Record, bool, error) {
	keys, err := resolveKeys(s, p.Index)
	if err != nil {
		return nil, false, err
	}
	pv := p.Condition.Partition.Value
	if pv == nil {
		return nil, false, malformed("partition value is required")
	}
	var sv any
	if keys.hasSort() {
		sc := p.Condition.Sort
		if sc == nil || sc.Value == nil || (sc.Operator != "" && sc.Operator != string(Equal)) {
			return nil, false, malformed("get on index %s needs an equality on %s", keys.name, keys.sort)
		}
		sv = sc.Value
	}
	for _, r := range s.Records {
		actual, ok := r[keys.partition]
		if !ok || !equalValues(actual, pv) {
			continue
		}
		if keys.hasSort() {
			actual, ok := r[keys.sort]
			if !ok || !equalValues(actual, sv) {
				continue
			}
		}
		return project(s, keys, []spec.Record{r})[0], true, nil
	}
	return nil, false, nil
}

// FindMatchingRecords dispatches on the pattern type. A get yields zero or
// one records.
func (e *Engine) FindMatchingRecords(s *spec.Spec, p spec.AccessPattern) ([]spec.Record, error) {
	switch p.Type {
	case spec.PatternQuery:
		return e.Query(s, p)
	case spec.PatternGet:
		r, ok, err := e.Get(s, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []spec.Record{}, nil
		}
		return []spec.Record{r}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownPatternType, p.Type)
	}
}

// RecordsInIndex returns the records that appear in the named index, in
// record order, projected as the index stores them.
func (e *Engine) RecordsInIndex(s *spec.Spec, index string) ([]spec.Record, error) {
	keys, err := resolveKeys(s, index)
	if err != nil {
		return nil, err
	}
	return project(s, keys, sparse(s.Records, keys)), nil
}

// sparse keeps the records carrying every key attribute of the index.
func sparse(records []spec.Record, keys indexKeys) []spec.Record {
	out := make([]spec.Record, 0, len(records))
	for _, r := range records {
		if _, ok := r[keys.partition]; !ok {
			continue
		}
		if keys.hasSort() {
			if _, ok := r[keys.sort]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
