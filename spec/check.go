package spec

import (
	"errors"
	"fmt"
	"sort"
)

// Check verifies cross references the schema cannot express: index
// attributes must be declared and access patterns must name known indexes.
// All problems are reported together.
func (s *Spec) Check() error {
	var errs []error
	if s.TableName == "" {
		errs = append(errs, errors.New("tableName is required"))
	}
	if _, ok := s.Indexes[MainIndex]; !ok {
		errs = append(errs, fmt.Errorf("index %q is required", MainIndex))
	}
	for _, name := range s.IndexNames() {
		idx := s.Indexes[name]
		if idx.PartitionAttribute == "" {
			errs = append(errs, fmt.Errorf("index %s: partitionAttribute is required", name))
		} else if _, ok := s.Attributes[idx.PartitionAttribute]; !ok {
			errs = append(errs, fmt.Errorf("index %s: partition attribute %q is not declared", name, idx.PartitionAttribute))
		}
		if idx.HasSort() {
			if _, ok := s.Attributes[idx.SortAttribute]; !ok {
				errs = append(errs, fmt.Errorf("index %s: sort attribute %q is not declared", name, idx.SortAttribute))
			}
		}
		if name == MainIndex && idx.Kind != IndexKindPrimary {
			errs = append(errs, fmt.Errorf("index %s: kind must be %q", name, IndexKindPrimary))
		}
		if idx.Projection == ProjectionInclude && len(idx.NonKeyAttributes) == 0 {
			errs = append(errs, fmt.Errorf("index %s: include projection needs nonKeyAttributes", name))
		}
	}
	for _, name := range sortedKeys(s.Attributes) {
		switch t := s.Attributes[name]; t {
		case AttributeTypeS, AttributeTypeN, AttributeTypeB:
		default:
			errs = append(errs, fmt.Errorf("attribute %s: unknown type %q", name, t))
		}
	}
	names := map[string]int{}
	for i, p := range s.AccessPatterns {
		label := fmt.Sprintf("access pattern %d (%s)", i, p.Title)
		if _, err := s.Index(p.Index); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
		switch p.Type {
		case PatternGet, PatternQuery:
		default:
			errs = append(errs, fmt.Errorf("%s: unknown type %q", label, p.Type))
		}
		switch p.Order {
		case "", OrderAsc, OrderDesc:
		default:
			errs = append(errs, fmt.Errorf("%s: unknown order %q", label, p.Order))
		}
		if p.Limit < 0 {
			errs = append(errs, fmt.Errorf("%s: limit must not be negative", label))
		}
		if p.Name != "" {
			if prev, dup := names[p.Name]; dup {
				errs = append(errs, fmt.Errorf("%s: name %q already used by access pattern %d", label, p.Name, prev))
			}
			names[p.Name] = i
		}
	}
	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
