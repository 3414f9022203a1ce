package spec

import (
	"errors"
	"fmt"
)

// ErrUnknownIndex is returned when a name does not refer to a declared index.
var ErrUnknownIndex = errors.New("unknown index")

// Index looks up an index by name.
func (s *Spec) Index(name string) (Index, error) {
	idx, ok := s.Indexes[name]
	if !ok {
		return Index{}, fmt.Errorf("%w %q", ErrUnknownIndex, name)
	}
	return idx, nil
}

// PartitionAttribute returns the partition attribute of the named index.
func (s *Spec) PartitionAttribute(index string) (string, error) {
	idx, err := s.Index(index)
	if err != nil {
		return "", err
	}
	return idx.PartitionAttribute, nil
}

// SortAttribute returns the sort attribute of the named index. ok is false
// when the index is partition-only.
func (s *Spec) SortAttribute(index string) (attr string, ok bool, err error) {
	idx, err := s.Index(index)
	if err != nil {
		return "", false, err
	}
	return idx.SortAttribute, idx.HasSort(), nil
}

// TableKeyAttributes returns the key attributes of the main index.
func (s *Spec) TableKeyAttributes() []string {
	idx, ok := s.Indexes[MainIndex]
	if !ok {
		return nil
	}
	return idx.KeyAttributes()
}
