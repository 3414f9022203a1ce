// Package table maps a spec onto DynamoDB table definitions: the
// CreateTable request for the SDK and for the AWS CLI, and key extraction
// from sample records.
package table

import (
	"fmt"
	"sort"

	"github.com/acksell/dynaspec/spec"
)

type TableDefinition struct {
	Name           string
	KeyDefinitions PrimaryKeyDefinition
	GSIs           []IndexDefinition
	LSIs           []IndexDefinition
}

// IndexDefinition is a global or local secondary index.
type IndexDefinition struct {
	Name             string
	KeyDefinitions   PrimaryKeyDefinition
	Projection       spec.ProjectionType
	NonKeyAttributes []string
}

// FromSpec builds the table definition. Index order is lexical so the
// generated requests are stable.
func FromSpec(s *spec.Spec) (TableDefinition, error) {
	main, err := s.Index(spec.MainIndex)
	if err != nil {
		return TableDefinition{}, err
	}
	keys, err := keyDefinitions(s, main)
	if err != nil {
		return TableDefinition{}, fmt.Errorf("index %s: %w", spec.MainIndex, err)
	}
	def := TableDefinition{Name: s.TableName, KeyDefinitions: keys}

	names := make([]string, 0, len(s.Indexes))
	for name := range s.Indexes {
		if name != spec.MainIndex {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		idx := s.Indexes[name]
		keys, err := keyDefinitions(s, idx)
		if err != nil {
			return TableDefinition{}, fmt.Errorf("index %s: %w", name, err)
		}
		id := IndexDefinition{
			Name:             name,
			KeyDefinitions:   keys,
			Projection:       idx.Projection,
			NonKeyAttributes: idx.NonKeyAttributes,
		}
		switch idx.Kind {
		case spec.IndexKindLocal:
			if idx.PartitionAttribute != main.PartitionAttribute {
				return TableDefinition{}, fmt.Errorf("local index %s must share the table partition attribute %q", name, main.PartitionAttribute)
			}
			def.LSIs = append(def.LSIs, id)
		default:
			def.GSIs = append(def.GSIs, id)
		}
	}
	return def, nil
}

func keyDefinitions(s *spec.Spec, idx spec.Index) (PrimaryKeyDefinition, error) {
	pk, err := keyDef(s, idx.PartitionAttribute)
	if err != nil {
		return PrimaryKeyDefinition{}, err
	}
	keys := PrimaryKeyDefinition{PartitionKey: pk}
	if idx.HasSort() {
		sk, err := keyDef(s, idx.SortAttribute)
		if err != nil {
			return PrimaryKeyDefinition{}, err
		}
		keys.SortKey = sk
	}
	return keys, nil
}

func keyDef(s *spec.Spec, attr string) (KeyDef, error) {
	t, ok := s.Attributes[attr]
	if !ok {
		return KeyDef{}, fmt.Errorf("key attribute %q is not declared", attr)
	}
	return KeyDef{Name: attr, Kind: KeyKind(t)}, nil
}

// AttributeDefinitions returns every key attribute used by the table or its
// indexes, once each, in first-seen order.
func (t TableDefinition) AttributeDefinitions() []KeyDef {
	seen := map[string]bool{}
	var defs []KeyDef
	add := func(k KeyDef) {
		if k.Name == "" || seen[k.Name] {
			return
		}
		seen[k.Name] = true
		defs = append(defs, k)
	}
	add(t.KeyDefinitions.PartitionKey)
	add(t.KeyDefinitions.SortKey)
	for _, idx := range append(append([]IndexDefinition{}, t.GSIs...), t.LSIs...) {
		add(idx.KeyDefinitions.PartitionKey)
		add(idx.KeyDefinitions.SortKey)
	}
	return defs
}
