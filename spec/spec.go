// Package spec defines the data model of a single-table design document:
// the table's attributes and indexes, its access patterns and the sample
// records used to document them. Documents are loaded from JSON or YAML.
package spec

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MainIndex is the name of the table's primary index.
const MainIndex = "main"

type AttributeType string

const (
	AttributeTypeS AttributeType = "S"
	AttributeTypeN AttributeType = "N"
	AttributeTypeB AttributeType = "B"
)

// UnmarshalJSON accepts either a bare type ("S") or an object ({"type": "S"}).
func (t *AttributeType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = AttributeType(s)
		return nil
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("attribute type must be a string or an object with a type: %w", err)
	}
	*t = AttributeType(obj.Type)
	return nil
}

type IndexKind string

const (
	IndexKindPrimary IndexKind = "primary"
	IndexKindGlobal  IndexKind = "global"
	IndexKindLocal   IndexKind = "local"
)

type ProjectionType string

const (
	ProjectionAll      ProjectionType = "all"
	ProjectionKeysOnly ProjectionType = "keys_only"
	ProjectionInclude  ProjectionType = "include"
)

// Index names the key attributes of one index. An index without a sort
// attribute is partition-only.
type Index struct {
	PartitionAttribute string         `json:"partitionAttribute" yaml:"partitionAttribute"`
	SortAttribute      string         `json:"sortAttribute,omitempty" yaml:"sortAttribute,omitempty"`
	Kind               IndexKind      `json:"kind,omitempty" yaml:"kind,omitempty"`
	Projection         ProjectionType `json:"projection,omitempty" yaml:"projection,omitempty"`
	NonKeyAttributes   []string       `json:"nonKeyAttributes,omitempty" yaml:"nonKeyAttributes,omitempty"`
}

func (i Index) HasSort() bool {
	return i.SortAttribute != ""
}

// KeyAttributes returns the partition attribute followed by the sort
// attribute, if any.
func (i Index) KeyAttributes() []string {
	if i.HasSort() {
		return []string{i.PartitionAttribute, i.SortAttribute}
	}
	return []string{i.PartitionAttribute}
}

type PatternType string

const (
	PatternGet   PatternType = "get"
	PatternQuery PatternType = "query"
)

type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// AccessPattern is a named read path against one index.
type AccessPattern struct {
	Name         string            `json:"name,omitempty" yaml:"name,omitempty"`
	Title        string            `json:"title" yaml:"title"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Index        string            `json:"index" yaml:"index"`
	Type         PatternType       `json:"type" yaml:"type"`
	Condition    Condition         `json:"condition" yaml:"condition"`
	Order        Order             `json:"order,omitempty" yaml:"order,omitempty"`
	Limit        int               `json:"limit,omitempty" yaml:"limit,omitempty"`
	AttributeMap map[string]string `json:"attributeMap,omitempty" yaml:"attributeMap,omitempty"`
}

func (p AccessPattern) Descending() bool {
	return p.Order == OrderDesc
}

// MappedName returns the display name for an attribute, falling back to the
// attribute itself when the pattern does not rename it.
func (p AccessPattern) MappedName(attr string) string {
	if name, ok := p.AttributeMap[attr]; ok && name != "" {
		return name
	}
	return attr
}

// Record is a sample item. Values are JSON-like: strings, float64 numbers,
// booleans, nil, []any and map[string]any. Binary values are []byte.
type Record map[string]any

// SortedAttributes returns the record's attribute names in lexical order.
func (r Record) SortedAttributes() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Spec is the root of a design document.
type Spec struct {
	Service        string                   `json:"service,omitempty" yaml:"service,omitempty"`
	Description    string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Version        string                   `json:"version,omitempty" yaml:"version,omitempty"`
	Author         string                   `json:"author,omitempty" yaml:"author,omitempty"`
	TableName      string                   `json:"tableName" yaml:"tableName"`
	PackageName    string                   `json:"packageName,omitempty" yaml:"packageName,omitempty"`
	Attributes     map[string]AttributeType `json:"attributes" yaml:"attributes"`
	Indexes        map[string]Index         `json:"indexes" yaml:"indexes"`
	AccessPatterns []AccessPattern          `json:"accessPatterns,omitempty" yaml:"accessPatterns,omitempty"`
	Records        []Record                 `json:"records,omitempty" yaml:"records,omitempty"`
}

// IndexNames returns "main" first, then the secondary indexes in lexical order.
func (s *Spec) IndexNames() []string {
	names := make([]string, 0, len(s.Indexes))
	for name := range s.Indexes {
		if name != MainIndex {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := s.Indexes[MainIndex]; ok {
		names = append([]string{MainIndex}, names...)
	}
	return names
}

// applyDefaults fills in index kinds and projections left implicit.
func (s *Spec) applyDefaults() {
	for name, idx := range s.Indexes {
		if idx.Kind == "" {
			switch {
			case name == MainIndex:
				idx.Kind = IndexKindPrimary
			default:
				idx.Kind = IndexKindGlobal
			}
		}
		if idx.Projection == "" {
			idx.Projection = ProjectionAll
		}
		s.Indexes[name] = idx
	}
	for i := range s.AccessPatterns {
		if s.AccessPatterns[i].Type == PatternQuery && s.AccessPatterns[i].Order == "" {
			s.AccessPatterns[i].Order = OrderAsc
		}
	}
}
