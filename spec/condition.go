package spec

import (
	"encoding/json"
	"fmt"
)

// Condition is the descriptor of an access pattern's key condition and
// optional filters, as written in the document. It is compiled into
// typed conditions by the query package.
type Condition struct {
	Partition KeyValue       `json:"partition"`
	Sort      *SortCondition `json:"sort,omitempty"`
	Filters   []Filter       `json:"filters,omitempty"`
}

// KeyValue is a partition key value. Documents may write it as a bare
// scalar or as {"value": x}.
type KeyValue struct {
	Value any
}

func (k *KeyValue) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if obj, ok := raw.(map[string]any); ok {
		v, ok := obj["value"]
		if !ok {
			return fmt.Errorf("partition object must have a value")
		}
		k.Value = v
		return nil
	}
	k.Value = raw
	return nil
}

func (k KeyValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"value": k.Value})
}

// SortCondition describes the sort key part of a key condition. Operator
// defaults to "=". Between uses LowerValue and UpperValue.
type SortCondition struct {
	Operator   string `json:"operator,omitempty"`
	Value      any    `json:"value,omitempty"`
	LowerValue any    `json:"lowerValue,omitempty"`
	UpperValue any    `json:"upperValue,omitempty"`
}

// UnmarshalJSON accepts a bare scalar as shorthand for an equality and
// minValue/maxValue as aliases of lowerValue/upperValue.
func (c *SortCondition) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		*c = SortCondition{Operator: "=", Value: raw}
		return nil
	}
	var bounds rangeBounds
	if err := json.Unmarshal(b, &bounds); err != nil {
		return err
	}
	op, _ := obj["operator"].(string)
	*c = SortCondition{
		Operator:   op,
		Value:      obj["value"],
		LowerValue: bounds.lower(),
		UpperValue: bounds.upper(),
	}
	return nil
}

// Filter is a predicate on a non-key attribute.
type Filter struct {
	Attribute    string `json:"attribute"`
	Operator     string `json:"operator"`
	Value        any    `json:"value,omitempty"`
	SizeOperator string `json:"sizeOperator,omitempty"`
	LowerValue   any    `json:"lowerValue,omitempty"`
	UpperValue   any    `json:"upperValue,omitempty"`
}

func (f *Filter) UnmarshalJSON(b []byte) error {
	var doc struct {
		Attribute    string `json:"attribute"`
		Operator     string `json:"operator"`
		Value        any    `json:"value"`
		SizeOperator string `json:"sizeOperator"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	var bounds rangeBounds
	if err := json.Unmarshal(b, &bounds); err != nil {
		return err
	}
	*f = Filter{
		Attribute:    doc.Attribute,
		Operator:     doc.Operator,
		Value:        doc.Value,
		SizeOperator: doc.SizeOperator,
		LowerValue:   bounds.lower(),
		UpperValue:   bounds.upper(),
	}
	return nil
}

type rangeBounds struct {
	LowerValue any `json:"lowerValue"`
	UpperValue any `json:"upperValue"`
	MinValue   any `json:"minValue"`
	MaxValue   any `json:"maxValue"`
}

func (r rangeBounds) lower() any {
	if r.LowerValue != nil {
		return r.LowerValue
	}
	return r.MinValue
}

func (r rangeBounds) upper() any {
	if r.UpperValue != nil {
		return r.UpperValue
	}
	return r.MaxValue
}
