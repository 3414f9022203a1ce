package spec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// tableDefinition is the subset of a DynamoDB CreateTable request a
// document may embed in place of attributes and indexes.
type tableDefinition struct {
	TableName            string `json:"TableName"`
	AttributeDefinitions []struct {
		AttributeName string `json:"AttributeName"`
		AttributeType string `json:"AttributeType"`
	} `json:"AttributeDefinitions"`
	KeySchema              []keySchemaElement        `json:"KeySchema"`
	GlobalSecondaryIndexes []secondaryIndexDefinition `json:"GlobalSecondaryIndexes"`
	LocalSecondaryIndexes  []secondaryIndexDefinition `json:"LocalSecondaryIndexes"`
}

type keySchemaElement struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"`
}

type secondaryIndexDefinition struct {
	IndexName  string             `json:"IndexName"`
	KeySchema  []keySchemaElement `json:"KeySchema"`
	Projection struct {
		ProjectionType   string   `json:"ProjectionType"`
		NonKeyAttributes []string `json:"NonKeyAttributes"`
	} `json:"Projection"`
}

// Preprocess rewrites a generic document into the normalized form: an
// embedded tableDefinition becomes tableName, attributes and indexes, and a
// numeric version becomes a string. Explicit attributes and indexes win
// over ones derived from the table definition.
func Preprocess(doc map[string]any) (map[string]any, error) {
	if v, ok := doc["version"]; ok {
		switch n := v.(type) {
		case float64:
			doc["version"] = strconv.FormatFloat(n, 'f', -1, 64)
		case int:
			doc["version"] = strconv.Itoa(n)
		}
	}
	rawDef, ok := doc["tableDefinition"]
	if !ok {
		return doc, nil
	}
	delete(doc, "tableDefinition")

	b, err := json.Marshal(rawDef)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tableDefinition: %w", err)
	}
	var def tableDefinition
	if err := json.Unmarshal(b, &def); err != nil {
		return nil, fmt.Errorf("invalid tableDefinition: %w", err)
	}

	if _, ok := doc["tableName"]; !ok && def.TableName != "" {
		doc["tableName"] = def.TableName
	}

	attrs := map[string]any{}
	for _, ad := range def.AttributeDefinitions {
		attrs[ad.AttributeName] = ad.AttributeType
	}
	mergeInto(doc, "attributes", attrs)

	indexes := map[string]any{}
	if len(def.KeySchema) > 0 {
		main, err := indexFromKeySchema(def.KeySchema)
		if err != nil {
			return nil, fmt.Errorf("tableDefinition: %w", err)
		}
		main["kind"] = string(IndexKindPrimary)
		indexes[MainIndex] = main
	}
	for _, group := range []struct {
		kind IndexKind
		defs []secondaryIndexDefinition
	}{
		{IndexKindGlobal, def.GlobalSecondaryIndexes},
		{IndexKindLocal, def.LocalSecondaryIndexes},
	} {
		for _, sid := range group.defs {
			idx, err := indexFromKeySchema(sid.KeySchema)
			if err != nil {
				return nil, fmt.Errorf("tableDefinition index %s: %w", sid.IndexName, err)
			}
			idx["kind"] = string(group.kind)
			if pt := sid.Projection.ProjectionType; pt != "" {
				idx["projection"] = strings.ToLower(pt)
			}
			if len(sid.Projection.NonKeyAttributes) > 0 {
				nk := make([]any, len(sid.Projection.NonKeyAttributes))
				for i, a := range sid.Projection.NonKeyAttributes {
					nk[i] = a
				}
				idx["nonKeyAttributes"] = nk
			}
			indexes[sid.IndexName] = idx
		}
	}
	mergeInto(doc, "indexes", indexes)
	return doc, nil
}

func indexFromKeySchema(ks []keySchemaElement) (map[string]any, error) {
	idx := map[string]any{}
	for _, k := range ks {
		switch strings.ToUpper(k.KeyType) {
		case "HASH":
			idx["partitionAttribute"] = k.AttributeName
		case "RANGE":
			idx["sortAttribute"] = k.AttributeName
		default:
			return nil, fmt.Errorf("unknown KeyType %q for %s", k.KeyType, k.AttributeName)
		}
	}
	if _, ok := idx["partitionAttribute"]; !ok {
		return nil, fmt.Errorf("KeySchema has no HASH key")
	}
	return idx, nil
}

func mergeInto(doc map[string]any, key string, derived map[string]any) {
	existing, ok := doc[key].(map[string]any)
	if !ok {
		doc[key] = derived
		return
	}
	for k, v := range derived {
		if _, set := existing[k]; !set {
			existing[k] = v
		}
	}
}
