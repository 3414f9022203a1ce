package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the document format from the file extension.
// Anything that is not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DocumentValidator checks a decoded document before it is converted to a
// Spec. Implemented by validate.Validator.
type DocumentValidator interface {
	Validate(doc any) error
}

// Load reads and parses the document at path.
func Load(path string, v DocumentValidator) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec %s: %w", path, err)
	}
	s, err := Parse(data, FormatFromPath(path), v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a document, normalizes an embedded AWS table definition,
// runs the validator if one is given and checks cross references.
// JSON and YAML documents take the same path after decoding.
func Parse(data []byte, format Format, v DocumentValidator) (*Spec, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	if v != nil {
		if err := v.Validate(doc); err != nil {
			return nil, err
		}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode document: %w", err)
	}
	var s Spec
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	s.applyDefaults()
	if err := s.Check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Decode unmarshals a document into its generic form and applies
// Preprocess. The result is what the validator sees.
func Decode(data []byte, format Format) (map[string]any, error) {
	var doc map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if doc == nil {
		return nil, fmt.Errorf("document is empty")
	}
	return Preprocess(doc)
}
