// Package validate checks design documents against the embedded JSON
// schema before they are decoded into typed specs.
package validate

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed spec.schema.json
var specSchema string

// Schema returns the JSON schema documents are validated against.
func Schema() string {
	return specSchema
}

// Validator holds the compiled schema. Build one with New and share it.
type Validator struct {
	schema *gojsonschema.Schema
}

func New() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(specSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile spec schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks a decoded document. Schema violations are returned as
// *Error.
func (v *Validator) Validate(doc any) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}
	verr := &Error{}
	for _, desc := range result.Errors() {
		verr.Problems = append(verr.Problems, Problem{
			Field:       desc.Field(),
			Description: desc.Description(),
		})
	}
	return verr
}

type Problem struct {
	Field       string
	Description string
}

func (p Problem) String() string {
	return p.Field + ": " + p.Description
}

// Error lists every schema violation found in a document.
type Error struct {
	Problems []Problem
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return "invalid spec: " + strings.Join(lines, "; ")
}
