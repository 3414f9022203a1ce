package codegen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/acksell/dynaspec/spec"
)

const generatedHeader = "// Code generated by dynaspec. DO NOT EDIT."

// Usage renders a call to the generated function of an access pattern,
// passing the document's example values.
func (g *Generator) Usage(s *spec.Spec, p spec.AccessPattern) (string, error) {
	data, err := introspectPattern(s, p)
	if err != nil {
		return "", err
	}
	args := []string{"ctx", "client"}
	for _, param := range data.Params {
		args = append(args, exampleLiteral(param))
	}
	result := "items"
	if data.Single {
		result = "item"
	}
	return fmt.Sprintf("%s, err := %s.%s(%s)", result, g.PackageName(s), data.FuncName, strings.Join(args, ", ")), nil
}

func exampleLiteral(p paramData) string {
	if s, ok := p.Example.(string); ok && p.Type == "[]byte" {
		return fmt.Sprintf("[]byte(%q)", s)
	}
	return goLiteral(p.Example)
}

// Write stores src as name inside dir. Other files in dir that carry the
// generated header are removed first, so renamed packages leave nothing
// stale behind. Hand-written files are never touched.
func Write(dir, name string, src []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read output directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == name || !strings.HasSuffix(e.Name(), ".go") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if bytes.HasPrefix(content, []byte(generatedHeader)) {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove stale %s: %w", path, err)
			}
		}
	}
	if err := os.WriteFile(filepath.Join(dir, name), src, 0o644); err != nil {
		return fmt.Errorf("failed to write generated code: %w", err)
	}
	return nil
}
