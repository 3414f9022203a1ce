// Package codegen generates a typed Go client with one function per access
// pattern of a spec. The generated code talks to DynamoDB through the AWS
// SDK v2 expression builder.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"

	"github.com/acksell/dynaspec/query"
	"github.com/acksell/dynaspec/spec"
)

// Config holds the code generation configuration.
type Config struct {
	// Package is the Go package name for generated code. Defaults to the
	// spec's packageName, then to "ddbclient".
	Package string
}

// Generator generates Go code from a spec.
type Generator struct {
	Config Config
}

func New(cfg Config) *Generator {
	return &Generator{Config: cfg}
}

// PackageName returns the package the generated code declares.
func (g *Generator) PackageName(s *spec.Spec) string {
	switch {
	case g.Config.Package != "":
		return g.Config.Package
	case s.PackageName != "":
		return s.PackageName
	default:
		return "ddbclient"
	}
}

// FileName is the name of the generated file inside the output directory.
func (g *Generator) FileName(s *spec.Spec) string {
	return g.PackageName(s) + "_gen.go"
}

// Generate produces the formatted source of the client.
func (g *Generator) Generate(s *spec.Spec) ([]byte, error) {
	patterns := make([]patternData, 0, len(s.AccessPatterns))
	seen := map[string]string{}
	for _, p := range s.AccessPatterns {
		data, err := introspectPattern(s, p)
		if err != nil {
			return nil, fmt.Errorf("access pattern %q: %w", p.Title, err)
		}
		if prev, dup := seen[data.FuncName]; dup {
			return nil, fmt.Errorf("access patterns %q and %q both generate %s; set a distinct name", prev, p.Title, data.FuncName)
		}
		seen[data.FuncName] = p.Title
		patterns = append(patterns, data)
	}

	tmpl, err := template.New("main").Funcs(templateFuncs).Parse(mainTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	data := templateData{
		Package:   g.PackageName(s),
		TableName: s.TableName,
		Imports:   buildImports(patterns),
		Patterns:  patterns,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		// Return unformatted code with error for debugging
		return buf.Bytes(), fmt.Errorf("formatting generated code: %w", err)
	}
	return formatted, nil
}

type templateData struct {
	Package   string
	TableName string
	Imports   []string
	Patterns  []patternData
}

type patternData struct {
	FuncName string
	TypeName string
	Title    string
	Index    string // empty for the main index
	// GetItem is true for gets on the main index. Gets on a secondary
	// index are issued as a Query returning the first item.
	GetItem       bool
	Single        bool
	Params        []paramData
	PartitionAttr string
	PartitionArg  string
	SortAttr      string
	SortArg       string
	SortCond      string
	Filter        string
	Desc          bool
	Limit         int
	Fields        []fieldData
}

type paramData struct {
	Name string
	Type string
	// Example is the document's value for the parameter, used in usage
	// snippets.
	Example any
}

type fieldData struct {
	GoName    string
	GoType    string
	Attribute string
}

func buildImports(patterns []patternData) []string {
	imports := []string{`"context"`}
	if len(patterns) > 0 {
		imports = append(imports, `"fmt"`, "", `"github.com/aws/aws-sdk-go-v2/aws"`, `"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"`)
	} else {
		imports = append(imports, "")
	}
	for _, p := range patterns {
		if !p.GetItem {
			imports = append(imports, `"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"`)
			break
		}
	}
	return append(imports, `"github.com/aws/aws-sdk-go-v2/service/dynamodb"`)
}

// FuncName returns the generated function name of an access pattern.
func FuncName(p spec.AccessPattern) string {
	if p.Name != "" {
		return ExportedName(p.Name)
	}
	return ExportedName(p.Title)
}

func introspectPattern(s *spec.Spec, p spec.AccessPattern) (patternData, error) {
	idx, err := s.Index(p.Index)
	if err != nil {
		return patternData{}, err
	}
	cond, err := query.Compile(p.Condition)
	if err != nil {
		return patternData{}, err
	}
	if cond.Sort != nil && !idx.HasSort() {
		return patternData{}, fmt.Errorf("%w: index %s has no sort attribute", query.ErrMalformedCondition, p.Index)
	}

	name := FuncName(p)
	data := patternData{
		FuncName:      name,
		TypeName:      name + "Item",
		Title:         p.Title,
		PartitionAttr: idx.PartitionAttribute,
		PartitionArg:  paramName(p.MappedName(idx.PartitionAttribute)),
		Desc:          p.Descending(),
		Limit:         p.Limit,
	}
	if p.Index != spec.MainIndex {
		data.Index = p.Index
	}
	data.Params = append(data.Params, paramData{
		Name:    data.PartitionArg,
		Type:    goKeyType(s, idx.PartitionAttribute),
		Example: cond.Partition,
	})

	switch p.Type {
	case spec.PatternGet:
		data.Single = true
		data.GetItem = p.Index == spec.MainIndex
		if idx.HasSort() {
			sc, ok := cond.Sort.(query.SortCompare)
			if !ok || sc.Op != query.Equal {
				return patternData{}, fmt.Errorf("%w: get needs an equality on %s", query.ErrMalformedCondition, idx.SortAttribute)
			}
			cond.Sort = sc
		}
		if !data.GetItem {
			data.Limit = 1
		}
	case spec.PatternQuery:
		data.Filter = filterExpr(cond.Filters)
	default:
		return patternData{}, fmt.Errorf("%w %q", query.ErrUnknownPatternType, p.Type)
	}

	if cond.Sort != nil {
		data.SortAttr = idx.SortAttribute
		data.Params = append(data.Params, sortParamData(s, p, idx.SortAttribute, cond.Sort)...)
	}
	dedupeParams(data.Params)
	data.PartitionArg = data.Params[0].Name
	if cond.Sort != nil {
		args := make([]string, 0, len(data.Params)-1)
		for _, sp := range data.Params[1:] {
			args = append(args, sp.Name)
		}
		data.SortArg = args[0]
		if !data.GetItem {
			data.SortCond, err = sortKeyExpr(idx.SortAttribute, cond.Sort, args)
			if err != nil {
				return patternData{}, err
			}
		}
	}

	data.Fields = itemFields(s, p, idx)
	return data, nil
}

func sortParamData(s *spec.Spec, p spec.AccessPattern, attr string, c query.SortCondition) []paramData {
	base := paramName(p.MappedName(attr))
	typ := goKeyType(s, attr)
	switch c := c.(type) {
	case query.SortCompare:
		return []paramData{{Name: base, Type: typ, Example: c.Value}}
	case query.SortBetween:
		return []paramData{
			{Name: base + "Min", Type: typ, Example: c.Lower},
			{Name: base + "Max", Type: typ, Example: c.Upper},
		}
	case query.SortBeginsWith:
		return []paramData{{Name: base + "Prefix", Type: "string", Example: c.Prefix}}
	default:
		panic(fmt.Sprintf("codegen: unhandled sort condition %T", c))
	}
}

// dedupeParams suffixes repeated parameter names.
func dedupeParams(params []paramData) {
	seen := map[string]int{}
	for i := range params {
		n := seen[params[i].Name]
		seen[params[i].Name] = n + 1
		if n > 0 {
			params[i].Name = fmt.Sprintf("%s%d", params[i].Name, n+1)
		}
	}
}

func goKeyType(s *spec.Spec, attr string) string {
	switch s.Attributes[attr] {
	case spec.AttributeTypeN:
		return "float64"
	case spec.AttributeTypeB:
		return "[]byte"
	default:
		return "string"
	}
}

// itemFields lists the attributes of the returned item type: the table and
// index keys, the pattern's mapped attributes, and whatever else the index
// projects from the sample records.
func itemFields(s *spec.Spec, p spec.AccessPattern, idx spec.Index) []fieldData {
	attrs := map[string]bool{}
	for _, a := range s.TableKeyAttributes() {
		attrs[a] = true
	}
	for _, a := range idx.KeyAttributes() {
		attrs[a] = true
	}
	for a := range p.AttributeMap {
		attrs[a] = true
	}
	projected := func(a string) bool {
		switch {
		case p.Index == spec.MainIndex || idx.Projection == spec.ProjectionAll || idx.Projection == "":
			return true
		case idx.Projection == spec.ProjectionInclude:
			for _, nk := range idx.NonKeyAttributes {
				if nk == a {
					return true
				}
			}
		}
		return false
	}
	for _, r := range s.Records {
		for a := range r {
			if projected(a) {
				attrs[a] = true
			}
		}
	}

	names := make([]string, 0, len(attrs))
	for a := range attrs {
		names = append(names, a)
	}
	sort.Strings(names)

	fields := make([]fieldData, 0, len(names))
	used := map[string]int{}
	for _, a := range names {
		goName := ExportedName(p.MappedName(a))
		if n := used[goName]; n > 0 {
			used[goName] = n + 1
			goName = fmt.Sprintf("%s%d", goName, n+1)
		} else {
			used[goName] = 1
		}
		fields = append(fields, fieldData{GoName: goName, GoType: goFieldType(s, a), Attribute: a})
	}
	return fields
}

// goFieldType uses the declared attribute type, then the shape of the first
// sample value.
func goFieldType(s *spec.Spec, attr string) string {
	if _, declared := s.Attributes[attr]; declared {
		return goKeyType(s, attr)
	}
	for _, r := range s.Records {
		v, ok := r[attr]
		if !ok {
			continue
		}
		switch v.(type) {
		case string:
			return "string"
		case float64:
			return "float64"
		case bool:
			return "bool"
		case []byte:
			return "[]byte"
		case []any:
			return "[]any"
		case map[string]any:
			return "map[string]any"
		}
		break
	}
	return "any"
}

var templateFuncs = template.FuncMap{
	"params": func(p patternData) string {
		parts := make([]string, len(p.Params))
		for i, param := range p.Params {
			parts[i] = param.Name + " " + param.Type
		}
		return strings.Join(parts, ", ")
	},
	"quote": func(s string) string {
		return fmt.Sprintf("%q", s)
	},
}
