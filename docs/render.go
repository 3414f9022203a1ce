// Package docs renders a spec as a markdown design document: the table
// definition, every access pattern with its request and the sample records
// it returns, and the contents of each index.
package docs

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/acksell/dynaspec/codegen"
	"github.com/acksell/dynaspec/docs/md"
	"github.com/acksell/dynaspec/query"
	"github.com/acksell/dynaspec/spec"
	"github.com/acksell/dynaspec/table"
)

const tocHeading = "Table of Contents"

type Options struct {
	// GeneratorVersion is stamped into the header comment.
	GeneratorVersion string
	// Package is the package name used in generated client snippets.
	Package string
	Logger  zerolog.Logger
}

type Renderer struct {
	engine *query.Engine
	gen    *codegen.Generator
	opts   Options
}

func NewRenderer(engine *query.Engine, opts Options) *Renderer {
	return &Renderer{
		engine: engine,
		gen:    codegen.New(codegen.Config{Package: opts.Package}),
		opts:   opts,
	}
}

// Render produces the markdown document for s.
func (r *Renderer) Render(s *spec.Spec) ([]byte, error) {
	doc := &md.Document{}

	version := r.opts.GeneratorVersion
	if version == "" {
		version = "dev"
	}
	doc.Add(md.HTML{Value: fmt.Sprintf("<!-- Generated by dynaspec %s. DO NOT EDIT. -->", version)})

	title := s.Service
	if title == "" {
		title = s.TableName
	}
	doc.Add(md.Heading{Depth: 1, Text: md.Escape(title)})
	if s.Version != "" {
		badge := "https://img.shields.io/badge/version-" + url.PathEscape(strings.ReplaceAll(s.Version, "-", "--")) + "-blue"
		doc.Add(md.Paragraph{Text: md.Image("version "+s.Version, badge)})
	}
	if s.Description != "" {
		doc.Add(md.Paragraph{Text: s.Description})
	}
	doc.Add(md.Heading{Depth: 2, Text: tocHeading})

	if err := r.tableSpec(doc, s); err != nil {
		return nil, err
	}
	if err := r.accessPatterns(doc, s); err != nil {
		return nil, err
	}
	if err := r.indexes(doc, s); err != nil {
		return nil, err
	}
	if s.Author != "" {
		doc.Add(md.Heading{Depth: 2, Text: "Author"}, md.Paragraph{Text: s.Author})
	}

	doc.InsertTOC(tocHeading, 3)
	return []byte(doc.String()), nil
}

func (r *Renderer) tableSpec(doc *md.Document, s *spec.Spec) error {
	def, err := table.FromSpec(s)
	if err != nil {
		return fmt.Errorf("table spec: %w", err)
	}
	input, err := json.MarshalIndent(def.CLIInput(), "", "  ")
	if err != nil {
		return fmt.Errorf("table spec: %w", err)
	}
	doc.Add(
		md.Heading{Depth: 2, Text: "Table Spec"},
		md.Paragraph{Text: fmt.Sprintf("The %s table is created on demand with the following definition.", md.Code(s.TableName))},
		md.CodeBlock{Lang: "json", Value: string(input)},
		md.Heading{Depth: 3, Text: "Create with the AWS CLI"},
		md.Paragraph{Text: "Save the definition above as " + md.Code("table.json") + " and run:"},
		md.CodeBlock{Lang: "bash", Value: "aws dynamodb create-table --cli-input-json file://table.json"},
		md.Heading{Depth: 3, Text: "Create with dynaspec"},
		md.Paragraph{Text: "The same request can be sent with the AWS SDK for Go:"},
		md.CodeBlock{Lang: "bash", Value: "dynaspec create-table --wait <spec-file>"},
	)
	return nil
}

func (r *Renderer) accessPatterns(doc *md.Document, s *spec.Spec) error {
	doc.Add(md.Heading{Depth: 2, Text: "Access Patterns"})
	if len(s.AccessPatterns) == 0 {
		doc.Add(md.Paragraph{Text: md.Italic("No access patterns defined.")})
		return nil
	}
	log := r.opts.Logger
	for i, p := range s.AccessPatterns {
		if err := r.accessPattern(doc, s, p); err != nil {
			return fmt.Errorf("access pattern %d (%s): %w", i, p.Title, err)
		}
		log.Debug().Str("pattern", p.Title).Msg("rendered access pattern")
	}
	return nil
}

func (r *Renderer) accessPattern(doc *md.Document, s *spec.Spec, p spec.AccessPattern) error {
	idx, err := s.Index(p.Index)
	if err != nil {
		return err
	}
	cond, err := query.Compile(p.Condition)
	if err != nil {
		return err
	}
	records, err := r.engine.FindMatchingRecords(s, p)
	if err != nil {
		return err
	}

	doc.Add(md.Heading{Depth: 3, Text: md.Escape(p.Title)})
	if p.Description != "" {
		doc.Add(md.Blockquote{Text: p.Description})
	}
	doc.Add(md.Paragraph{Text: describe(p, idx, cond, r.engine.Options().InclusiveBetween)})

	var params any
	switch {
	case p.Type == spec.PatternGet && p.Index == spec.MainIndex:
		params, err = BuildGetParams(s, p)
	default:
		params, err = BuildQueryParams(s, p)
	}
	if err != nil {
		return err
	}
	body, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return err
	}
	doc.Add(
		md.Heading{Depth: 4, Text: "Request"},
		md.CodeBlock{Lang: "json", Value: string(body)},
		md.Heading{Depth: 4, Text: "DynamoDB Records"},
	)
	identity := func(a string) string { return a }
	if len(records) == 0 {
		doc.Add(md.Paragraph{Text: md.Italic("No matching records.")})
	} else {
		doc.Add(recordsTable(idx, records, identity))
	}

	usage, err := r.gen.Usage(s, p)
	if err != nil {
		return err
	}
	doc.Add(
		md.Heading{Depth: 4, Text: "Generated Client"},
		md.CodeBlock{Lang: "go", Value: usage},
	)
	if len(p.AttributeMap) > 0 && len(records) > 0 {
		doc.Add(
			md.Heading{Depth: 4, Text: "Mapped Records"},
			recordsTable(idx, records, p.MappedName),
		)
	}
	return nil
}

func (r *Renderer) indexes(doc *md.Document, s *spec.Spec) error {
	doc.Add(md.Heading{Depth: 2, Text: "Indexes"})
	for _, name := range s.IndexNames() {
		idx := s.Indexes[name]
		records, err := r.engine.RecordsInIndex(s, name)
		if err != nil {
			return err
		}
		keys := "partition " + md.Code(idx.PartitionAttribute)
		if idx.HasSort() {
			keys += " and sort " + md.Code(idx.SortAttribute)
		}
		summary := fmt.Sprintf("%s index keyed by %s.", kindLabel(idx.Kind), keys)
		if name != spec.MainIndex {
			summary += " Projection: " + md.Code(string(idx.Projection))
			if len(idx.NonKeyAttributes) > 0 {
				summary += " with " + md.Code(strings.Join(idx.NonKeyAttributes, ", "))
			}
			summary += "."
		}
		doc.Add(md.Heading{Depth: 3, Text: md.Escape(name)}, md.Paragraph{Text: summary})
		if len(records) == 0 {
			doc.Add(md.Paragraph{Text: md.Italic("No records in this index.")})
			continue
		}
		doc.Add(recordsTable(idx, records, func(a string) string { return a }))
	}
	return nil
}

func kindLabel(k spec.IndexKind) string {
	switch k {
	case spec.IndexKindPrimary:
		return "Primary"
	case spec.IndexKindLocal:
		return "Local secondary"
	default:
		return "Global secondary"
	}
}
