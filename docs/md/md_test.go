package md

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument(t *testing.T) {
	var d Document
	d.Add(
		Heading{Depth: 1, Text: "Orders"},
		Heading{Depth: 2, Text: "Table of Contents"},
		Heading{Depth: 2, Text: "Table Spec"},
		Paragraph{Text: "Some " + Bold("bold") + " text."},
		Heading{Depth: 2, Text: "Access Patterns"},
		Heading{Depth: 3, Text: "Get order"},
		Heading{Depth: 4, Text: "Too deep"},
		Heading{Depth: 3, Text: "Get order"},
		CodeBlock{Lang: "json", Value: "{}\n"},
		Table{Header: []string{"pk", "sk"}, Rows: [][]string{{"a|b", "c"}, {"only"}}},
		Blockquote{Text: "line one\n\nline two"},
	)
	d.InsertTOC("Table of Contents", 3)

	want := "# Orders\n\n" +
		"## Table of Contents\n\n" +
		"- [Table Spec](#table-spec)\n" +
		"- [Access Patterns](#access-patterns)\n" +
		"  - [Get order](#get-order)\n" +
		"  - [Get order](#get-order-1)\n\n" +
		"## Table Spec\n\n" +
		"Some **bold** text.\n\n" +
		"## Access Patterns\n\n" +
		"### Get order\n\n" +
		"#### Too deep\n\n" +
		"### Get order\n\n" +
		"```json\n{}\n```\n\n" +
		"| pk | sk |\n| --- | --- |\n| a\\|b | c |\n| only |  |\n\n" +
		"> line one\n>\n> line two\n"
	assert.Equal(t, want, d.String())
}

func TestTableEscapesPipesInCodeSpans(t *testing.T) {
	tbl := Table{Header: []string{"pk", "tags"}, Rows: [][]string{{"a", Code(`["a|b"]`)}}}
	assert.Equal(t, "| pk | tags |\n| --- | --- |\n| a | `[\"a\\|b\"]` |", tbl.markdown())
}

func TestInsertTOCWithoutHeading(t *testing.T) {
	var d Document
	d.Add(Heading{Depth: 2, Text: "Other"})
	d.InsertTOC("Table of Contents", 3)
	assert.Len(t, d.Nodes(), 1)
}

func TestInline(t *testing.T) {
	assert.Equal(t, "`a`", Code("a"))
	assert.Equal(t, "``a`b``", Code("a`b"))
	assert.Equal(t, "[x](#y)", Link("x", "#y"))
	assert.Equal(t, `a\_b\*c`, Escape("a_b*c"))
	assert.Equal(t, "access-patterns", Anchor("Access Patterns"))
	assert.Equal(t, "get-user-by-id", Anchor("Get `user` by id!"))
}
