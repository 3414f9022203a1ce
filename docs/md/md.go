// Package md builds GitHub flavored markdown documents from a flat list of
// block nodes.
package md

import (
	"fmt"
	"strings"
	"unicode"
)

// Node is a block-level element.
type Node interface {
	markdown() string
}

type Heading struct {
	Depth int
	Text  string
}

func (h Heading) markdown() string {
	return strings.Repeat("#", h.Depth) + " " + h.Text
}

// Paragraph holds already formatted inline markdown.
type Paragraph struct {
	Text string
}

func (p Paragraph) markdown() string { return p.Text }

type CodeBlock struct {
	Lang  string
	Value string
}

func (c CodeBlock) markdown() string {
	fence := "```"
	for strings.Contains(c.Value, fence) {
		fence += "`"
	}
	return fence + c.Lang + "\n" + strings.TrimRight(c.Value, "\n") + "\n" + fence
}

type Blockquote struct {
	Text string
}

func (b Blockquote) markdown() string {
	lines := strings.Split(b.Text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("> "+l, " ")
	}
	return strings.Join(lines, "\n")
}

// HTML is emitted verbatim.
type HTML struct {
	Value string
}

func (h HTML) markdown() string { return h.Value }

type Table struct {
	Header []string
	Rows   [][]string
}

func (t Table) markdown() string {
	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := range t.Header {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(" " + escapeCell(cell) + " |")
		}
		sb.WriteString("\n")
	}
	writeRow(t.Header)
	sb.WriteString("|")
	for range t.Header {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, r := range t.Rows {
		writeRow(r)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}

type List struct {
	Items []ListItem
}

type ListItem struct {
	Text     string
	Children []ListItem
}

func (l List) markdown() string {
	var sb strings.Builder
	var walk func(items []ListItem, depth int)
	walk = func(items []ListItem, depth int) {
		for _, it := range items {
			fmt.Fprintf(&sb, "%s- %s\n", strings.Repeat("  ", depth), it.Text)
			walk(it.Children, depth+1)
		}
	}
	walk(l.Items, 0)
	return strings.TrimSuffix(sb.String(), "\n")
}

type ThematicBreak struct{}

func (ThematicBreak) markdown() string { return "---" }

// Document is an ordered list of blocks.
type Document struct {
	nodes []Node
}

func (d *Document) Add(nodes ...Node) {
	d.nodes = append(d.nodes, nodes...)
}

func (d *Document) Nodes() []Node {
	return d.nodes
}

// String renders the document with a blank line between blocks.
func (d *Document) String() string {
	parts := make([]string, len(d.nodes))
	for i, n := range d.nodes {
		parts[i] = n.markdown()
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// InsertTOC places a linked table of contents right after the heading
// titled heading. It lists the headings that follow it, down to maxDepth.
// Nothing happens if the heading is missing.
func (d *Document) InsertTOC(heading string, maxDepth int) {
	at := -1
	for i, n := range d.nodes {
		if h, ok := n.(Heading); ok && h.Text == heading {
			at = i
			break
		}
	}
	if at < 0 {
		return
	}
	slugs := newSlugger()
	for _, n := range d.nodes[:at+1] {
		if h, ok := n.(Heading); ok {
			slugs.slug(h.Text)
		}
	}

	type entry struct {
		depth int
		item  ListItem
	}
	var entries []entry
	minDepth := maxDepth
	for _, n := range d.nodes[at+1:] {
		h, ok := n.(Heading)
		if !ok {
			continue
		}
		anchor := slugs.slug(h.Text)
		if h.Depth > maxDepth {
			continue
		}
		if h.Depth < minDepth {
			minDepth = h.Depth
		}
		entries = append(entries, entry{h.Depth, ListItem{Text: Link(stripInline(h.Text), "#"+anchor)}})
	}
	if len(entries) == 0 {
		return
	}

	var build func(i, depth int) ([]ListItem, int)
	build = func(i, depth int) ([]ListItem, int) {
		var items []ListItem
		for i < len(entries) {
			e := entries[i]
			if e.depth < depth {
				break
			}
			if e.depth > depth {
				if len(items) == 0 {
					items = append(items, ListItem{})
				}
				var children []ListItem
				children, i = build(i, e.depth)
				items[len(items)-1].Children = append(items[len(items)-1].Children, children...)
				continue
			}
			items = append(items, e.item)
			i++
		}
		return items, i
	}
	items, _ := build(0, minDepth)

	nodes := make([]Node, 0, len(d.nodes)+1)
	nodes = append(nodes, d.nodes[:at+1]...)
	nodes = append(nodes, List{Items: items})
	nodes = append(nodes, d.nodes[at+1:]...)
	d.nodes = nodes
}

// slugger produces GitHub heading anchors, suffixing repeats with -1, -2...
type slugger struct {
	seen map[string]int
}

func newSlugger() *slugger {
	return &slugger{seen: map[string]int{}}
}

func (s *slugger) slug(text string) string {
	base := Anchor(text)
	n, dup := s.seen[base]
	s.seen[base] = n + 1
	if !dup {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// Anchor converts heading text to its GitHub anchor.
func Anchor(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(stripInline(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteRune('-')
		}
	}
	return sb.String()
}

// stripInline drops inline markup characters from heading text.
func stripInline(text string) string {
	return strings.NewReplacer("`", "", "*", "", "\\", "").Replace(text)
}
