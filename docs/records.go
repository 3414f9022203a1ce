package docs

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/acksell/dynaspec/docs/md"
	"github.com/acksell/dynaspec/spec"
)

// maxInlineJSON bounds how much of a list or map value a table cell shows.
const maxInlineJSON = 24

// recordsTable renders records with one column per index key and a final
// column listing the remaining attributes. rename maps attribute names to
// the names shown.
func recordsTable(idx spec.Index, records []spec.Record, rename func(string) string) md.Table {
	keys := idx.KeyAttributes()
	header := []string{rename(idx.PartitionAttribute) + " (HASH)"}
	if idx.HasSort() {
		header = append(header, rename(idx.SortAttribute)+" (RANGE)")
	}
	header = append(header, "Attributes")

	isKey := map[string]bool{}
	for _, k := range keys {
		isKey[k] = true
	}
	t := md.Table{Header: header}
	for _, r := range records {
		row := make([]string, 0, len(header))
		for _, k := range keys {
			row = append(row, cellValue(r[k]))
		}
		var attrs []string
		for _, name := range r.SortedAttributes() {
			if isKey[name] {
				continue
			}
			attrs = append(attrs, md.Bold(md.Escape(rename(name))+":")+" "+cellValue(r[name]))
		}
		row = append(row, strings.Join(attrs, "<br>"))
		t.Rows = append(t.Rows, row)
	}
	return t
}

// cellValue shows scalars inline and lists or maps as truncated JSON.
func cellValue(v any) string {
	switch x := v.(type) {
	case []any, map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return md.Code(formatScalar(v))
		}
		return md.Code(truncate(string(b), maxInlineJSON))
	default:
		return md.Escape(formatScalar(v))
	}
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// truncate shortens s to at most n runes, cutting at the last separator and
// marking the omission.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	const omission = "..."
	cut := string(runes[:n-len(omission)])
	if i := strings.LastIndexAny(cut, ",:"); i > 0 {
		cut = cut[:i]
	}
	return cut + omission
}
