package md

import "strings"

func Bold(s string) string {
	return "**" + s + "**"
}

func Italic(s string) string {
	return "_" + s + "_"
}

// Code wraps s in backticks, widening the fence if s contains backticks.
func Code(s string) string {
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}

func Link(text, url string) string {
	return "[" + text + "](" + url + ")"
}

func Image(alt, url string) string {
	return "![" + alt + "](" + url + ")"
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
)

// Escape makes s safe to embed as plain inline text.
func Escape(s string) string {
	return textEscaper.Replace(s)
}
