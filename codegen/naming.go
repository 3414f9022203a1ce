package codegen

import (
	"go/token"
	"strings"
	"unicode"
)

// ExportedName turns a free-form name into an exported Go identifier:
// "orders by customer" and "orders-by-customer" both become OrdersByCustomer.
func ExportedName(s string) string {
	var sb strings.Builder
	upperNext := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		sb.WriteRune(r)
	}
	name := sb.String()
	if name == "" {
		return "X"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "X" + name
	}
	return name
}

// paramName turns an attribute name into an unexported identifier that does
// not collide with keywords or the generated function's own parameters.
func paramName(s string) string {
	runes := []rune(ExportedName(s))
	// Lower the leading run of capitals, keeping the last one when it starts
	// a new word: "UserID" -> "userID", "PKey" -> "pKey", "GSI1PK" -> "gsi1PK".
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n > 1 && n < len(runes) && unicode.IsLower(runes[n]) {
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	name := string(runes)
	if token.IsKeyword(name) || reservedParams[name] {
		name += "Key"
	}
	return name
}

// reservedParams are identifiers the generated functions already use.
var reservedParams = map[string]bool{
	"attributevalue": true,
	"aws":            true,
	"builder":        true,
	"client":         true,
	"context":        true,
	"ctx":            true,
	"dynamodb":       true,
	"err":            true,
	"expr":           true,
	"expression":     true,
	"fmt":            true,
	"input":          true,
	"item":           true,
	"items":          true,
	"key":            true,
	"keyCond":        true,
	"out":            true,
	"page":           true,
}
