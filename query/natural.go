package query

import (
	"strings"
	"unicode/utf8"
)

// naturalCompare orders strings with embedded digit runs compared by
// numeric value, so "9" sorts before "10" and "ORDER#2" before "ORDER#10".
// Equal digit values with more leading zeros sort later.
func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		if isDigit(a[0]) && isDigit(b[0]) {
			da, restA := digitRun(a)
			db, restB := digitRun(b)
			ta := strings.TrimLeft(da, "0")
			tb := strings.TrimLeft(db, "0")
			if c := compareOrdered(len(ta), len(tb)); c != 0 {
				return c
			}
			if c := strings.Compare(ta, tb); c != 0 {
				return c
			}
			if c := compareOrdered(len(da), len(db)); c != 0 {
				return c
			}
			a, b = restA, restB
			continue
		}
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		if c := compareOrdered(ra, rb); c != 0 {
			return c
		}
		a, b = a[na:], b[nb:]
	}
	return compareOrdered(len(a), len(b))
}

func digitRun(s string) (run, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// compareSortValues orders sort attribute values: numbers numerically and
// before strings, strings naturally. Values with no common ordering compare
// equal so a stable sort keeps their record order.
func compareSortValues(a, b any) int {
	x, numA := asNumber(a)
	y, numB := asNumber(b)
	switch {
	case numA && numB:
		return compareOrdered(x, y)
	case numA && isString(b):
		return -1
	case numB && isString(a):
		return 1
	}
	sa, okA := asString(a)
	sb, okB := asString(b)
	if okA && okB {
		return naturalCompare(sa, sb)
	}
	return 0
}

func isString(v any) bool {
	switch v.(type) {
	case string, []byte:
		return true
	}
	return false
}
