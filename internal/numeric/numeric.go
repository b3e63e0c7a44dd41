// Package numeric parses the loosely formatted numbers found in cargo
// manifests ("1.234,50", "1,234.50", "12 KGS").
package numeric

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Decimal reads s accepting both European and US separators. When the
// last comma comes after the last dot the comma is the decimal mark and
// dots are thousands separators; otherwise commas are thousands
// separators. Trailing text is ignored and anything unparsable yields 0.
func Decimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	if lastComma := strings.LastIndex(s, ","); lastComma > strings.LastIndex(s, ".") {
		s = strings.ReplaceAll(s[:lastComma], ".", "") + "." + s[lastComma+1:]
	}
	return fromPrefix(strings.ReplaceAll(s, ",", ""))
}

// Parse is Decimal as a float64.
func Parse(s string) float64 {
	return Decimal(s).InexactFloat64()
}

// ParseComma treats every comma as a decimal mark, the way CEISA sheets
// exported with an Indonesian locale are written.
func ParseComma(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	return fromPrefix(strings.ReplaceAll(s, ",", ".")).InexactFloat64()
}

// FromAny coerces a decoded JSON value to a number. Strings go through
// Parse; booleans, nil and composite values yield 0.
func FromAny(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		return Parse(t.String())
	case string:
		return Parse(t)
	default:
		return 0
	}
}

func fromPrefix(s string) decimal.Decimal {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}
