// Package hscode normalizes tariff classification codes and fills missing
// codes by asking a language model.
package hscode

import "strings"

const (
	// MinDigits is the shortest accepted code (HS subheading).
	MinDigits = 6
	// MaxDigits is the length of an Indonesian BTKI tariff line.
	MaxDigits = 10
)

// Normalize keeps the digits of s. Four or five digits (an HS heading)
// are right-padded with zeros to a full tariff line; longer runs are cut
// to MaxDigits. Anything shorter than MinDigits is rejected as "".
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) >= 4 && len(digits) < MinDigits {
		digits += strings.Repeat("0", MaxDigits-len(digits))
	}
	if len(digits) > MaxDigits {
		digits = digits[:MaxDigits]
	}
	if len(digits) < MinDigits {
		return ""
	}
	return digits
}

// Valid reports whether code already is an accepted classification.
func Valid(code string) bool {
	return code != "" && Normalize(code) == code
}

// PadTariffLine right-pads a code to a full ten-digit tariff line, the
// form CEISA sheets store. Empty input stays empty.
func PadTariffLine(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) < MaxDigits {
		digits += strings.Repeat("0", MaxDigits-len(digits))
	}
	return digits
}
