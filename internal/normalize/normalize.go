// Package normalize provides pure field-level normalizers for raw input
// values. Every function is total: bad input maps to a documented
// fallback, never an error. Record-level policy (drop, dedup) lives in
// the pipeline engine, not here.
package normalize

import (
	"strconv"
	"strings"
	"time"
)

// Date layouts tried in order. Go's time.Parse tolerates missing leading
// zeros, so "2023-1-2" parses under the first layout as well.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
}

// Email trims and lowercases. Empty input stays empty; callers treat an
// empty email as invalid.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Phone strips every non-digit character and keeps the last 8 digits,
// the local subscriber-number convention for the feeds we ingest.
func Phone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	digits := b.String()
	if len(digits) > 8 {
		digits = digits[len(digits)-8:]
	}
	return digits
}

// Bool parses messy active-flag values. Blank means active (default-true
// policy); anything outside the truthy set is false.
func Bool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return true
	}
	switch s {
	case "1", "true", "t", "yes", "y":
		return true
	}
	return false
}

// Price strips currency markers and thousands separators, leaving a bare
// numeric string. Empty results become "0" so downstream decimal
// canonicalization always has something to parse.
func Price(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "HK$", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return "0"
	}
	return out
}

// Date parses against the known layouts in order and returns the ISO
// calendar date of the first match. Unparseable input returns "" and the
// owning record's mandatory-field policy decides what happens.
func Date(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// Text trims and substitutes a fallback for blank values.
func Text(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// Decimal canonicalizes a numeric string to exactly two fractional
// digits with half-up rounding. Unparseable input yields "0.00".
//
// The arithmetic is done on the digit string rather than via float64 so
// that values like "1.005" round up the way a decimal type would.
func Decimal(s string) string {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return "0.00"
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return "0.00"
	}

	fracPart += "000"
	cents := whole*100 + int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
	if fracPart[2] >= '5' {
		cents++
	}
	if neg && cents != 0 {
		return "-" + formatCents(cents)
	}
	return formatCents(cents)
}

// DecimalFromFloat formats a float with half-up rounding to two
// fractional digits, for derived values that start life as arithmetic
// rather than as input text.
func DecimalFromFloat(f float64) string {
	if f < 0 {
		return "-" + Decimal(strconv.FormatFloat(-f, 'f', 6, 64))
	}
	return Decimal(strconv.FormatFloat(f, 'f', 6, 64))
}

// PositiveInt parses an integer, tolerating surrounding spaces and a
// trailing decimal part. Unparseable or non-positive values fall back to
// def.
func PositiveInt(s string, def int) int {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return def
		}
		n = int(f)
	}
	if n < 1 {
		return def
	}
	return n
}

// Clamp bounds n to [lo, hi].
func Clamp(lo, hi, n int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Truncate limits s to max runes.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCents(cents int64) string {
	return strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
