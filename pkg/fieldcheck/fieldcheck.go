// Package fieldcheck holds the advisory predicates used by input-level
// validation. A failed check flags a value; it never prevents it from being
// stored.
package fieldcheck

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	phoneStrip   = regexp.MustCompile(`[\s\-()]`)
)

// ParseFloat reads the longest numeric prefix of s, ignoring leading
// whitespace, so "5mg" parses as 5 and "abc" does not parse. "Infinity" is
// accepted with an optional sign.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	if rest, neg := strings.CutPrefix(s, "-"); strings.HasPrefix(rest, "Infinity") {
		if neg {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
		return math.Inf(1), true
	}
	m := numberPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// Exponent overflow still yields ±Inf from ParseFloat.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// Required reports whether v is present: not nil, not a nil pointer and not
// the empty string.
func Required(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return !rv.IsNil()
	}
	return true
}

// Numeric reports whether s parses to a finite number.
func Numeric(s string) bool {
	f, ok := ParseFloat(s)
	return ok && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func Positive(v float64) bool { return v > 0 }

// InRange is inclusive at both ends.
func InRange(v, min, max float64) bool { return v >= min && v <= max }

func Email(s string) bool { return emailPattern.MatchString(s) }

// Phone accepts an optional leading + followed by up to 16 digits, the first
// non-zero, after spaces, dashes and parentheses are removed.
func Phone(s string) bool {
	return phonePattern.MatchString(phoneStrip.ReplaceAllString(s, ""))
}
