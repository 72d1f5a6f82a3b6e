package parser

import (
	"regexp"
	"strconv"
	"strings"
)

const maskChar = "X"

// MaskAccountNumber replaces all but the last 4 characters with X. Numbers of 4 characters
// or fewer are returned as is.
func MaskAccountNumber(raw string) string {
	raw = strings.TrimSpace(raw)
	r := []rune(raw)
	if len(r) <= 4 {
		return raw
	}
	return strings.Repeat(maskChar, len(r)-4) + string(r[len(r)-4:])
}

// ParseAmount reads "$1,234.56" style values.
func ParseAmount(s string) (float64, bool) {
	s = strings.NewReplacer(",", "", "$", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseCount reads a non-negative integer counter cell.
func ParseCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

var reColumnGap = regexp.MustCompile(`\s{2,}|\t`)

// firstColumn cuts a layout line at the first wide gap, dropping whatever sits in the next column.
func firstColumn(s string) string {
	return strings.TrimSpace(reColumnGap.Split(strings.TrimSpace(s), 2)[0])
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
