package parser

import (
	"strconv"
	"strings"
)

// ParsePrice normalizes a visible price string ("1 234,56 ₽") into a float.
// It is the single source of numeric-price truth for both the listing and
// detail parsers; callers must not parse price text themselves.
func ParsePrice(text string) (float64, bool) {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9' || r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteByte('.')
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
