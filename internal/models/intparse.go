package models

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseLeadingInt reads an integer from the start of s the lenient way
// browsers and form handlers do: leading whitespace is skipped, an optional
// sign and a "0x" prefix are honoured, and parsing stops at the first byte
// that is not a digit. ok is false when no digit could be read.
func ParseLeadingInt(s string) (value int64, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	base := 10
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == 0 {
		return 0, false
	}

	parsed, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		parsed = -parsed
	}

	return parsed, true
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && c >= 'a' && c <= 'f':
		return true
	case base == 16 && c >= 'A' && c <= 'F':
		return true
	}
	return false
}
