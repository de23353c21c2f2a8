package utils

import (
	"strings"
	"unicode/utf8"
)

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// NormalizeWhitespace replaces multiple whitespace with single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateString truncates str to maxLength runes and appends "..." when cut.
func (s *StringHelper) TruncateString(str string, maxLength int) string {
	cut := TruncateRunes(str, maxLength)
	if len(cut) == len(str) {
		return str
	}

	return cut + "..."
}

// TruncateRunes returns at most n runes of str without splitting a UTF-8 sequence.
func TruncateRunes(str string, n int) string {
	if n <= 0 {
		return ""
	}

	offset := 0
	for i := 0; i < n && offset < len(str); i++ {
		_, size := utf8.DecodeRuneInString(str[offset:])
		offset += size
	}

	return str[:offset]
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
