package utils

import "strings"

// DefaultUOM is the unit of measure used when none is given, and for counted components
const DefaultUOM = "EA"

// NormalizeUOM trims a unit of measure and falls back to DefaultUOM.
// Case is preserved: "FT" and "ft" stay distinct keys, as the pricing evaluator emitted them.
func NormalizeUOM(uom string) string {
	uom = strings.TrimSpace(uom)
	if uom == "" {
		return DefaultUOM
	}
	return uom
}

// NormalizeKey trims surrounding whitespace from an identifier-like value
func NormalizeKey(key string) string {
	return strings.TrimSpace(key)
}

// StringPtr returns a pointer to a trimmed copy of s, or nil when s is blank
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "" for nil
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
