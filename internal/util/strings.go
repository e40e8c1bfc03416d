// Package util provides small helpers shared across rjy packages. It is kept
// dependency-free (no imports from other internal/* packages) so it can serve
// as a common foundation without circular imports.
package util

import "strings"

// DefaultString returns the fallback value if v is empty or consists entirely
// of whitespace; otherwise it returns v unchanged.
func DefaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// EmptyDash returns "-" when s is blank, for readable table output where an
// optional field has no value.
func EmptyDash(s string) string {
	return DefaultString(s, "-")
}
