package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeSubject reduces a subject area code or name to a canonical lookup
// key: lowercased with all whitespace removed, so "COM SCI", "com sci" and
// "ComSci" all collide.
func NormalizeSubject(s string) string {
	s = strings.ToLower(s)
	s = strings.Trim(s, " \n\t")
	s = whitespaceRegex.ReplaceAllString(s, "")
	return s
}

// CollapseWhitespace trims s and squashes inner whitespace runs to one space.
func CollapseWhitespace(s string) string {
	s = strings.TrimSpace(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SanitizeFilename replaces every non-alphanumeric character with an
// underscore so subject codes like "COM SCI" are safe as file names.
func SanitizeFilename(s string) string {
	return nonAlphanumeric.ReplaceAllString(s, "_")
}
