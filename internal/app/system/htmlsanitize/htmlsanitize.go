// Package htmlsanitize turns user-entered text into plain text before it is
// sent to the backend.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every element and attribute.
var strict = bluemonday.StrictPolicy()

// PlainText strips all markup from s, decodes entities and trims surrounding
// whitespace. The result is meant to be escaped again on output by
// html/template.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsBlank reports whether s has no visible text once markup is removed.
func IsBlank(s string) bool {
	return PlainText(s) == ""
}
