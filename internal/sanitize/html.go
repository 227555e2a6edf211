// Package sanitize cleans user-supplied free text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plain = bluemonday.StrictPolicy()
	rich  = bluemonday.UGCPolicy()
)

// Text reduces input to trimmed plain text for titles, locations, names and
// comments. Entities are decoded again because the value is served as JSON.
func Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(plain.Sanitize(input)))
}

// HTML keeps basic formatting in event descriptions and drops scripts,
// handlers and unsafe link schemes.
func HTML(input string) string {
	return strings.TrimSpace(rich.Sanitize(input))
}

// OptionalText is Text for nullable fields. Blank results become nil.
func OptionalText(input *string) *string {
	return optional(input, Text)
}

// OptionalHTML is HTML for nullable fields. Blank results become nil.
func OptionalHTML(input *string) *string {
	return optional(input, HTML)
}

func optional(input *string, clean func(string) string) *string {
	if input == nil {
		return nil
	}
	if out := clean(*input); out != "" {
		return &out
	}
	return nil
}
