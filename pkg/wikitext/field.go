// Package wikitext provides small, pure helpers for cleaning wiki markup:
// scalar field sanitization, article-title canonicalization, and light
// template parameter editing for {{infobox journal}} blocks.
package wikitext

import (
	"regexp"
	"strings"
)

var (
	// refMarkupPattern matches inline <ref>...</ref> citations embedded in
	// infobox field values.
	refMarkupPattern = regexp.MustCompile(`<ref>.*</ref>`)

	// htmlCommentPattern matches HTML-style comments left by editors.
	htmlCommentPattern = regexp.MustCompile(`<!--.*-->`)

	// brContinuationPattern matches a <br> (or <br/>) and everything after it
	// on the same line. Fields occasionally carry a second value after a
	// line break; only the first one is meaningful.
	brContinuationPattern = regexp.MustCompile(`<br\s*/?>.*`)

	// langWrapperPattern captures the payload of a {{lang|en|...}} wrapper.
	langWrapperPattern = regexp.MustCompile(`\{\{\s*lang\|\s*en\s*\|([^}]*)\}\}`)
)

// SanitizeField collapses a raw infobox field value to a clean scalar:
// reference markup and comments are removed, anything after a <br> is
// dropped, a {{lang|en|...}} wrapper is unwrapped, and surrounding
// whitespace is trimmed. Empty input yields empty output.
func SanitizeField(raw string) string {
	cleaned := refMarkupPattern.ReplaceAllString(raw, "")
	cleaned = htmlCommentPattern.ReplaceAllString(cleaned, "")
	cleaned = brContinuationPattern.ReplaceAllString(cleaned, "")
	if match := langWrapperPattern.FindStringSubmatch(cleaned); match != nil {
		cleaned = match[1]
	}
	return strings.TrimSpace(cleaned)
}
