// Package abbrev defines the boundary to the external abbreviation engine
// and the tolerant comparison between human-entered and computed
// abbreviations.
package abbrev

import (
	"regexp"
	"strings"
)

var (
	// declaredQualifierPattern cuts a punctuation-delimited qualifier a human
	// may have kept in the infobox abbreviation ("J. Foo. - Ser. A").
	declaredQualifierPattern = regexp.MustCompile(`\s*[-(:–,].*`)

	// computedQualifierPattern cuts the dependent-title marker the
	// abbreviation engine emits after a colon.
	computedQualifierPattern = regexp.MustCompile(`\s*:.*`)
)

// IsSoftMatch reports whether a human-declared abbreviation can be
// considered correct against the computed one. Exact equality always
// matches; otherwise both are lowercased and compared after cutting the
// declared side at its first qualifier punctuation and the computed side at
// its dependent-title colon. No dot normalization is performed: the declared
// value stays authoritative, so "J Foo" never matches "J. Foo".
func IsSoftMatch(declared, computed string) bool {
	if declared == computed {
		return true
	}
	declared = strings.ToLower(declared)
	computed = strings.ToLower(computed)
	if declared == computed {
		return true
	}
	shortDeclared := declaredQualifierPattern.ReplaceAllString(declared, "")
	shortComputed := computedQualifierPattern.ReplaceAllString(computed, "")
	return shortDeclared == shortComputed
}

// Dotless returns the abbreviation with all abbreviation dots removed.
func Dotless(abbrev string) string {
	return strings.ReplaceAll(abbrev, ".", "")
}
