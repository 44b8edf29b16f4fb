package wikitext

import "regexp"

// disambigQualifierPattern matches a trailing parenthetical disambiguation
// qualifier naming a generic publication type, e.g. "Nature (journal)" or
// "Time (American magazines)". The word stems are matched case-sensitively;
// article titles use lowercase type words.
var disambigQualifierPattern = regexp.MustCompile(`\s*\(.*(ournal|agazine|eriodical|eview).*\)`)

// StripTitle removes a trailing disambiguation qualifier from an article
// title before it is used as a lookup key for abbreviation computation.
// Applying it to an already-stripped title is a no-op.
func StripTitle(title string) string {
	return disambigQualifierPattern.ReplaceAllString(title, "")
}
