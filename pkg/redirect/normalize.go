// Package redirect decides whether existing redirect content already
// satisfies a requirement (equivalence) and whether non-conforming content
// may be overwritten without losing human-placed information
// (replaceability). Both decisions run the same ordered normalization
// pipeline first; the step order is semantically load-bearing, so the steps
// are kept as separate, individually testable functions.
package redirect

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// lineBreakPattern matches <br/>-style markup used instead of newlines.
	lineBreakPattern = regexp.MustCompile(`<br\s*/>`)

	// directiveSpacingPattern matches whitespace between the redirect
	// directive and its target brackets.
	directiveSpacingPattern = regexp.MustCompile(`#REDIRECT\s+\[\[`)
)

// normalizeContent applies the shared normalization steps, in order:
// character-reference and underscore normalization, line-break collapsing,
// incidental-whitespace removal, directive spacing, directive
// capitalization. Each step assumes the previous ones already ran.
func normalizeContent(content string) string {
	content = normalizeEntities(content)
	content = lineBreakPattern.ReplaceAllString(content, "\n")
	content = collapseIncidentalWhitespace(content)
	content = directiveSpacingPattern.ReplaceAllString(content, "#REDIRECT[[")
	content = normalizeDirectiveCase(content)
	return content
}

// normalizeEntities replaces HTML character references for ampersand and
// apostrophe with the literal characters and underscores with spaces.
func normalizeEntities(content string) string {
	content = strings.ReplaceAll(content, "&#38;", "&")
	content = strings.ReplaceAll(content, "&#39;", "'")
	content = strings.ReplaceAll(content, "_", " ")
	return content
}

// normalizeDirectiveCase folds the redirect keyword to one canonical case.
func normalizeDirectiveCase(content string) string {
	content = strings.ReplaceAll(content, "redirect", "REDIRECT")
	content = strings.ReplaceAll(content, "Redirect", "REDIRECT")
	return content
}

// collapseIncidentalWhitespace trims the string and removes every
// whitespace character that is not both preceded by a word character and
// followed by whitespace or a word character. Incidental spacing around
// markup is erased while spacing between words survives.
func collapseIncidentalWhitespace(s string) string {
	runes := []rune(strings.TrimSpace(s))
	var builder strings.Builder
	builder.Grow(len(runes))
	for i, r := range runes {
		if unicode.IsSpace(r) {
			afterWord := i > 0 && isWordRune(runes[i-1])
			beforeWordOrSpace := i+1 < len(runes) &&
				(unicode.IsSpace(runes[i+1]) || isWordRune(runes[i+1]))
			if !afterWord || !beforeWordOrSpace {
				continue
			}
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// canonicalRedirect is the fully reduced form both checkers compare
// against: the directive plus the target, nothing else.
func canonicalRedirect(target string) string {
	return "#REDIRECT[[" + collapseIncidentalWhitespace(target) + "]]"
}

// replaceFirst substitutes only the first match of pattern, mirroring a
// single-count regex substitution.
func replaceFirst(pattern *regexp.Regexp, s, replacement string) string {
	loc := pattern.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + replacement + s[loc[1]:]
}
