package redirect

import (
	"regexp"
	"strings"

	"github.com/coolbeans/abbrevbot/pkg/rcat"
)

var (
	// otherReasonPattern matches the family of rcats that give a redirect
	// an independent reason to exist. One such marker is erasable — the
	// redirect still reduces to something the bot understands — but two or
	// more mean enough human rationale that overwriting would destroy it.
	otherReasonPattern = regexp.MustCompile(
		`\{\{R from (ISO ?4|ISO 4 abbreviation` +
			`|abb[a-z]*|shortening|initialism` +
			`|short name|alternat[a-z]* spelling` +
			`|systematic abbreviation|other capitalisation` +
			`|other spelling)\}\}`)

	// Shell wrappers, erased when empty. Both template names occur.
	redirectShellPattern = regexp.MustCompile(`\{\{REDIRECT shell\s*\|(1=)?\s*\}\}`)
	categoryShellPattern = regexp.MustCompile(`\{\{REDIRECT category shell\s*\|(1=)?\s*\}\}`)
)

// bareAbbreviationMarker is a legacy authoring bug: the rcat text pasted
// without its braces. At most one occurrence is tolerated.
const bareAbbreviationMarker = "R from abbreviation"

// IsReplaceable reports whether content may be overwritten with generated
// redirect content without discarding information a human placed there.
// Markers of the required categories and cosmetic markers are erasable, as
// is at most one independent-reason marker and one bare legacy marker;
// anything else remaining — a move marker, a section fragment, rcat
// parameters — protects the redirect from automatic rewriting.
func IsReplaceable(content, target string, required rcat.Set) bool {
	content = normalizeContent(content)

	content = printworthyPattern.ReplaceAllString(content, "")
	content = printworthyShortPattern.ReplaceAllString(content, "")

	content = rcat.EraseCategoryMarkers(content, required)

	content = replaceFirst(otherReasonPattern, content, "")
	content = strings.Replace(content, bareAbbreviationMarker, "", 1)

	content = redirectShellPattern.ReplaceAllString(content, "")
	content = categoryShellPattern.ReplaceAllString(content, "")

	return content == canonicalRedirect(target)
}
