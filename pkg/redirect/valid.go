package redirect

import (
	"regexp"

	"github.com/coolbeans/abbrevbot/pkg/rcat"
)

// Mode selects how the categories found on an existing redirect are checked
// against the required ones.
type Mode int

const (
	// Strict requires the existing categories to equal the required set.
	Strict Mode = iota

	// Lenient tolerates extra existing categories; every required one must
	// still be present.
	Lenient
)

var (
	// Cosmetic markers that say nothing about provenance and are ignored by
	// both checkers.
	printworthyPattern      = regexp.MustCompile(`\{\{R(EDIRECT)? (un)?printworthy\}\}`)
	printworthyShortPattern = regexp.MustCompile(`\{\{R(EDIRECT)? u?pw?\}\}`)

	// Markers that are neutral for equivalence but protected in the
	// replaceability check: a moved page or a section pointer carries
	// human-curated context.
	fromMovePattern  = regexp.MustCompile(`\{\{R from move\}\}`)
	toSectionPattern = regexp.MustCompile(`\{\{R to section\}\}`)

	// sectionFragmentPattern matches a section fragment inside the target
	// brackets ("...#History]]").
	sectionFragmentPattern = regexp.MustCompile(`#[^\[\]]*\]\]`)

	// emptyShellPattern matches a redirect shell wrapper left empty after
	// marker removal.
	emptyShellPattern = regexp.MustCompile(`\{\{REDIRECT (category )?shell\s*\|(1=)?\s*\}\}`)
)

// IsValid reports whether content is already a valid redirect to target
// carrying the required categories: after full normalization and marker
// extraction, nothing but the canonical directive may remain, and the
// extracted categories must satisfy the required set under the given mode.
func IsValid(content, target string, required rcat.Set, mode Mode) bool {
	content = normalizeContent(content)

	content = printworthyPattern.ReplaceAllString(content, "")
	content = printworthyShortPattern.ReplaceAllString(content, "")
	content = fromMovePattern.ReplaceAllString(content, "")
	content = toSectionPattern.ReplaceAllString(content, "")

	existing := rcat.Scan(content)
	content = rcat.EraseMarkers(content)

	// The leading "#REDIRECT[[" never matches here: its '#' is followed by
	// the directive keyword, not by "]]".
	content = sectionFragmentPattern.ReplaceAllString(content, "]]")
	content = emptyShellPattern.ReplaceAllString(content, "")

	if content != canonicalRedirect(target) {
		return false
	}
	if mode == Strict {
		return existing == required
	}
	return required.SubsetOf(existing)
}
