// Package rcat models redirect-category (rcat) provenance markers: the
// closed set of categories a journal-abbreviation redirect can be tagged
// with, combinable as a bit set, and their rendering into redirect wikitext.
package rcat

import "strings"

// Set is a bit set over the redirect categories handled by the bot.
type Set uint8

const (
	// ISO4 marks a redirect derived from the ISO 4 abbreviation
	// (infobox parameter "abbreviation", templates {{R from ISO 4}} et al.).
	ISO4 Set = 1 << iota

	// NLM marks a redirect derived from the NLM/MEDLINE abbreviation
	// (infobox parameter "nlm", templates {{R from NLM}}, {{R from MEDLINE}}).
	NLM

	// MSN marks a redirect derived from the MathSciNet abbreviation
	// (infobox parameter "mathscinet", template {{R from MathSciNet}}).
	MSN
)

// None is the empty set; it denotes "no requirement".
const None Set = 0

// Union returns the set containing every category of s and other.
func (s Set) Union(other Set) Set {
	return s | other
}

// Intersects reports whether s and other share at least one category.
func (s Set) Intersects(other Set) bool {
	return s&other != 0
}

// SubsetOf reports whether every category of s is also in other.
func (s Set) SubsetOf(other Set) bool {
	return s&^other == 0
}

// IsEmpty reports whether s carries no categories.
func (s Set) IsEmpty() bool {
	return s == None
}

// Templates returns the canonical rcat template for each category of s, in
// the fixed rendering order ISO4, NLM, MSN. The order is load-bearing: it
// keeps generated redirect content stable across runs.
func (s Set) Templates() []string {
	var templates []string
	if s.Intersects(ISO4) {
		templates = append(templates, "{{R from ISO 4}}")
	}
	if s.Intersects(NLM) {
		templates = append(templates, "{{R from NLM}}")
	}
	if s.Intersects(MSN) {
		templates = append(templates, "{{R from MathSciNet}}")
	}
	return templates
}

// String returns a short diagnostic form like "ISO4|NLM".
func (s Set) String() string {
	if s.IsEmpty() {
		return "none"
	}
	var names []string
	if s.Intersects(ISO4) {
		names = append(names, "ISO4")
	}
	if s.Intersects(NLM) {
		names = append(names, "NLM")
	}
	if s.Intersects(MSN) {
		names = append(names, "MSN")
	}
	return strings.Join(names, "|")
}

// Content constructs the full wikitext of a redirect to target tagged with
// the categories of s. A single category goes on its own line; several are
// wrapped in a {{Redirect shell}}.
func Content(target string, s Set) string {
	result := "#REDIRECT [[" + target + "]]"
	templates := s.Templates()
	switch {
	case len(templates) == 1:
		result += "\n" + templates[0]
	case len(templates) > 1:
		result += "\n\n{{Redirect shell |\n  " + strings.Join(templates, "\n  ") + "\n}}"
	}
	return result
}
