package rcat

import "regexp"

// Marker recognition covers the synonym families seen in live redirect
// content, not just the canonical templates this bot writes: NLM redirects
// are tagged {{R from NLM}} or {{R from MEDLINE}}, ISO 4 ones appear with
// and without the space or an "abbreviation" suffix. The lists are the
// minimum observed set and are expected to grow from real content samples.
var (
	nlmMarkerPattern = regexp.MustCompile(`\{\{R from (MEDLINE|NLM)( abbreviation)?\}\}`)

	msnMarkerPattern = regexp.MustCompile(`\{\{R from MathSciNet( abbreviation)?\}\}`)

	iso4MarkerPattern = regexp.MustCompile(`\{\{R from ISO\s?4( abbreviation)?\}\}`)

	// allMarkersPattern erases every known category marker, including the
	// Bluebook ones this bot recognizes but never requires.
	allMarkersPattern = regexp.MustCompile(
		`\{\{R from (ISO4|ISO 4|Bluebook|bluebook|MEDLINE|NLM|MathSciNet)( abbreviation)?\}\}`)

	iso4ErasePattern = regexp.MustCompile(`\{\{R from ISO ?4( abbreviation)?\}\}`)
	nlmErasePattern  = regexp.MustCompile(`\{\{R from (NLM|MEDLINE)( abbreviation)?\}\}`)
	msnErasePattern  = regexp.MustCompile(`\{\{R from MathSciNet( abbreviation)?\}\}`)
)

// Scan returns the categories asserted by the markers present in content.
// Content is expected to be whitespace-normalized already.
func Scan(content string) Set {
	found := None
	if nlmMarkerPattern.MatchString(content) {
		found = found.Union(NLM)
	}
	if msnMarkerPattern.MatchString(content) {
		found = found.Union(MSN)
	}
	if iso4MarkerPattern.MatchString(content) {
		found = found.Union(ISO4)
	}
	return found
}

// EraseMarkers removes every known category marker from content.
func EraseMarkers(content string) string {
	return allMarkersPattern.ReplaceAllString(content, "")
}

// EraseCategoryMarkers removes the markers (including synonyms) of exactly
// the categories in s, leaving markers of other categories in place.
func EraseCategoryMarkers(content string, s Set) string {
	if s.Intersects(ISO4) {
		content = iso4ErasePattern.ReplaceAllString(content, "")
	}
	if s.Intersects(NLM) {
		content = nlmErasePattern.ReplaceAllString(content, "")
	}
	if s.Intersects(MSN) {
		content = msnErasePattern.ReplaceAllString(content, "")
	}
	return content
}
