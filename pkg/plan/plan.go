// Package plan decides which redirects should exist for a journal page,
// classifies the existing ones, and flags anomalies for review.
package plan

import (
	"regexp"
	"sort"
	"strings"

	"github.com/coolbeans/abbrevbot/pkg/abbrev"
	"github.com/coolbeans/abbrevbot/pkg/rcat"
	"github.com/coolbeans/abbrevbot/pkg/redirect"
	"github.com/coolbeans/abbrevbot/pkg/report"
	"github.com/coolbeans/abbrevbot/pkg/wikitext"
)

// Page is one journal page as scraped: its infobox field maps and the
// content of every redirect pointing at it.
type Page struct {
	Title     string
	Infoboxes []map[string]string
	Redirects map[string]string
}

// AbbrevSource resolves computed abbreviations and the rule patterns
// that produced them.
type AbbrevSource interface {
	abbrev.Source
	MatchingPatterns(name string) string
}

// Databases are the external ISSN-to-abbreviation lookups.
type Databases struct {
	NLM map[string]string
	MSN map[string]string
}

var (
	// nlmAbbrevPattern is the character class accepted for the nlm
	// infobox parameter.
	nlmAbbrevPattern = regexp.MustCompile(`^[\w .,()\[\]:'/\-]+$`)

	// msnAbbrevPattern is the character class accepted for the
	// mathscinet infobox parameter.
	msnAbbrevPattern = regexp.MustCompile(`^[\w .():'/\-]+$`)
)

// Compute returns the redirects to page that should exist, mapping each
// title to its category set. The skip flag reports that some infobox
// could not contribute, so the result is not exhaustive and downstream
// checks for unexpected redirects must be suppressed.
func Compute(page Page, source AbbrevSource, dbs Databases, rep *report.Report) (map[string]rcat.Set, bool) {
	result := make(map[string]rcat.Set)
	skip := false
	for _, infobox := range page.Infoboxes {
		altName := wikitext.StripTitle(page.Title)
		infoboxTitle := wikitext.SanitizeField(infobox["title"])
		name := infoboxTitle
		if name == "" {
			name = altName
		}
		declared := wikitext.SanitizeField(infobox["abbreviation"])
		declaredDotless := abbrev.Dotless(declared)
		if declared == "" || declared == "no" {
			skip = true
			continue
		}
		if strings.Contains(firstRunes(declared, 5), ":") {
			rep.AddColon(report.ColonEntry{
				PageTitle:    page.Title,
				InfoboxTitle: infoboxTitle,
				Abbrev:       declared,
			})
			skip = true
			continue
		}
		hasISO4Redirect := false
		if content, exists := page.Redirects[declared]; exists {
			hasISO4Redirect = redirect.IsValid(content, page.Title, rcat.ISO4, redirect.Lenient)
		}
		language := abbrev.GuessLanguage(
			wikitext.SanitizeField(infobox["language"]),
			wikitext.SanitizeField(infobox["country"]))
		computed, ok := source.Abbrev(name, language)
		altComputed, altOK := source.Abbrev(altName, language)
		if !ok || !altOK {
			skip = true
			continue
		}
		if !abbrev.IsSoftMatch(declared, computed) &&
			!abbrev.IsSoftMatch(declared, altComputed) {
			otherComputed, found := otherLanguageMatch(source, name, declared)
			if found {
				rep.AddLanguageMismatch(report.LanguageMismatchEntry{
					PageTitle:        page.Title,
					InfoboxTitle:     infoboxTitle,
					Abbrev:           declared,
					Computed:         computed,
					OtherComputed:    otherComputed,
					InfoboxLanguage:  wikitext.SanitizeField(infobox["language"]),
					InfoboxCountry:   wikitext.SanitizeField(infobox["country"]),
					Language:         language,
					MatchingPatterns: source.MatchingPatterns(name),
					HasISO4Redirect:  hasISO4Redirect,
				})
			} else {
				rep.AddMismatch(report.MismatchEntry{
					PageTitle:        page.Title,
					InfoboxTitle:     infoboxTitle,
					Abbrev:           declared,
					Computed:         computed,
					Language:         language,
					MatchingPatterns: source.MatchingPatterns(name),
					HasISO4Redirect:  hasISO4Redirect,
				})
			}
			continue
		}
		if declaredDotless == declared {
			// Nothing was abbreviated, a redirect could be misleading.
			skip = true
			rep.AddTrivial(report.TrivialEntry{
				PageTitle:    page.Title,
				InfoboxTitle: infoboxTitle,
				Abbrev:       declared,
				Redirects:    page.Redirects,
			})
			continue
		}
		result[declared] |= rcat.ISO4
		result[declaredDotless] |= rcat.ISO4
	}
	for _, infobox := range page.Infoboxes {
		addDatabaseRedirects(infobox, dbs, result)
	}
	return result, skip
}

// addDatabaseRedirects adds NLM and MathSciNet redirects. A declared
// database parameter is trusted as-is; an ISSN lookup is asserted only
// when it coincides with the declared primary abbreviation, to avoid
// creating redirects from unverified synonyms.
func addDatabaseRedirects(infobox map[string]string, dbs Databases, result map[string]rcat.Set) {
	declared := wikitext.SanitizeField(infobox["abbreviation"])

	nlm := wikitext.SanitizeField(infobox["nlm"])
	if nlm != "" && nlmAbbrevPattern.MatchString(nlm) {
		result[nlm] |= rcat.NLM
	}
	if nlm == "" {
		nlm = lookupByISSN(dbs.NLM, infobox)
		if nlm != "" && nlm == abbrev.Dotless(declared) {
			result[nlm] |= rcat.NLM
		}
	}

	msn := wikitext.SanitizeField(infobox["mathscinet"])
	if msn != "" && msnAbbrevPattern.MatchString(msn) {
		result[msn] |= rcat.MSN
		result[abbrev.Dotless(msn)] |= rcat.MSN
	}
	if msn == "" {
		msn = lookupByISSN(dbs.MSN, infobox)
		if msn != "" && msn == declared {
			result[msn] |= rcat.MSN
			result[abbrev.Dotless(msn)] |= rcat.MSN
		}
	}
}

func lookupByISSN(issnMap map[string]string, infobox map[string]string) string {
	if issnMap == nil {
		return ""
	}
	if issn := infobox["issn"]; issn != "" {
		if found := issnMap[normalizeISSN(issn)]; found != "" {
			return found
		}
	}
	if eissn := infobox["eissn"]; eissn != "" {
		return issnMap[normalizeISSN(eissn)]
	}
	return ""
}

// normalizeISSN fixes the common en-dash typo in ISSN parameters.
func normalizeISSN(issn string) string {
	return strings.ReplaceAll(issn, "–", "-")
}

// otherLanguageMatch scans the computed abbreviations for every
// language and returns the first that soft-matches the declared one.
func otherLanguageMatch(source AbbrevSource, name, declared string) (string, bool) {
	all := source.AllAbbrevs(name)
	languages := make([]string, 0, len(all))
	for language := range all {
		languages = append(languages, language)
	}
	sort.Strings(languages)
	for _, language := range languages {
		if abbrev.IsSoftMatch(declared, all[language]) {
			return all[language], true
		}
	}
	return "", false
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// sortedTitles returns the map's keys in lexicographic order.
func sortedTitles(set map[string]rcat.Set) []string {
	titles := make([]string, 0, len(set))
	for title := range set {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}
