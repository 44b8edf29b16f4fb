package abbrev

import "strings"

// Source yields abbreviations computed by the external abbreviation engine.
// A miss is not an error: the engine runs out of band and fills results in
// later, so callers defer work on titles it has not reached yet.
type Source interface {
	// Abbrev returns the computed abbreviation of name under the given
	// language rule set ("eng", "all"). ok is false when the engine has not
	// computed it yet; implementations then remember name for the next
	// engine run.
	Abbrev(name, language string) (computed string, ok bool)

	// AllAbbrevs returns every computed abbreviation of name, keyed by
	// language rule set. Empty when nothing has been computed.
	AllAbbrevs(name string) map[string]string
}

// englishCountries are the country values for which an unspecified or
// English language parameter means English-only abbreviation rules.
var englishCountries = []string{
	"United States", "U.S.", "U. S.", "USA", "U.S.A", "US",
	"United Kingdom", "UK", "England", "UK & USA",
	"New Zealand", "Australia",
}

// GuessLanguage picks the language rule set for a journal title from its
// declared language and country: "eng" when the title is assumed English,
// "all" otherwise. Titles from anglophone countries with an absent or
// English language parameter are assumed English; note some non-English
// titles declare language=English because they publish in English only.
func GuessLanguage(language, country string) string {
	if strings.TrimSpace(language) == "" || strings.HasPrefix(language, "English") {
		for _, c := range englishCountries {
			if country == c {
				return "eng"
			}
		}
	}
	return "all"
}
