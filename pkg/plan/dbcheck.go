package plan

import (
	"regexp"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/coolbeans/abbrevbot/pkg/report"
	"github.com/coolbeans/abbrevbot/pkg/wikitext"
)

var nonLetterPattern = regexp.MustCompile(`[^A-Za-z]`)

// asciiFolder strips diacritics so that accented and plain spellings of
// the same abbreviation compare equal.
var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func asciiFold(s string) string {
	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// letterSkeleton reduces an abbreviation to bare ASCII letters for a
// punctuation- and accent-insensitive comparison.
func letterSkeleton(s string) string {
	return nonLetterPattern.ReplaceAllString(asciiFold(s), "")
}

// CheckDatabases compares an infobox's database parameters (or, when
// absent, its primary abbreviation) against what the external databases
// list for the journal's ISSNs, reporting disagreements.
func CheckDatabases(pageTitle string, infobox map[string]string, dbs Databases, rep *report.Report) {
	var issns []string
	if issn := infobox["issn"]; issn != "" {
		issns = append(issns, normalizeISSN(issn))
	}
	if eissn := infobox["eissn"]; eissn != "" {
		issns = append(issns, normalizeISSN(eissn))
	}
	infoboxTitle := wikitext.SanitizeField(infobox["title"])
	declared := wikitext.SanitizeField(infobox["abbreviation"])

	databases := []struct {
		name   string
		param  string
		byISSN map[string]string
	}{
		{"nlm", "nlm", dbs.NLM},
		{"mathscinet", "mathscinet", dbs.MSN},
	}
	for _, database := range databases {
		for _, issn := range issns {
			expected, found := database.byISSN[issn]
			if !found {
				continue
			}
			if declaredDB := infobox[database.param]; declaredDB != "" {
				if declaredDB != expected {
					rep.AddDatabaseMismatch(report.DatabaseMismatchEntry{
						PageTitle:    pageTitle,
						InfoboxTitle: infoboxTitle,
						Abbrev:       declared,
						Declared:     declaredDB,
						Expected:     expected,
						ISSN:         issn,
						Database:     database.name,
					})
				}
				// A declared parameter settles the page; the remaining
				// databases are not checked against it.
				return
			}
			if letterSkeleton(declared) != letterSkeleton(expected) {
				rep.AddDatabaseMismatch(report.DatabaseMismatchEntry{
					PageTitle:    pageTitle,
					InfoboxTitle: infoboxTitle,
					Abbrev:       declared,
					Expected:     expected,
					ISSN:         issn,
					Database:     database.name,
				})
				break
			}
		}
	}
}
