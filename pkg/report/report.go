// Package report accumulates anomalies found while checking journal
// abbreviations and renders them as wikitext reports.
package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ColonEntry is an infobox abbreviation with an early colon, skipped
// because it could be misread as an inter-wiki link prefix.
type ColonEntry struct {
	PageTitle    string
	InfoboxTitle string
	Abbrev       string
}

// TrivialEntry is a dotless infobox abbreviation, skipped because a
// redirect from an unabbreviated word could be misleading.
type TrivialEntry struct {
	PageTitle    string
	InfoboxTitle string
	Abbrev       string
	// Redirects maps existing redirect titles to their content.
	Redirects map[string]string
}

// ExistingPageEntry is a page occupying a wanted redirect title without
// redirecting to the page we came from.
type ExistingPageEntry struct {
	PageTitle     string
	RedirectTitle string
}

// ExistingRedirectEntry is a redirect with unexpected categories or
// parameters that the bot will not overwrite.
type ExistingRedirectEntry struct {
	PageTitle     string
	RedirectTitle string
	Content       string
}

// SuperfluousEntry is an existing redirect tagged as ISO-4 that the bot
// would not add.
type SuperfluousEntry struct {
	PageTitle     string
	RedirectTitle string
	Content       string
	// ExpectedTitle is the nearest redirect title the bot would add.
	ExpectedTitle string
	// Potentials are existing redirect titles that would abbreviate to
	// the questioned one.
	Potentials []string
}

// MismatchEntry is a declared abbreviation that does not soft-match the
// computed one for any language.
type MismatchEntry struct {
	PageTitle        string
	InfoboxTitle     string
	Abbrev           string
	Computed         string
	Language         string
	MatchingPatterns string
	HasISO4Redirect  bool
}

// LanguageMismatchEntry is a mismatch that would disappear if the
// language guess changed.
type LanguageMismatchEntry struct {
	PageTitle        string
	InfoboxTitle     string
	Abbrev           string
	Computed         string
	OtherComputed    string
	InfoboxLanguage  string
	InfoboxCountry   string
	Language         string
	MatchingPatterns string
	HasISO4Redirect  bool
}

// DatabaseMismatchEntry is a declared database abbreviation that
// disagrees with the external database's value for the journal's ISSN.
type DatabaseMismatchEntry struct {
	PageTitle    string
	InfoboxTitle string
	Abbrev       string
	Declared     string
	Expected     string
	ISSN         string
	Database     string
}

// Report accumulates anomalies for one batch run. Entries are
// append-only; rendering sorts copies and leaves the accumulator
// untouched.
type Report struct {
	Colons            []ColonEntry
	Trivial           []TrivialEntry
	ExistingPages     []ExistingPageEntry
	ExistingRedirects []ExistingRedirectEntry
	Superfluous       []SuperfluousEntry
	Mismatches        []MismatchEntry
	LanguageMismatch  []LanguageMismatchEntry
	DatabaseMismatch  []DatabaseMismatchEntry
}

// New creates an empty accumulator.
func New() *Report {
	return &Report{}
}

func (r *Report) AddColon(entry ColonEntry) {
	r.Colons = append(r.Colons, entry)
}

func (r *Report) AddTrivial(entry TrivialEntry) {
	r.Trivial = append(r.Trivial, entry)
}

func (r *Report) AddExistingPage(entry ExistingPageEntry) {
	r.ExistingPages = append(r.ExistingPages, entry)
}

func (r *Report) AddExistingRedirect(entry ExistingRedirectEntry) {
	r.ExistingRedirects = append(r.ExistingRedirects, entry)
}

func (r *Report) AddSuperfluous(entry SuperfluousEntry) {
	r.Superfluous = append(r.Superfluous, entry)
}

func (r *Report) AddMismatch(entry MismatchEntry) {
	r.Mismatches = append(r.Mismatches, entry)
}

func (r *Report) AddLanguageMismatch(entry LanguageMismatchEntry) {
	r.LanguageMismatch = append(r.LanguageMismatch, entry)
}

func (r *Report) AddDatabaseMismatch(entry DatabaseMismatchEntry) {
	r.DatabaseMismatch = append(r.DatabaseMismatch, entry)
}

// UnusualReport renders the report page on skipped or unusual journals
// and redirects.
func (r *Report) UnusualReport() string {
	var builder strings.Builder
	builder.WriteString("The following is a list of journals or redirects " +
		"that the bot skipped or considered unusual.\n\n")
	builder.WriteString(r.colonReport())
	builder.WriteString(r.trivialReport())
	builder.WriteString(r.existingRedirectReport())
	builder.WriteString(r.existingPageReport())
	builder.WriteString(r.superfluousReport())
	builder.WriteString(r.databaseMismatchReport())
	return builder.String()
}

// MismatchReport renders the short mismatch report, prefixed with the
// given overall statistics block.
func (r *Report) MismatchReport(overallStats string) string {
	return overallStats + r.shortMismatchReport()
}

// LongMismatchReport renders the long mismatch report including the
// language sub-report, prefixed with the given overall statistics block.
func (r *Report) LongMismatchReport(overallStats string) string {
	return overallStats + r.longMismatchReport() + r.languageMismatchReport()
}

func orUnknown(language string) string {
	if language == "" {
		return "??"
	}
	return language
}

// hideRepeatedTitle blanks the infobox title cell when it repeats the
// page title.
func hideRepeatedTitle(infoboxTitle, pageTitle string) string {
	if infoboxTitle == pageTitle {
		return ""
	}
	return infoboxTitle
}

const patternsColumn = " scope='column' style='width: 400px;' | matching LTWA patterns"

func (r *Report) shortMismatchReport() string {
	entries := sortedMismatches(r.Mismatches)
	var builder strings.Builder
	builder.WriteString("The first 50 mismatches:\n" +
		"{| class='wikitable'\n|-\n" +
		"!page title\n" +
		"!infobox title\n" +
		"!infobox abbrv\n" +
		"!bot guess\n" +
		"!validate\n" +
		"!lang\n" +
		"!" + patternsColumn + "\n")
	count := 0
	for _, entry := range entries {
		if entry.HasISO4Redirect {
			continue
		}
		count++
		if count > 50 {
			continue
		}
		infoboxTitle := hideRepeatedTitle(entry.InfoboxTitle, entry.PageTitle)
		builder.WriteString(fmt.Sprintf("|-\n{{ISO 4 mismatch"+
			" |pagename=%s"+
			" |title=%s"+
			" |abbreviation=%s"+
			" |bot-guess=%s"+
			"}}\n"+
			"|%s\n"+
			"|%s\n",
			entry.PageTitle,
			WikiEscape(infoboxTitle),
			WikiEscape(entry.Abbrev),
			WikiEscape(entry.Computed),
			orUnknown(entry.Language),
			WikiPre(entry.MatchingPatterns, false)))
	}
	builder.WriteString("|}\n")
	return builder.String()
}

func (r *Report) longMismatchReport() string {
	headers := []string{
		"page title",
		"infobox title",
		"infobox abbrv",
		"bot guess",
		"bot lang",
		patternsColumn,
	}
	plain := NewWikiTable(headers...)
	tagged := NewWikiTable(headers...)
	for i, entry := range sortedMismatches(r.Mismatches) {
		if i > 200 {
			break
		}
		row := []string{
			fmt.Sprintf("[[%s]]", entry.PageTitle),
			LinkNoRedir(hideRepeatedTitle(entry.InfoboxTitle, entry.PageTitle)),
			LinkNoRedir(entry.Abbrev),
			LinkNoRedir(entry.Computed),
			orUnknown(entry.Language),
			WikiPre(entry.MatchingPatterns, false),
		}
		if entry.HasISO4Redirect {
			tagged.AppendRow(row...)
		} else {
			plain.AppendRow(row...)
		}
	}
	return "== The first 200 mismatches ==\n" +
		plain.String() +
		"=== with existing redirect marked as ISO-4 ===\n" +
		"We separately list mismatches when there already is a redirect " +
		"categorized as ISO-4 (coming from the infobox abbrev), since it " +
		"was probably edited by a human with more care, and because " +
		"wrongly categorized redirects need to be fixed.\n" +
		tagged.String()
}

func (r *Report) languageMismatchReport() string {
	headers := []string{
		"page title",
		"infobox title",
		"infobox abbrv",
		"bot guess",
		"IJ lang",
		"IJ country",
		"bot lang",
		patternsColumn,
	}
	plain := NewWikiTable(headers...)
	tagged := NewWikiTable(headers...)
	entries := append([]LanguageMismatchEntry(nil), r.LanguageMismatch...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PageTitle != entries[j].PageTitle {
			return entries[i].PageTitle < entries[j].PageTitle
		}
		return entries[i].Abbrev < entries[j].Abbrev
	})
	for i, entry := range entries {
		if i > 50 {
			break
		}
		row := []string{
			fmt.Sprintf("[[%s]]", entry.PageTitle),
			LinkNoRedir(hideRepeatedTitle(entry.InfoboxTitle, entry.PageTitle)),
			LinkNoRedir(entry.Abbrev),
			LinkNoRedir(entry.Computed),
			WikiEscape(entry.InfoboxLanguage),
			WikiEscape(entry.InfoboxCountry),
			orUnknown(entry.Language),
			WikiPre(entry.MatchingPatterns, false),
		}
		if entry.HasISO4Redirect {
			tagged.AppendRow(row...)
		} else {
			plain.AppendRow(row...)
		}
	}
	return "== Wrong language rules? ==\n" +
		"First 50 mismatches where just changing the language between 'eng'" +
		" and 'all' would give a match (this affect which rules from the " +
		"[[LTWA]] are used). This means that either the bot wrongly guessed " +
		" the language to use (based on country and lang infobox params), or" +
		" that the editor applied non-English rules to an English title.\n" +
		plain.String() +
		"=== with existing redirects marked as ISO-4 ===\n" +
		tagged.String()
}

func (r *Report) colonReport() string {
	table := NewWikiTable("page title", "infobox title", "infobox abbrv")
	entries := append([]ColonEntry(nil), r.Colons...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PageTitle != entries[j].PageTitle {
			return entries[i].PageTitle < entries[j].PageTitle
		}
		return entries[i].Abbrev < entries[j].Abbrev
	})
	for _, entry := range entries {
		table.AppendRow(
			fmt.Sprintf("[[%s]]", entry.PageTitle),
			LinkNoRedir(hideRepeatedTitle(entry.InfoboxTitle, entry.PageTitle)),
			LinkNoRedir(entry.Abbrev))
	}
	return "== Abbreviations containing colons ==\n" +
		"(within first 4 characters; skipped by the bot for safety)\n" +
		table.String()
}

func (r *Report) trivialReport() string {
	table := NewWikiTable("page title",
		"infobox title",
		"infobox abbrv",
		"ISO-4 redirects")
	entries := append([]TrivialEntry(nil), r.Trivial...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PageTitle != entries[j].PageTitle {
			return entries[i].PageTitle < entries[j].PageTitle
		}
		return entries[i].Abbrev < entries[j].Abbrev
	})
	for _, entry := range entries {
		infoboxTitle := entry.InfoboxTitle
		if infoboxTitle == entry.PageTitle || infoboxTitle == entry.Abbrev {
			infoboxTitle = ""
		}
		var tagged []string
		redirectTitles := make([]string, 0, len(entry.Redirects))
		for redirectTitle := range entry.Redirects {
			redirectTitles = append(redirectTitles, redirectTitle)
		}
		sort.Strings(redirectTitles)
		for _, redirectTitle := range redirectTitles {
			if strings.Contains(entry.Redirects[redirectTitle], "ISO") {
				tagged = append(tagged, LinkNoRedir(redirectTitle))
			}
		}
		_, abbrevExists := entry.Redirects[entry.Abbrev]
		_, titleExists := entry.Redirects[infoboxTitle]
		if !abbrevExists && !titleExists && len(tagged) == 0 {
			continue
		}
		table.AppendRow(
			fmt.Sprintf("[[%s]]", entry.PageTitle),
			LinkNoRedir(infoboxTitle),
			LinkNoRedir(entry.Abbrev),
			strings.Join(tagged, ", "))
	}
	return "== Abbreviations without abbreviated words ==\n" +
		"(skipped by the bot for safety)\n" +
		"All the redirects marked as ISO-4 here may be wrong or confusing.\n" +
		table.String()
}

// sectionTargetPattern spots redirects to specific sections, which get
// their own handling and would only add noise here.
var sectionTargetPattern = regexp.MustCompile(`#`)

func (r *Report) existingRedirectReport() string {
	table := NewWikiTable("page title", "infobox abbrv", "redirect content")
	entries := append([]ExistingRedirectEntry(nil), r.ExistingRedirects...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PageTitle != entries[j].PageTitle {
			return entries[i].PageTitle < entries[j].PageTitle
		}
		return entries[i].RedirectTitle < entries[j].RedirectTitle
	})
	for _, entry := range entries {
		if len(entry.Content) > 5 && sectionTargetPattern.MatchString(entry.Content[5:]) {
			continue
		}
		table.AppendRow(
			fmt.Sprintf("[[%s]]", entry.PageTitle),
			LinkNoRedir(entry.RedirectTitle),
			WikiPre(entry.Content, true))
	}
	return "== Unusual redirects ==\n" +
		"Redirects (to the page we came from) that already exists " +
		"with some unexpected rcats or parameters.\n" +
		table.String()
}

func (r *Report) existingPageReport() string {
	table := NewWikiTable("page title", "r. from infobox abbrev")
	entries := append([]ExistingPageEntry(nil), r.ExistingPages...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PageTitle != entries[j].PageTitle {
			return entries[i].PageTitle < entries[j].PageTitle
		}
		return entries[i].RedirectTitle < entries[j].RedirectTitle
	})
	for _, entry := range entries {
		table.AppendRow(
			fmt.Sprintf("[[%s]]", entry.PageTitle),
			LinkNoRedir(entry.RedirectTitle))
	}
	return "== Unusual redirect pages ==\n" +
		"Pages that already exist, " +
		"redirecting to something unexpected or not a redirect at all " +
		" (may be wrong or may need a [[WP:HAT|hatnote]]):\n" +
		table.String()
}

func (r *Report) superfluousReport() string {
	table := NewWikiTable("page title",
		"the redirect",
		"infobox abbreviation",
		"existing redirects")
	entries := append([]SuperfluousEntry(nil), r.Superfluous...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PageTitle != entries[j].PageTitle {
			return entries[i].PageTitle < entries[j].PageTitle
		}
		return entries[i].RedirectTitle < entries[j].RedirectTitle
	})
	for _, entry := range entries {
		potentials := make([]string, 0, len(entry.Potentials))
		for _, title := range entry.Potentials {
			potentials = append(potentials, LinkNoRedir(title))
		}
		table.AppendRow(
			fmt.Sprintf("[[%s]]", entry.PageTitle),
			LinkNoRedir(entry.RedirectTitle),
			WikiEscape(entry.ExpectedTitle),
			strings.Join(potentials, ", "))
	}
	return "== Existing unexpected ISO-4 redirects ==\n" +
		"Redirects marked as ISO-4 that the bot would not add. " +
		"Very different ones are probably valid, like from former titles " +
		"or other language, so we skip those from the report. " +
		"Similar ones are probably a mistake. " +
		"For ''PLoS'' vs ''PLOS'' I'd say both are valid.\n" +
		"Existing redirects show titles that would abbreviate " +
		"to the questioned one.\n" +
		table.String()
}

func (r *Report) databaseMismatchReport() string {
	table := NewWikiTable("page title",
		"infobox abbrv",
		"infobox value",
		"database value",
		"ISSN",
		"database")
	entries := append([]DatabaseMismatchEntry(nil), r.DatabaseMismatch...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PageTitle != entries[j].PageTitle {
			return entries[i].PageTitle < entries[j].PageTitle
		}
		return entries[i].ISSN < entries[j].ISSN
	})
	for _, entry := range entries {
		table.AppendRow(
			fmt.Sprintf("[[%s]]", entry.PageTitle),
			LinkNoRedir(entry.Abbrev),
			WikiEscape(entry.Declared),
			WikiEscape(entry.Expected),
			WikiEscape(entry.ISSN),
			entry.Database)
	}
	return "== Abbreviations disagreeing with databases ==\n" +
		"Infobox database parameters (or primary abbreviations) that " +
		"disagree with the abbreviation the database lists for the " +
		"journal's ISSN.\n" +
		table.String()
}

func sortedMismatches(entries []MismatchEntry) []MismatchEntry {
	sorted := append([]MismatchEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PageTitle != sorted[j].PageTitle {
			return sorted[i].PageTitle < sorted[j].PageTitle
		}
		return sorted[i].Abbrev < sorted[j].Abbrev
	})
	return sorted
}
