// Package fill finds infoboxes whose empty abbreviation parameter can
// be filled automatically.
package fill

import (
	"regexp"

	"github.com/coolbeans/abbrevbot/pkg/abbrev"
	"github.com/coolbeans/abbrevbot/pkg/state"
	"github.com/coolbeans/abbrevbot/pkg/wikitext"
)

// articlePattern strips leading-article words so that a title equal to
// its abbreviation up to "a/the" still counts as trivial to fill.
var articlePattern = regexp.MustCompile(`(The|the|A|a)\s+`)

// Suggestion proposes filling one infobox's abbreviation parameter.
type Suggestion struct {
	PageTitle string
	// Infobox is the index of the infobox on the page.
	Infobox int
	Abbrev  string
}

// Suggestions scans the scraped state for infoboxes with an empty
// abbreviation where the computed abbreviation is the title itself
// (possibly minus articles), the only case safe to fill unattended.
func Suggestions(store *state.Store, source abbrev.Source) []Suggestion {
	var suggestions []Suggestion
	for _, pageTitle := range store.PageTitles() {
		pageData, ok := store.PageData(pageTitle)
		if !ok {
			continue
		}
		title := wikitext.StripTitle(pageTitle)
		for i, infobox := range pageData.Infoboxes {
			if wikitext.SanitizeField(infobox["abbreviation"]) != "" {
				continue
			}
			if infoboxTitle := infobox["title"]; infoboxTitle != "" && infoboxTitle != title {
				continue
			}
			language := abbrev.GuessLanguage(
				wikitext.SanitizeField(infobox["language"]),
				wikitext.SanitizeField(infobox["country"]))
			computed, ok := source.Abbrev(title, language)
			if !ok {
				continue
			}
			if computed != articlePattern.ReplaceAllString(title, "") {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				PageTitle: pageTitle,
				Infobox:   i,
				Abbrev:    computed,
			})
		}
	}
	return suggestions
}

// Apply writes the suggested abbreviation into the page's wikitext. It
// reports false when the infobox cannot be found.
func Apply(pageText string, suggestion Suggestion) (string, bool) {
	return wikitext.FillAbbreviation(pageText, suggestion.Infobox, suggestion.Abbrev)
}
