package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/coolbeans/abbrevbot/pkg/abbrev"
	"github.com/coolbeans/abbrevbot/pkg/state"
	"github.com/coolbeans/abbrevbot/pkg/wikitext"
)

// OverallStats renders the statistics block on how declared infobox
// abbreviations compare with computed ones across all scraped pages.
func OverallStats(store *state.Store) string {
	total := 0
	withoutAbbrev := 0
	missingComputed := 0
	exactMatch := 0
	compatMatch := 0
	mismatch := 0
	for _, title := range store.PageTitles() {
		pageData, ok := store.PageData(title)
		if !ok {
			continue
		}
		for _, infobox := range pageData.Infoboxes {
			name := infobox["title"]
			if name == "" {
				name = wikitext.StripTitle(title)
			}
			total++
			declared := infobox["abbreviation"]
			if declared == "" {
				withoutAbbrev++
				continue
			}
			language := abbrev.GuessLanguage(infobox["language"], infobox["country"])
			computed, ok := store.Abbrev(name, language)
			if !ok {
				missingComputed++
				continue
			}
			computed = strings.TrimSpace(norm.NFC.String(computed))
			switch {
			case declared == computed:
				exactMatch++
			case abbrev.IsSoftMatch(strings.ToLower(declared), strings.ToLower(computed)):
				compatMatch++
			default:
				mismatch++
			}
		}
	}
	return fmt.Sprintf("Out of %d [[Template:Infobox journal|infobox journals]],\n"+
		"%d have an empty ''abbreviation'' parameter,\n"+
		"%d have the same as guessed by the bot,\n"+
		"%d have something different.\n"+
		"(%d have no computed abbreviation)\n\n",
		total,
		withoutAbbrev,
		exactMatch+compatMatch,
		mismatch,
		missingComputed)
}
