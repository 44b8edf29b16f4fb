package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/coolbeans/abbrevbot/pkg/state"
)

func TestOverallStats(t *testing.T) {
	store, err := state.LoadOrInit(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	store.SavePageData("Journal of Foo", state.PageData{
		Infoboxes: []map[string]string{{"abbreviation": "J. Foo."}},
	})
	store.SavePageData("Acta Bar (journal)", state.PageData{
		Infoboxes: []map[string]string{{"abbreviation": "Acta Barbarica"}},
	})
	store.SavePageData("Empty Quarterly", state.PageData{
		Infoboxes: []map[string]string{{"abbreviation": ""}},
	})
	store.SavePageData("Uncomputed Review", state.PageData{
		Infoboxes: []map[string]string{{"abbreviation": "Uncomp. Rev."}},
	})
	store.SetAbbrev("Journal of Foo", "all", "J. Foo.")
	store.SetAbbrev("Acta Bar", "all", "Acta Bar.")

	stats := OverallStats(store)
	for _, line := range []string{
		"Out of 4 [[Template:Infobox journal|infobox journals]],",
		"1 have an empty ''abbreviation'' parameter,",
		"1 have the same as guessed by the bot,",
		"1 have something different.",
		"(1 have no computed abbreviation)",
	} {
		if !strings.Contains(stats, line) {
			t.Errorf("stats missing %q:\n%s", line, stats)
		}
	}
}
