package plan

import (
	"testing"

	"github.com/coolbeans/abbrevbot/pkg/rcat"
	"github.com/coolbeans/abbrevbot/pkg/report"
)

// fakeSource serves computed abbreviations from a fixed map.
type fakeSource struct {
	// abbrevs maps name to language to computed abbreviation.
	abbrevs map[string]map[string]string
}

func (s *fakeSource) Abbrev(name, language string) (string, bool) {
	value, ok := s.abbrevs[name][language]
	return value, ok
}

func (s *fakeSource) AllAbbrevs(name string) map[string]string {
	return s.abbrevs[name]
}

func (s *fakeSource) MatchingPatterns(name string) string {
	return ""
}

func TestComputeMatchingAbbreviation(t *testing.T) {
	page := Page{
		Title: "Journal of Foo",
		Infoboxes: []map[string]string{
			{"abbreviation": "J. Foo."},
		},
	}
	source := &fakeSource{abbrevs: map[string]map[string]string{
		"Journal of Foo": {"all": "J. Foo."},
	}}
	rep := report.New()

	required, skip := Compute(page, source, Databases{}, rep)
	if skip {
		t.Error("Expected skip=false")
	}
	if len(required) != 2 {
		t.Fatalf("Expected 2 required redirects, got %v", required)
	}
	if required["J. Foo."] != rcat.ISO4 {
		t.Errorf("Expected dotted form tagged ISO4, got %v", required["J. Foo."])
	}
	if required["J Foo"] != rcat.ISO4 {
		t.Errorf("Expected dotless form tagged ISO4, got %v", required["J Foo"])
	}
	if len(rep.Mismatches) != 0 || len(rep.Trivial) != 0 {
		t.Error("Expected no anomalies")
	}
}

func TestComputeSkipCases(t *testing.T) {
	source := &fakeSource{abbrevs: map[string]map[string]string{
		"Journal of Foo": {"all": "J. Foo."},
		"Nature":         {"all": "Nature"},
	}}

	tests := []struct {
		name      string
		pageTitle string
		infobox   map[string]string
		checkRep  func(t *testing.T, rep *report.Report)
	}{
		{
			name:      "empty abbreviation",
			pageTitle: "Journal of Foo",
			infobox:   map[string]string{"abbreviation": ""},
		},
		{
			name:      "sentinel no",
			pageTitle: "Journal of Foo",
			infobox:   map[string]string{"abbreviation": "no"},
		},
		{
			name:      "early colon",
			pageTitle: "Journal of Foo",
			infobox:   map[string]string{"abbreviation": "Abc: Def"},
			checkRep: func(t *testing.T, rep *report.Report) {
				if len(rep.Colons) != 1 {
					t.Fatalf("Expected colon anomaly, got %+v", rep)
				}
				if rep.Colons[0].Abbrev != "Abc: Def" {
					t.Errorf("Unexpected colon entry %+v", rep.Colons[0])
				}
			},
		},
		{
			name:      "not yet computed",
			pageTitle: "Journal of Unknown",
			infobox:   map[string]string{"abbreviation": "J. Unkn."},
		},
		{
			name:      "trivial abbreviation",
			pageTitle: "Nature",
			infobox:   map[string]string{"abbreviation": "Nature"},
			checkRep: func(t *testing.T, rep *report.Report) {
				if len(rep.Trivial) != 1 {
					t.Fatalf("Expected trivial anomaly, got %+v", rep)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Page{
				Title:     tt.pageTitle,
				Infoboxes: []map[string]string{tt.infobox},
			}
			rep := report.New()
			required, skip := Compute(page, source, Databases{}, rep)
			if !skip {
				t.Error("Expected skip=true")
			}
			if len(required) != 0 {
				t.Errorf("Expected no required redirects, got %v", required)
			}
			if tt.checkRep != nil {
				tt.checkRep(t, rep)
			}
		})
	}
}

func TestComputeMismatchKinds(t *testing.T) {
	page := Page{
		Title: "Journal of Foo",
		Infoboxes: []map[string]string{
			{"abbreviation": "J. Foo"},
		},
	}

	t.Run("proper mismatch", func(t *testing.T) {
		source := &fakeSource{abbrevs: map[string]map[string]string{
			"Journal of Foo": {"all": "J. Bar."},
		}}
		rep := report.New()
		required, skip := Compute(page, source, Databases{}, rep)
		if skip {
			t.Error("Mismatch should not set skip")
		}
		if len(required) != 0 {
			t.Errorf("Expected no required redirects, got %v", required)
		}
		if len(rep.Mismatches) != 1 || len(rep.LanguageMismatch) != 0 {
			t.Fatalf("Expected one proper mismatch, got %+v", rep)
		}
		if rep.Mismatches[0].Computed != "J. Bar." {
			t.Errorf("Unexpected mismatch entry %+v", rep.Mismatches[0])
		}
	})

	t.Run("language mismatch", func(t *testing.T) {
		source := &fakeSource{abbrevs: map[string]map[string]string{
			"Journal of Foo": {"all": "J. Bar.", "eng": "J. Foo"},
		}}
		rep := report.New()
		_, skip := Compute(page, source, Databases{}, rep)
		if skip {
			t.Error("Mismatch should not set skip")
		}
		if len(rep.LanguageMismatch) != 1 || len(rep.Mismatches) != 0 {
			t.Fatalf("Expected one language mismatch, got %+v", rep)
		}
		if rep.LanguageMismatch[0].OtherComputed != "J. Foo" {
			t.Errorf("Unexpected language mismatch entry %+v", rep.LanguageMismatch[0])
		}
	})
}

func TestComputeDatabaseRedirects(t *testing.T) {
	source := &fakeSource{abbrevs: map[string]map[string]string{
		"Journal of Foo": {"all": "J. Foo."},
	}}

	t.Run("declared parameters trusted", func(t *testing.T) {
		page := Page{
			Title: "Journal of Foo",
			Infoboxes: []map[string]string{{
				"abbreviation": "J. Foo.",
				"nlm":          "J Foo",
				"mathscinet":   "J. Foo.",
			}},
		}
		rep := report.New()
		required, _ := Compute(page, source, Databases{}, rep)
		if required["J Foo"] != rcat.ISO4.Union(rcat.NLM).Union(rcat.MSN) {
			t.Errorf("Expected combined categories on dotless form, got %v", required["J Foo"])
		}
		if required["J. Foo."] != rcat.ISO4.Union(rcat.MSN) {
			t.Errorf("Expected MSN added to dotted form, got %v", required["J. Foo."])
		}
	})

	t.Run("ISSN lookup gated on agreement", func(t *testing.T) {
		dbs := Databases{NLM: map[string]string{
			"0000-0001": "J Foo",
			"0000-0002": "Totally Different",
		}}
		page := Page{
			Title: "Journal of Foo",
			Infoboxes: []map[string]string{{
				"abbreviation": "J. Foo.",
				"issn":         "0000-0001",
			}},
		}
		rep := report.New()
		required, _ := Compute(page, source, dbs, rep)
		if !required["J Foo"].Intersects(rcat.NLM) {
			t.Errorf("Expected NLM bit from agreeing lookup, got %v", required["J Foo"])
		}

		page.Infoboxes[0]["issn"] = "0000-0002"
		rep = report.New()
		required, _ = Compute(page, source, dbs, rep)
		if _, ok := required["Totally Different"]; ok {
			t.Error("Disagreeing lookup should not assert a redirect")
		}
	})
}

func noPages(title string) (string, bool) { return "", false }

func TestClassify(t *testing.T) {
	page := Page{
		Title: "Journal of Foo",
		Redirects: map[string]string{
			"J. Foo.":  "#REDIRECT [[Journal of Foo]]\n{{R from ISO 4}}",
			"J Foo":    "#REDIRECT [[Journal of Foo]] {{R from move}}",
			"Foo Jour": "#REDIRECT [[Journal of Foo]]\n{{R from abbreviation}}",
		},
	}
	required := map[string]rcat.Set{
		"J. Foo.":   rcat.ISO4,
		"J Foo":     rcat.ISO4,
		"Foo Jour":  rcat.ISO4,
		"New Title": rcat.ISO4,
	}
	rep := report.New()

	actions := Classify(page, required, false, noPages, rep)
	if len(actions) != 2 {
		t.Fatalf("Expected 2 actions, got %+v", actions)
	}
	// Sorted by title: the replacement comes first, then the creation.
	if actions[0].Title != "Foo Jour" || actions[0].Kind != ActionReplace {
		t.Errorf("Expected replacement of tolerated extra marker, got %+v", actions[0])
	}
	if actions[1].Title != "New Title" || actions[1].Kind != ActionCreate {
		t.Errorf("Expected creation at free title, got %+v", actions[1])
	}
	if actions[1].Content != "#REDIRECT[[Journal of Foo]]\n{{R from ISO 4}}" {
		t.Errorf("Unexpected creation content %q", actions[1].Content)
	}
	// The {{R from move}} redirect is protected and reported.
	if len(rep.ExistingRedirects) != 1 || rep.ExistingRedirects[0].RedirectTitle != "J Foo" {
		t.Fatalf("Expected protected redirect reported, got %+v", rep.ExistingRedirects)
	}
}

func TestClassifyOccupiedTitle(t *testing.T) {
	page := Page{Title: "Journal of Foo"}
	required := map[string]rcat.Set{"J. Foo.": rcat.ISO4}
	lookup := func(title string) (string, bool) {
		return "Some disambiguation page.", true
	}
	rep := report.New()

	actions := Classify(page, required, false, lookup, rep)
	if len(actions) != 0 {
		t.Errorf("Expected no actions, got %+v", actions)
	}
	if len(rep.ExistingPages) != 1 {
		t.Fatalf("Expected existing-page anomaly, got %+v", rep.ExistingPages)
	}
}

func TestClassifyUncertainISO4LeftAlone(t *testing.T) {
	// The redirect carries an ISO-4 tag we are not asserting ourselves;
	// replacing it would discard the tag, so it is left alone silently.
	page := Page{
		Title: "Journal of Foo",
		Redirects: map[string]string{
			"J Foo": "#REDIRECT [[Journal of Foo]]\n{{R from ISO 4}}",
		},
	}
	required := map[string]rcat.Set{"J Foo": rcat.NLM}
	rep := report.New()

	actions := Classify(page, required, false, noPages, rep)
	if len(actions) != 0 {
		t.Errorf("Expected no actions, got %+v", actions)
	}
	if len(rep.ExistingRedirects) != 0 {
		t.Errorf("Expected no report, got %+v", rep.ExistingRedirects)
	}
}

func TestSuperfluous(t *testing.T) {
	source := &fakeSource{abbrevs: map[string]map[string]string{}}
	required := map[string]rcat.Set{
		"J. Foo.": rcat.ISO4,
		"J Foo":   rcat.ISO4,
	}

	t.Run("near title reported", func(t *testing.T) {
		page := Page{
			Title: "Journal of Foo",
			Redirects: map[string]string{
				"Jour. Foo": "#REDIRECT[[Journal of Foo]]\n{{R from ISO 4}}",
			},
		}
		rep := report.New()
		Superfluous(page, required, false, source, rep)
		if len(rep.Superfluous) != 1 {
			t.Fatalf("Expected superfluous anomaly, got %+v", rep.Superfluous)
		}
		entry := rep.Superfluous[0]
		if entry.RedirectTitle != "Jour. Foo" {
			t.Errorf("Unexpected entry %+v", entry)
		}
		if entry.ExpectedTitle != "J. Foo." && entry.ExpectedTitle != "J Foo" {
			t.Errorf("Expected a nearest required title, got %q", entry.ExpectedTitle)
		}
	})

	t.Run("unabbreviated redirect listed as potential source", func(t *testing.T) {
		potentialSource := &fakeSource{abbrevs: map[string]map[string]string{
			"Journal of Bar": {"all": "Jour. Foo"},
		}}
		page := Page{
			Title: "Journal of Foo",
			Redirects: map[string]string{
				"Jour. Foo":      "#REDIRECT[[Journal of Foo]]\n{{R from ISO 4}}",
				"Journal of Bar": "#REDIRECT[[Journal of Foo]]",
			},
		}
		rep := report.New()
		Superfluous(page, required, false, potentialSource, rep)
		if len(rep.Superfluous) != 1 {
			t.Fatalf("Expected superfluous anomaly, got %+v", rep.Superfluous)
		}
		entry := rep.Superfluous[0]
		if len(entry.Potentials) != 1 || entry.Potentials[0] != "Journal of Bar" {
			t.Errorf("Expected [Journal of Bar] as potential source, got %+v", entry.Potentials)
		}
	})

	t.Run("distant title ignored", func(t *testing.T) {
		page := Page{
			Title: "Journal of Foo",
			Redirects: map[string]string{
				"Completely Unrelated Title": "#REDIRECT[[Journal of Foo]]\n{{R from ISO 4}}",
			},
		}
		rep := report.New()
		Superfluous(page, required, false, source, rep)
		if len(rep.Superfluous) != 0 {
			t.Errorf("Expected no anomaly for distant title, got %+v", rep.Superfluous)
		}
	})

	t.Run("suppressed when incomplete", func(t *testing.T) {
		page := Page{
			Title: "Journal of Foo",
			Redirects: map[string]string{
				"Jour. Foo": "#REDIRECT[[Journal of Foo]]\n{{R from ISO 4}}",
			},
		}
		rep := report.New()
		Superfluous(page, required, true, source, rep)
		if len(rep.Superfluous) != 0 {
			t.Errorf("Expected suppression with skip set, got %+v", rep.Superfluous)
		}
	})

	t.Run("expected substring skipped", func(t *testing.T) {
		page := Page{
			Title: "Journal of Foo",
			Redirects: map[string]string{
				"J. Foo. Ser. A": "#REDIRECT[[Journal of Foo]]\n{{R from ISO 4}}",
			},
		}
		rep := report.New()
		Superfluous(page, required, false, source, rep)
		if len(rep.Superfluous) != 0 {
			t.Errorf("Expected subtitle variation skipped, got %+v", rep.Superfluous)
		}
	})
}

func TestCheckDatabases(t *testing.T) {
	dbs := Databases{
		NLM: map[string]string{"0000-0001": "J Foo"},
		MSN: map[string]string{"0000-0001": "J. Foo."},
	}

	t.Run("declared parameter disagrees", func(t *testing.T) {
		rep := report.New()
		CheckDatabases("Journal of Foo", map[string]string{
			"abbreviation": "J. Foo.",
			"issn":         "0000-0001",
			"nlm":          "J Bar",
		}, dbs, rep)
		var nlmEntries []report.DatabaseMismatchEntry
		for _, entry := range rep.DatabaseMismatch {
			if entry.Database == "nlm" {
				nlmEntries = append(nlmEntries, entry)
			}
		}
		if len(nlmEntries) != 1 {
			t.Fatalf("Expected one nlm mismatch, got %+v", rep.DatabaseMismatch)
		}
		if nlmEntries[0].Declared != "J Bar" || nlmEntries[0].Expected != "J Foo" {
			t.Errorf("Unexpected entry %+v", nlmEntries[0])
		}
	})

	t.Run("primary abbreviation agrees modulo punctuation", func(t *testing.T) {
		rep := report.New()
		CheckDatabases("Journal of Foo", map[string]string{
			"abbreviation": "J. Foo.",
			"issn":         "0000-0001",
		}, dbs, rep)
		if len(rep.DatabaseMismatch) != 0 {
			t.Errorf("Expected agreement, got %+v", rep.DatabaseMismatch)
		}
	})

	t.Run("accents fold before comparing", func(t *testing.T) {
		rep := report.New()
		CheckDatabases("Journal of Foo", map[string]string{
			"abbreviation": "J. Fóo.",
			"issn":         "0000-0001",
		}, dbs, rep)
		if len(rep.DatabaseMismatch) != 0 {
			t.Errorf("Expected folded agreement, got %+v", rep.DatabaseMismatch)
		}
	})

	t.Run("primary abbreviation disagrees", func(t *testing.T) {
		rep := report.New()
		CheckDatabases("Journal of Foo", map[string]string{
			"abbreviation": "Quart. Rev.",
			"issn":         "0000-0001",
		}, dbs, rep)
		if len(rep.DatabaseMismatch) != 2 {
			t.Fatalf("Expected mismatch per database, got %+v", rep.DatabaseMismatch)
		}
	})

	t.Run("declared parameter settles the page", func(t *testing.T) {
		rep := report.New()
		CheckDatabases("Journal of Foo", map[string]string{
			"abbreviation": "J. Foo.",
			"issn":         "0000-0001",
			"nlm":          "J Bar",
			"mathscinet":   "J. Bar.",
		}, dbs, rep)
		if len(rep.DatabaseMismatch) != 1 {
			t.Fatalf("Expected only the first database checked, got %+v", rep.DatabaseMismatch)
		}
		if rep.DatabaseMismatch[0].Database != "nlm" {
			t.Errorf("Unexpected entry %+v", rep.DatabaseMismatch[0])
		}
	})

	t.Run("en dash in ISSN normalized", func(t *testing.T) {
		rep := report.New()
		CheckDatabases("Journal of Foo", map[string]string{
			"abbreviation": "J. Foo.",
			"issn":         "0000–0001",
			"nlm":          "J Bar",
		}, dbs, rep)
		if len(rep.DatabaseMismatch) == 0 {
			t.Error("Expected lookup through normalized ISSN")
		}
	})
}
