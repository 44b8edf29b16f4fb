package plan

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/coolbeans/abbrevbot/pkg/abbrev"
	"github.com/coolbeans/abbrevbot/pkg/rcat"
	"github.com/coolbeans/abbrevbot/pkg/report"
	"github.com/coolbeans/abbrevbot/pkg/wikitext"
)

// superfluousDistanceLimit is the largest edit distance at which an
// unexpected ISO-4 redirect is still considered close enough to be a
// likely mistake. Anything farther is assumed to come from a former
// title and is ignored.
const superfluousDistanceLimit = 8

var (
	iso4TagPattern    = regexp.MustCompile(`R from ISO 4`)
	formerNamePattern = regexp.MustCompile(`from former name`)

	// subtitlePattern cuts the dependent title off an abbreviation.
	subtitlePattern = regexp.MustCompile(`\s*[:(].*`)
)

// Superfluous reports existing ISO-4-tagged redirects that the
// requirement calculator did not predict. It is suppressed when skip is
// set, since the requirement set is then known to be incomplete.
func Superfluous(page Page, required map[string]rcat.Set, skip bool, source AbbrevSource, rep *report.Report) {
	if skip || len(required) == 0 {
		return
	}

	expected := make([]string, 0, len(required))
	for title := range required {
		expected = append(expected, abbrev.Dotless(title))
	}
	// Abbreviations of former titles are expected too; dotless redirect
	// titles are potential unabbreviated sources.
	type potential struct {
		computed string
		title    string
	}
	var potentials []potential
	for _, redirectTitle := range sortedRedirectTitles(page.Redirects) {
		content := page.Redirects[redirectTitle]
		isFormerName := formerNamePattern.MatchString(content)
		if !isFormerName && strings.Contains(redirectTitle, ".") {
			continue
		}
		titleDotless := abbrev.Dotless(redirectTitle)
		for _, language := range []string{"eng", "all"} {
			computed, _ := source.Abbrev(wikitext.StripTitle(redirectTitle), language)
			computed = abbrev.Dotless(computed)
			if computed == "" || computed == titleDotless {
				continue
			}
			if isFormerName {
				expected = append(expected, computed)
			} else {
				potentials = append(potentials, potential{computed, redirectTitle})
			}
		}
	}

	requiredTitles := sortedTitles(required)
	for _, redirectTitle := range sortedRedirectTitles(page.Redirects) {
		content := page.Redirects[redirectTitle]
		if !iso4TagPattern.MatchString(content) {
			continue
		}
		if _, isRequired := required[redirectTitle]; isRequired {
			continue
		}
		// Titles containing an expected abbreviation as a substring are
		// assumed to be valid variations on a subtitle.
		titleDotless := abbrev.Dotless(redirectTitle)
		isExpected := false
		for _, computed := range expected {
			if strings.Contains(titleDotless, subtitlePattern.ReplaceAllString(computed, "")) {
				isExpected = true
				break
			}
		}
		if isExpected {
			continue
		}
		// Other existing titles that would abbreviate to this one are
		// candidates for what the tag actually meant.
		var candidates []string
		for _, p := range potentials {
			if abbrev.IsSoftMatch(titleDotless, p.computed) {
				candidates = append(candidates, p.title)
			}
		}
		candidates = dedupeSorted(candidates)

		bestTitle := ""
		bestDistance := len([]rune(redirectTitle))
		for _, requiredTitle := range requiredTitles {
			distance := levenshtein.Distance(redirectTitle, requiredTitle, nil)
			if distance < bestDistance {
				bestDistance = distance
				bestTitle = requiredTitle
			}
		}
		if bestDistance <= superfluousDistanceLimit {
			rep.AddSuperfluous(report.SuperfluousEntry{
				PageTitle:     page.Title,
				RedirectTitle: redirectTitle,
				Content:       content,
				ExpectedTitle: bestTitle,
				Potentials:    candidates,
			})
		}
	}
}

func sortedRedirectTitles(redirects map[string]string) []string {
	titles := make([]string, 0, len(redirects))
	for title := range redirects {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

func dedupeSorted(values []string) []string {
	sort.Strings(values)
	result := values[:0]
	for i, value := range values {
		if i == 0 || value != values[i-1] {
			result = append(result, value)
		}
	}
	return result
}
