package plan

import (
	"strings"

	"github.com/coolbeans/abbrevbot/pkg/rcat"
	"github.com/coolbeans/abbrevbot/pkg/redirect"
	"github.com/coolbeans/abbrevbot/pkg/report"
)

// ActionKind says what to do with a redirect title.
type ActionKind int

const (
	// ActionCreate creates a redirect at a free title.
	ActionCreate ActionKind = iota
	// ActionReplace overwrites a replaceable redirect.
	ActionReplace
)

func (k ActionKind) String() string {
	if k == ActionCreate {
		return "create"
	}
	return "replace"
}

// Action is one redirect edit the classifier proposes.
type Action struct {
	Title   string
	Kind    ActionKind
	Cats    rcat.Set
	Content string
}

// PageLookup resolves a title to its current content. It reports
// whether any page exists there at all, redirect or not.
type PageLookup func(title string) (content string, exists bool)

// Classify compares the required redirects against the existing ones
// and proposes creations and replacements. Redirects that are neither
// valid nor replaceable are reported, unless skip suppresses it.
func Classify(page Page, required map[string]rcat.Set, skip bool, lookup PageLookup, rep *report.Report) []Action {
	var actions []Action
	for _, title := range sortedTitles(required) {
		cats := required[title]
		content := rcat.Content(page.Title, cats)
		existing, isRedirect := page.Redirects[title]
		if !isRedirect {
			if occupying, exists := lookup(title); exists {
				if title == page.Title {
					continue
				}
				if !strings.Contains(occupying, page.Title) {
					rep.AddExistingPage(report.ExistingPageEntry{
						PageTitle:     page.Title,
						RedirectTitle: title,
					})
				}
				continue
			}
			actions = append(actions, Action{
				Title:   title,
				Kind:    ActionCreate,
				Cats:    cats,
				Content: content,
			})
			continue
		}
		if redirect.IsValid(existing, page.Title, cats, redirect.Lenient) {
			continue
		}
		if redirect.IsReplaceable(existing, page.Title, cats.Union(rcat.ISO4)) {
			// Replaceable only by also discarding an ISO-4 marker we
			// are not sure about: leave it alone, without reporting.
			if !cats.Intersects(rcat.ISO4) {
				continue
			}
			actions = append(actions, Action{
				Title:   title,
				Kind:    ActionReplace,
				Cats:    cats,
				Content: content,
			})
			continue
		}
		if !skip {
			rep.AddExistingRedirect(report.ExistingRedirectEntry{
				PageTitle:     page.Title,
				RedirectTitle: title,
				Content:       existing,
			})
		}
	}
	return actions
}
