// Package wiki abstracts page access and applies redirect edits under
// per-run budgets.
package wiki

import (
	"fmt"
	"strings"

	"github.com/coolbeans/abbrevbot/pkg/state"
)

// PageStore is what the bot needs from the content repository.
type PageStore interface {
	// Page returns a page's content and whether any page exists at the
	// title, redirect or not.
	Page(title string) (content string, exists bool)

	// Save creates the page, or overwrites it when overwrite is set.
	Save(title, content, summary string, overwrite bool) error
}

// Snapshot serves page lookups from the scraped state, for offline runs
// where the content repository is not reachable. A title unknown to the
// snapshot is assumed free.
type Snapshot struct {
	store *state.Store
	saved []Edit
}

// Edit records one save applied to a snapshot.
type Edit struct {
	Title     string
	Content   string
	Summary   string
	Overwrite bool
}

// NewSnapshot wraps the scraped state as a page store.
func NewSnapshot(store *state.Store) *Snapshot {
	return &Snapshot{store: store}
}

// Page resolves a title against the scraped pages and their redirects.
func (s *Snapshot) Page(title string) (string, bool) {
	if _, ok := s.store.PageData(title); ok {
		// A scraped journal page. Its wikitext is not kept; callers
		// only check whether the content names their own title.
		return fmt.Sprintf("[[%s]]", title), true
	}
	for _, pageTitle := range s.store.PageTitles() {
		pageData, ok := s.store.PageData(pageTitle)
		if !ok {
			continue
		}
		if content, exists := pageData.Redirects[title]; exists {
			return content, true
		}
	}
	return "", false
}

// Save records the edit in memory and updates the snapshot's redirect
// content so later lookups see it.
func (s *Snapshot) Save(title, content, summary string, overwrite bool) error {
	if _, exists := s.Page(title); exists && !overwrite {
		return fmt.Errorf("page %q already exists", title)
	}
	s.saved = append(s.saved, Edit{
		Title:     title,
		Content:   content,
		Summary:   summary,
		Overwrite: overwrite,
	})
	for _, pageTitle := range s.store.PageTitles() {
		pageData, ok := s.store.PageData(pageTitle)
		if !ok {
			continue
		}
		if _, exists := pageData.Redirects[title]; exists || strings.Contains(content, "[["+pageTitle+"]]") {
			pageData.Redirects[title] = content
			s.store.SavePageData(pageTitle, pageData)
		}
	}
	return nil
}

// Edits returns the edits applied so far.
func (s *Snapshot) Edits() []Edit {
	return s.saved
}
