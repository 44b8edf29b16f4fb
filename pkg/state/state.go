// Package state persists the bot's working data between runs: scraped page
// snapshots and the abbreviation cache shared with the external abbreviation
// engine. The engine runs out of band against the same JSON file — names the
// bot could not resolve are recorded so the next engine run computes them.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// matchingPatternsKey stores the rule patterns the engine matched while
// abbreviating a name. It lives alongside the per-language abbreviations and
// must be excluded when listing them.
const matchingPatternsKey = "matchingPatterns"

// Languages the engine is asked to compute for every recorded name: "eng"
// restricts to English title-word rules, "all" uses every rule set.
var defaultLanguages = []string{"all", "eng"}

// PageData is one scraped page: its raw infobox field maps and existing
// redirect contents keyed by redirect title.
type PageData struct {
	Infoboxes []map[string]string `json:"infoboxes"`
	Redirects map[string]string   `json:"redirects"`
}

// fileState is the on-disk schema. It is shared with the abbreviation
// engine, so field names are fixed.
type fileState struct {
	Pages   map[string]PageData          `json:"pages"`
	Abbrevs map[string]map[string]string `json:"abbrevs"`
}

// Store holds the bot state loaded from a JSON file.
type Store struct {
	path string
	data fileState
}

// LoadOrInit reads the state file at path, or initializes an empty state
// when the file does not exist yet. A file that exists but cannot be read
// or parsed is an error: silently replacing it would lose the abbreviation
// cache.
func LoadOrInit(path string) (*Store, error) {
	store := &Store{
		path: path,
		data: fileState{
			Pages:   make(map[string]PageData),
			Abbrevs: make(map[string]map[string]string),
		},
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &store.data); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	if store.data.Pages == nil {
		store.data.Pages = make(map[string]PageData)
	}
	if store.data.Abbrevs == nil {
		store.data.Abbrevs = make(map[string]map[string]string)
	}
	return store, nil
}

// Save writes the state back to the file it was loaded from.
func (store *Store) Save() error {
	raw, err := json.Marshal(store.data)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}
	if err := os.WriteFile(store.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", store.path, err)
	}
	return nil
}

// Path returns the backing file path.
func (store *Store) Path() string {
	return store.path
}

// Dump returns the state as indented JSON, for inspection.
func (store *Store) Dump() (string, error) {
	raw, err := json.MarshalIndent(store.data, "", "\t")
	if err != nil {
		return "", fmt.Errorf("failed to serialize state: %w", err)
	}
	return string(raw), nil
}

// SavePageData stores the scraped data of one page.
func (store *Store) SavePageData(title string, page PageData) {
	store.data.Pages[title] = page
}

// PageData returns the saved data of one page.
func (store *Store) PageData(title string) (PageData, bool) {
	page, ok := store.data.Pages[title]
	return page, ok
}

// PageTitles returns every saved page title, sorted for deterministic
// batch ordering.
func (store *Store) PageTitles() []string {
	titles := make([]string, 0, len(store.data.Pages))
	for title := range store.data.Pages {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// RecordName registers a name for abbreviation computation by the external
// engine, without overwriting anything the engine already filled in.
func (store *Store) RecordName(name string, languages ...string) {
	entry, ok := store.data.Abbrevs[name]
	if !ok {
		entry = make(map[string]string)
		store.data.Abbrevs[name] = entry
		for _, language := range defaultLanguages {
			entry[language] = ""
		}
		entry[matchingPatternsKey] = ""
	}
	for _, language := range languages {
		if _, ok := entry[language]; !ok {
			entry[language] = ""
		}
	}
}

// Abbrev returns the computed abbreviation for name under the given
// language rule set. On a miss the name is recorded for the next engine run
// and ok is false. Implements abbrev.Source.
func (store *Store) Abbrev(name, language string) (string, bool) {
	if computed := store.data.Abbrevs[name][language]; computed != "" {
		return computed, true
	}
	store.RecordName(name, language)
	return "", false
}

// AllAbbrevs returns every computed abbreviation for name keyed by language
// rule set, excluding engine bookkeeping. Implements abbrev.Source.
func (store *Store) AllAbbrevs(name string) map[string]string {
	result := make(map[string]string)
	for language, computed := range store.data.Abbrevs[name] {
		if language == matchingPatternsKey || computed == "" {
			continue
		}
		result[language] = computed
	}
	return result
}

// MatchingPatterns returns the engine's rule-pattern trace for name, empty
// when not computed yet.
func (store *Store) MatchingPatterns(name string) string {
	return store.data.Abbrevs[name][matchingPatternsKey]
}

// PendingNames returns names recorded for computation that still have no
// abbreviation in any language, sorted.
func (store *Store) PendingNames() []string {
	var names []string
	for name, entry := range store.data.Abbrevs {
		pending := true
		for language, computed := range entry {
			if language != matchingPatternsKey && computed != "" {
				pending = false
				break
			}
		}
		if pending {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SetAbbrev stores a computed abbreviation. The bot itself never computes
// abbreviations; this is for tests and for importing engine output.
func (store *Store) SetAbbrev(name, language, computed string) {
	store.RecordName(name)
	store.data.Abbrevs[name][language] = computed
}

// SetMatchingPatterns stores the engine's rule-pattern trace for name.
func (store *Store) SetMatchingPatterns(name, patterns string) {
	store.RecordName(name)
	store.data.Abbrevs[name][matchingPatternsKey] = patterns
}
