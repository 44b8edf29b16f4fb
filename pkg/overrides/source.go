package overrides

// Fallback is the computed-abbreviation source the overrides layer on
// top of.
type Fallback interface {
	Abbrev(name, language string) (string, bool)
	AllAbbrevs(name string) map[string]string
	MatchingPatterns(name string) string
}

// Source resolves abbreviations from the override registry first and
// falls back to the computed cache.
type Source struct {
	registry *Registry
	fallback Fallback
}

// NewSource layers the registry over a fallback source.
func NewSource(registry *Registry, fallback Fallback) *Source {
	return &Source{registry: registry, fallback: fallback}
}

// Abbrev returns the curated abbreviation when one exists for the name
// and language, otherwise the computed one.
func (s *Source) Abbrev(name, language string) (string, bool) {
	if entry, ok := s.registry.Get(name); ok {
		if value, ok := entry.Abbrevs[language]; ok {
			return value, true
		}
	}
	return s.fallback.Abbrev(name, language)
}

// AllAbbrevs returns the computed abbreviations for every language,
// with curated ones replacing their computed counterparts.
func (s *Source) AllAbbrevs(name string) map[string]string {
	result := make(map[string]string)
	for language, value := range s.fallback.AllAbbrevs(name) {
		result[language] = value
	}
	if entry, ok := s.registry.Get(name); ok {
		for language, value := range entry.Abbrevs {
			result[language] = value
		}
	}
	return result
}

// MatchingPatterns returns the override's documented patterns when
// present, otherwise the cached ones.
func (s *Source) MatchingPatterns(name string) string {
	if entry, ok := s.registry.Get(name); ok && entry.Patterns != "" {
		return entry.Patterns
	}
	return s.fallback.MatchingPatterns(name)
}
