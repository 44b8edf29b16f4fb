package wikitext

import (
	"strings"
)

// infoboxName is the template name whose parameters this package edits.
// Matching is case-insensitive, so "Infobox Journal" variants are found too.
const infoboxName = "infobox journal"

// TemplateSpan marks the byte range of a balanced {{...}} template,
// end-exclusive.
type TemplateSpan struct {
	Start int
	End   int
}

// FindInfoboxJournals returns the spans of all {{infobox journal}} templates
// in pageText, in document order. Unbalanced braces terminate the scan.
func FindInfoboxJournals(pageText string) []TemplateSpan {
	var spans []TemplateSpan
	lower := strings.ToLower(pageText)
	offset := 0
	for {
		idx := strings.Index(lower[offset:], "{{")
		if idx < 0 {
			break
		}
		start := offset + idx
		end := matchBraces(pageText, start)
		if end < 0 {
			break
		}
		body := lower[start+2 : end-2]
		nameEnd := len(body)
		if p := strings.IndexAny(body, "|}"); p >= 0 {
			nameEnd = p
		}
		if strings.TrimSpace(body[:nameEnd]) == infoboxName {
			spans = append(spans, TemplateSpan{Start: start, End: end})
		}
		offset = start + 2
	}
	return spans
}

// matchBraces returns the end-exclusive index of the {{...}} opened at start,
// or -1 if the braces never balance.
func matchBraces(text string, start int) int {
	depth := 0
	i := start
	for i+1 < len(text) {
		switch {
		case text[i] == '{' && text[i+1] == '{':
			depth++
			i += 2
		case text[i] == '}' && text[i+1] == '}':
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return -1
}

// FillAbbreviation returns pageText with the abbreviation parameter of the
// infoboxIndex-th {{infobox journal}} set to abbrev. An existing parameter
// keeps its surrounding spacing; a missing one is appended before the
// closing braces. The second return reports whether an infobox was edited.
func FillAbbreviation(pageText string, infoboxIndex int, abbrev string) (string, bool) {
	spans := FindInfoboxJournals(pageText)
	if infoboxIndex < 0 || infoboxIndex >= len(spans) {
		return pageText, false
	}
	span := spans[infoboxIndex]

	if vStart, vEnd, ok := paramValueSpan(pageText, span, "abbreviation"); ok {
		oldValue := pageText[vStart:vEnd]
		leading := oldValue[:len(oldValue)-len(strings.TrimLeft(oldValue, " \t"))]
		trailing := oldValue[len(strings.TrimRight(oldValue, " \t\n")):]
		if strings.TrimSpace(oldValue) == "" {
			leading = " "
			trailing = ""
			if strings.HasSuffix(oldValue, "\n") {
				trailing = "\n"
			}
		}
		return pageText[:vStart] + leading + abbrev + trailing + pageText[vEnd:], true
	}

	insertAt := span.End - 2
	return pageText[:insertAt] + "| abbreviation = " + abbrev + "\n" + pageText[insertAt:], true
}

// paramValueSpan locates the value of a top-level template parameter by name.
// Returned bounds cover everything between the '=' and the next top-level '|'
// or the closing braces.
func paramValueSpan(text string, span TemplateSpan, name string) (int, int, bool) {
	depth := 0
	segStart := -1
	i := span.Start + 2
	limit := span.End - 2
	var starts []int
	for i < limit {
		switch {
		case i+1 < limit && text[i] == '{' && text[i+1] == '{':
			depth++
			i += 2
		case i+1 < limit && text[i] == '}' && text[i+1] == '}':
			depth--
			i += 2
		case i+1 < limit && text[i] == '[' && text[i+1] == '[':
			depth++
			i += 2
		case i+1 < limit && text[i] == ']' && text[i+1] == ']':
			depth--
			i += 2
		case text[i] == '|' && depth == 0:
			starts = append(starts, i)
			i++
		default:
			i++
		}
	}
	starts = append(starts, limit)
	for idx := 0; idx+1 < len(starts); idx++ {
		segStart = starts[idx] + 1
		segEnd := starts[idx+1]
		segment := text[segStart:segEnd]
		eq := strings.IndexByte(segment, '=')
		if eq < 0 {
			continue
		}
		if strings.TrimSpace(segment[:eq]) == name {
			return segStart + eq + 1, segEnd, true
		}
	}
	return 0, 0, false
}
