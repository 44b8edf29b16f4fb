package report

import (
	"fmt"
	"strings"
)

// WikiEscape escapes wikitext so it renders as raw code.
func WikiEscape(s string) string {
	replacer := strings.NewReplacer(
		"<", "&lt;",
		">", "&gt;",
		"{{", "{<nowiki />{",
		"}}", "}<nowiki />}",
		"[[", "[<nowiki />[",
		"]]", "]<nowiki />]",
		"|", "{{!}}",
	)
	return replacer.Replace(s)
}

// LinkNoRedir returns a no-redirect link to s, or just the escaped text
// when a link is impossible.
func LinkNoRedir(s string) string {
	escaped := WikiEscape(s)
	if escaped == "" || strings.Contains(escaped, "&") {
		return escaped
	}
	return "{{-r|" + escaped + "}}"
}

// WikiPre wraps s in a preformatted block.
func WikiPre(s string, nowiki bool) string {
	if nowiki {
		s = fmt.Sprintf("<nowiki>%s</nowiki>", s)
	}
	return fmt.Sprintf("<pre style='white-space: pre'>%s</pre>", s)
}

// WikiTable accumulates rows and renders them as wikicode.
type WikiTable struct {
	header []string
	rows   [][]string
}

// NewWikiTable creates a table with the given header cells.
func NewWikiTable(headerCells ...string) *WikiTable {
	return &WikiTable{header: headerCells}
}

// AppendRow appends a row to the table.
func (t *WikiTable) AppendRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// String returns wikicode for the full table.
func (t *WikiTable) String() string {
	var builder strings.Builder
	builder.WriteString("{| class='wikitable'\n")
	builder.WriteString("|-\n! " + strings.Join(t.header, " !! ") + "\n")
	for _, row := range t.rows {
		builder.WriteString("|-\n| " + strings.Join(row, " || ") + "\n")
	}
	builder.WriteString("|}\n")
	return builder.String()
}
