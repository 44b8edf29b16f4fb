// Package msn parses the MathSciNet "new journals" CSV export into
// ISSN-keyed abbreviation lookups.
package msn

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	// abbrevPattern is the character class observed for MathSciNet
	// abbreviations.
	abbrevPattern = regexp.MustCompile(`^[ 0-9A-Za-z()\-./]+$`)

	issnPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{3}[0-9xX]$`)
)

// Journal is one row from the MathSciNet new-journals export.
type Journal struct {
	Year      string
	ISSN      string
	Abbrev    string
	Publisher string
	URL       string
}

// Parse reads journal rows from the CSV export. A leading header row is
// skipped.
func Parse(reader io.Reader) ([]Journal, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = 5

	var journals []Journal
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read journal row: %w", err)
		}
		if row[0] == "Year" {
			continue
		}
		journal := Journal{
			Year:      strings.TrimSpace(row[0]),
			ISSN:      strings.TrimSpace(row[1]),
			Abbrev:    strings.TrimSpace(row[2]),
			Publisher: strings.TrimSpace(row[3]),
			URL:       strings.TrimSpace(row[4]),
		}
		// Some rows have no ISSN yet; they are kept, just unreachable
		// through the ISSN map.
		if journal.ISSN != "" && !issnPattern.MatchString(journal.ISSN) {
			return nil, fmt.Errorf("row %q: unexpected ISSN %q", journal.Abbrev, journal.ISSN)
		}
		if !abbrevPattern.MatchString(journal.Abbrev) {
			return nil, fmt.Errorf("row %q: unexpected abbreviation characters", journal.Abbrev)
		}
		journals = append(journals, journal)
	}
	return journals, nil
}

// ISSNMap builds a map from ISSN to MathSciNet abbreviation. Journals
// without an ISSN are left out.
func ISSNMap(journals []Journal) map[string]string {
	result := make(map[string]string)
	for _, journal := range journals {
		if journal.ISSN == "" {
			continue
		}
		result[journal.ISSN] = journal.Abbrev
	}
	return result
}

// LoadISSNMap parses the CSV file at path into an ISSN map.
func LoadISSNMap(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MathSciNet journal list: %w", err)
	}
	defer file.Close()

	journals, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MathSciNet journal list %s: %w", path, err)
	}
	return ISSNMap(journals), nil
}
