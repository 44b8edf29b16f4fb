// Package nlm parses the NLM/PubMed journal list (the J_Entrez.txt format
// published by NCBI) into ISSN-keyed abbreviation lookups.
package nlm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// recordSeparator divides journal records in the file.
const recordSeparator = "--------------------------------------------------------"

var (
	// abbrevPattern is the character class observed for MedAbbr/IsoAbbr
	// values; anything outside it indicates a corrupt download.
	abbrevPattern = regexp.MustCompile(`^[ 0-9A-Za-z&'(),.:/\-\[\]]+$`)

	// issnPattern matches print and online ISSNs.
	issnPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{3}[0-9xX]$`)

	// nlmIDPattern matches NLM identifiers, optionally suffixed A or R.
	nlmIDPattern = regexp.MustCompile(`^[0-9]+(A|R|)$`)
)

// Journal is one record from the NLM/PubMed journal list.
type Journal struct {
	JrID         int
	JournalTitle string
	// MedAbbr is the MEDLINE abbreviation, mostly dotless.
	MedAbbr string
	// IsoAbbr is almost always dotted but not reliably ISO 4.
	IsoAbbr    string
	ISSNOnline string
	ISSNPrint  string
	NlmID      string
}

// Parse reads journal records from the colon-delimited NLM list format.
func Parse(reader io.Reader) ([]Journal, error) {
	var journals []Journal
	fields := make(map[string]string)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line != recordSeparator {
			key, value, found := strings.Cut(line, ":")
			if !found {
				return nil, fmt.Errorf("malformed line %q", line)
			}
			fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
			continue
		}
		if len(fields) == 0 {
			continue
		}
		journal, err := journalFromFields(fields)
		if err != nil {
			return nil, err
		}
		journals = append(journals, journal)
		fields = make(map[string]string)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal list: %w", err)
	}
	return journals, nil
}

func journalFromFields(fields map[string]string) (Journal, error) {
	jrID, err := strconv.Atoi(fields["JrId"])
	if err != nil {
		return Journal{}, fmt.Errorf("record %q: bad JrId: %w", fields["JournalTitle"], err)
	}
	journal := Journal{
		JrID:         jrID,
		JournalTitle: fields["JournalTitle"],
		MedAbbr:      fields["MedAbbr"],
		IsoAbbr:      fields["IsoAbbr"],
		ISSNOnline:   fields["ISSN (Online)"],
		ISSNPrint:    fields["ISSN (Print)"],
		NlmID:        fields["NlmId"],
	}
	for _, abbrev := range []string{journal.MedAbbr, journal.IsoAbbr} {
		if abbrev != "" && !abbrevPattern.MatchString(abbrev) {
			return Journal{}, fmt.Errorf("record %q: unexpected abbreviation %q", journal.JournalTitle, abbrev)
		}
	}
	for _, issn := range []string{journal.ISSNOnline, journal.ISSNPrint} {
		if issn != "" && !issnPattern.MatchString(issn) {
			return Journal{}, fmt.Errorf("record %q: unexpected ISSN %q", journal.JournalTitle, issn)
		}
	}
	if !nlmIDPattern.MatchString(journal.NlmID) {
		return Journal{}, fmt.Errorf("record %q: unexpected NlmId %q", journal.JournalTitle, journal.NlmID)
	}
	return journal, nil
}

// ISSNMap builds a map from ISSN (print and online) to the MEDLINE
// abbreviation, skipping journals without one.
func ISSNMap(journals []Journal) map[string]string {
	result := make(map[string]string)
	for _, journal := range journals {
		if journal.MedAbbr == "" {
			continue
		}
		if journal.ISSNOnline != "" {
			result[journal.ISSNOnline] = journal.MedAbbr
		}
		if journal.ISSNPrint != "" {
			result[journal.ISSNPrint] = journal.MedAbbr
		}
	}
	return result
}

// LoadISSNMap parses the journal list file at path into an ISSN map.
func LoadISSNMap(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open NLM journal list: %w", err)
	}
	defer file.Close()

	journals, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse NLM journal list %s: %w", path, err)
	}
	return ISSNMap(journals), nil
}
