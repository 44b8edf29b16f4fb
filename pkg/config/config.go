// Package config loads the bot's run profile from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile holds everything a batch run needs: where the scraped state
// and database dumps live, and how many edits the run may apply.
type Profile struct {
	// StateFile is the path of the scraped-state JSON file.
	StateFile string `yaml:"state_file"`

	// NLMJournalList is the path of the NLM/PubMed journal list dump.
	NLMJournalList string `yaml:"nlm_journal_list,omitempty"`

	// MSNJournalList is the path of the MathSciNet new-journals CSV.
	MSNJournalList string `yaml:"msn_journal_list,omitempty"`

	// OverridesDir is the directory of curated override YAML files.
	OverridesDir string `yaml:"overrides_dir,omitempty"`

	// ReportDir is where rendered reports are written.
	ReportDir string `yaml:"report_dir,omitempty"`

	// Simulate disables all page saves when true. Defaults to true so
	// that a misconfigured run cannot edit anything.
	Simulate *bool `yaml:"simulate,omitempty"`

	// EditLimits caps the number of pages saved per limit type in one
	// run. The "default" type applies when no other is named.
	EditLimits map[string]int `yaml:"edit_limits,omitempty"`
}

// DefaultProfile returns the profile used when no config file is given.
func DefaultProfile() *Profile {
	return &Profile{
		StateFile:  "abbrevBotState.json",
		ReportDir:  "reports",
		EditLimits: map[string]int{"default": 100},
	}
}

// Load reads and validates a profile from a YAML file, filling in
// defaults for omitted fields.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	profile := DefaultProfile()
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Validate checks the profile for mistakes that would otherwise only
// surface mid-run.
func (p *Profile) Validate() error {
	if p.StateFile == "" {
		return fmt.Errorf("config: state_file is required")
	}
	for limitType, limit := range p.EditLimits {
		if limit < 0 {
			return fmt.Errorf("config: edit limit %q is negative", limitType)
		}
	}
	return nil
}

// SimulateEdits reports whether the run must not save any pages.
func (p *Profile) SimulateEdits() bool {
	return p.Simulate == nil || *p.Simulate
}
