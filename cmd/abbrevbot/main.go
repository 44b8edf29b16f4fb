package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coolbeans/abbrevbot/pkg/config"
	"github.com/coolbeans/abbrevbot/pkg/fetch"
	"github.com/coolbeans/abbrevbot/pkg/fill"
	"github.com/coolbeans/abbrevbot/pkg/msn"
	"github.com/coolbeans/abbrevbot/pkg/nlm"
	"github.com/coolbeans/abbrevbot/pkg/overrides"
	"github.com/coolbeans/abbrevbot/pkg/plan"
	"github.com/coolbeans/abbrevbot/pkg/report"
	"github.com/coolbeans/abbrevbot/pkg/state"
	"github.com/coolbeans/abbrevbot/pkg/wiki"
	"github.com/coolbeans/abbrevbot/pkg/wikitext"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "abbrevbot",
		Short: "Journal abbreviation redirect checker",
		Long: `Abbrevbot keeps journal abbreviation redirects consistent with the
abbreviations computed from journal titles.

It consumes scraped {{infobox journal}} data and externally computed
abbreviations, then:
  - Decides which abbreviation redirects should exist and with which
    redirect categories
  - Validates and fixes existing redirects where that is safe
  - Reports mismatches and unusual redirects for human review
  - Fills trivially derivable abbreviation parameters`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("config", "", "Run profile YAML file")

	rootCmd.AddCommand(fetchdataCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(fixpagesCmd())
	rootCmd.AddCommand(fillCmd())
	rootCmd.AddCommand(stateCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadProfile(cmd *cobra.Command) (*config.Profile, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.DefaultProfile(), nil
	}
	return config.Load(path)
}

// loadSource opens the state file and layers any curated overrides on
// top of it.
func loadSource(profile *config.Profile) (*state.Store, plan.AbbrevSource, error) {
	store, err := state.LoadOrInit(profile.StateFile)
	if err != nil {
		return nil, nil, err
	}
	if profile.OverridesDir == "" {
		return store, store, nil
	}
	registry, err := overrides.NewRegistryWithDirectory(profile.OverridesDir)
	if err != nil {
		return nil, nil, err
	}
	return store, overrides.NewSource(registry, store), nil
}

func loadDatabases(profile *config.Profile) (plan.Databases, error) {
	var dbs plan.Databases
	if profile.NLMJournalList != "" {
		issnMap, err := nlm.LoadISSNMap(profile.NLMJournalList)
		if err != nil {
			return dbs, err
		}
		dbs.NLM = issnMap
	}
	if profile.MSNJournalList != "" {
		issnMap, err := msn.LoadISSNMap(profile.MSNJournalList)
		if err != nil {
			return dbs, err
		}
		dbs.MSN = issnMap
	}
	fmt.Printf("Loaded databases nlm=%d msn=%d\n", len(dbs.NLM), len(dbs.MSN))
	return dbs, nil
}

func fetchdataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetchdata",
		Short: "Download the NLM and MathSciNet journal lists",
		Long: `Download the NLM catalog dump and the MathSciNet serials list to
the paths named in the profile. Local copies younger than --max-age
are kept as is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			nlmURL, _ := cmd.Flags().GetString("nlm-url")
			msnURL, _ := cmd.Flags().GetString("msn-url")
			maxAge, _ := cmd.Flags().GetDuration("max-age")
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			client := fetch.NewClient(fetch.Options{MaxAge: maxAge})
			downloads := []struct {
				name string
				url  string
				path string
			}{
				{"nlm", nlmURL, profile.NLMJournalList},
				{"msn", msnURL, profile.MSNJournalList},
			}
			for _, download := range downloads {
				if download.path == "" {
					fmt.Printf("Skipping %s, no local path in the profile.\n", download.name)
					continue
				}
				size, skipped, err := client.Download(cmd.Context(), download.url, download.path)
				if err != nil {
					return err
				}
				if skipped {
					fmt.Printf("Kept fresh %s (%d bytes).\n", download.path, size)
				} else {
					fmt.Printf("Downloaded %s (%d bytes).\n", download.path, size)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("nlm-url", "https://ftp.ncbi.nlm.nih.gov/pubmed/J_Entrez.txt", "NLM catalog dump URL")
	cmd.Flags().String("msn-url", "https://mathscinet.ams.org/msnhtml/serials.csv", "MathSciNet serials list URL")
	cmd.Flags().Duration("max-age", 24*time.Hour, "Keep local copies younger than this")
	return cmd
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest scraped journal pages into the state file",
		Long: `Ingest a JSON dump of scraped journal pages into the state file.

The dump maps page titles to their infobox field maps and the content
of redirects pointing at them:

  {"Journal of Foo": {"infoboxes": [{"abbreviation": "J. Foo."}],
                      "redirects": {"J. Foo.": "#REDIRECT[[Journal of Foo]]"}}}

Journal names found in the dump are queued for the external
abbreviation engine.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			if source == "" {
				return fmt.Errorf("--source flag is required")
			}
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			store, err := state.LoadOrInit(profile.StateFile)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(source)
			if err != nil {
				return fmt.Errorf("failed to read dump: %w", err)
			}
			var pages map[string]state.PageData
			if err := json.Unmarshal(data, &pages); err != nil {
				return fmt.Errorf("failed to parse dump: %w", err)
			}

			for title, pageData := range pages {
				store.SavePageData(title, pageData)
				store.RecordName(wikitext.StripTitle(title))
				for _, infobox := range pageData.Infoboxes {
					if infoboxTitle := infobox["title"]; infoboxTitle != "" {
						store.RecordName(infoboxTitle)
					}
				}
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Printf("Ingested %d pages into %s\n", len(pages), profile.StateFile)
			if pending := store.PendingNames(); len(pending) > 0 {
				fmt.Printf("%d names pending abbreviation computation\n", len(pending))
			}
			return nil
		},
	}
	cmd.Flags().String("source", "", "JSON dump of scraped pages")
	return cmd
}

// runBatch processes every scraped page: computes required redirects,
// classifies existing ones, and accumulates anomalies. Actions are
// applied through the applier when one is given.
func runBatch(store *state.Store, source plan.AbbrevSource, dbs plan.Databases,
	applier *wiki.Applier, snapshot *wiki.Snapshot, rep *report.Report) error {
	for i, title := range store.PageTitles() {
		pageData, ok := store.PageData(title)
		if !ok {
			continue
		}
		page := plan.Page{
			Title:     title,
			Infoboxes: pageData.Infoboxes,
			Redirects: pageData.Redirects,
		}
		fmt.Printf("--Checking:\t%d\t%s\n", i, title)
		for _, infobox := range page.Infoboxes {
			plan.CheckDatabases(title, infobox, dbs, rep)
		}
		required, skip := plan.Compute(page, source, dbs, rep)
		actions := plan.Classify(page, required, skip, snapshot.Page, rep)
		for _, action := range actions {
			fmt.Printf("--%s redirect from [[%s]] to [[%s]]:\n%s\n-----\n",
				action.Kind, action.Title, title, action.Content)
			if applier == nil {
				continue
			}
			summary := "Creating redirect from standard abbreviation."
			if action.Kind == plan.ActionReplace {
				summary = "Marking standard abbrev rcat."
			}
			saved, err := applier.TrySave(action.Title, action.Content, summary,
				action.Kind == plan.ActionReplace, wiki.DefaultLimitType)
			if err != nil {
				return err
			}
			if !saved {
				fmt.Printf("--Skipped saving [[%s]] (simulating or budget reached).\n", action.Title)
			}
		}
		plan.Superfluous(page, required, skip, source, rep)
	}
	return nil
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Check all pages and write the review reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			printOnly, _ := cmd.Flags().GetBool("print")
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			return runReport(profile, printOnly)
		},
	}
	cmd.Flags().Bool("print", false, "Print reports instead of writing files")
	return cmd
}

func runReport(profile *config.Profile, printOnly bool) error {
	store, source, err := loadSource(profile)
	if err != nil {
		return err
	}
	dbs, err := loadDatabases(profile)
	if err != nil {
		return err
	}
	rep := report.New()
	snapshot := wiki.NewSnapshot(store)
	if err := runBatch(store, source, dbs, nil, snapshot, rep); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}

	stats := report.OverallStats(store)
	rendered := map[string]string{
		"unusual.wiki":         rep.UnusualReport(),
		"mismatches.wiki":      rep.MismatchReport(stats),
		"mismatches-long.wiki": rep.LongMismatchReport(stats),
	}
	if printOnly {
		for _, name := range []string{"unusual.wiki", "mismatches.wiki", "mismatches-long.wiki"} {
			fmt.Println(rendered[name])
		}
		return nil
	}
	if err := os.MkdirAll(profile.ReportDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	for name, content := range rendered {
		path := filepath.Join(profile.ReportDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write report %s: %w", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

func fixpagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixpages",
		Short: "Create and fix abbreviation redirects",
		Long: `Create missing abbreviation redirects and replace the safely
replaceable ones, within the profile's edit budget. Unless the profile
sets simulate to false, nothing is saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			store, source, err := loadSource(profile)
			if err != nil {
				return err
			}
			dbs, err := loadDatabases(profile)
			if err != nil {
				return err
			}
			rep := report.New()
			snapshot := wiki.NewSnapshot(store)
			applier := wiki.NewApplier(snapshot, profile.EditLimits, profile.SimulateEdits())
			if err := runBatch(store, source, dbs, applier, snapshot, rep); err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			for limitType, count := range applier.Done() {
				fmt.Printf("Applied %d %q edits.\n", count, limitType)
			}
			if profile.SimulateEdits() {
				fmt.Println("Simulation only, nothing was saved.")
			}
			return nil
		},
	}
	return cmd
}

func fillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "List infoboxes whose abbreviation can be filled automatically",
		Long: `List infoboxes with an empty abbreviation parameter where the
computed abbreviation equals the journal title (possibly minus a
leading article), the only case safe to fill unattended.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			store, source, err := loadSource(profile)
			if err != nil {
				return err
			}
			suggestions := fill.Suggestions(store, source)
			for _, suggestion := range suggestions {
				fmt.Printf("--Filling [[%s]] infobox %d with abbrev %q\n",
					suggestion.PageTitle, suggestion.Infobox, suggestion.Abbrev)
			}
			fmt.Printf("%d fillable infoboxes.\n", len(suggestions))
			return store.Save()
		},
	}
	return cmd
}

func stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect the scraped state file",
	}
	cmd.AddCommand(stateDumpCmd())
	cmd.AddCommand(statePendingCmd())
	return cmd
}

func stateDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the state file as indented JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			store, err := state.LoadOrInit(profile.StateFile)
			if err != nil {
				return err
			}
			dump, err := store.Dump()
			if err != nil {
				return err
			}
			fmt.Println(dump)
			return nil
		},
	}
}

func statePendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List names awaiting abbreviation computation",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			store, err := state.LoadOrInit(profile.StateFile)
			if err != nil {
				return err
			}
			pending := store.PendingNames()
			for _, name := range pending {
				fmt.Println(name)
			}
			fmt.Printf("%d names pending.\n", len(pending))
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the reports whenever curated overrides change",
		RunE: func(cmd *cobra.Command, args []string) error {
			debounce, _ := cmd.Flags().GetDuration("debounce")
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			if profile.OverridesDir == "" {
				return fmt.Errorf("watch requires overrides_dir in the profile")
			}
			registry, err := overrides.NewRegistryWithDirectory(profile.OverridesDir)
			if err != nil {
				return err
			}

			trigger := make(chan struct{}, 1)
			registry.SetOnChange(func(path string) {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
			if err := registry.Watch(); err != nil {
				return err
			}
			defer registry.StopWatch()

			fmt.Printf("Watching %s (%d overrides loaded)\n",
				profile.OverridesDir, registry.Count())
			if err := runReport(profile, false); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			var timer *time.Timer
			rerun := make(chan struct{}, 1)
			for {
				select {
				case <-trigger:
					// Editors save in bursts, wait for them to settle.
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(debounce, func() {
						rerun <- struct{}{}
					})
				case <-rerun:
					fmt.Println("Overrides changed, re-running reports.")
					if err := runReport(profile, false); err != nil {
						fmt.Fprintln(os.Stderr, err)
					}
				case <-stop:
					return nil
				}
			}
		},
	}
	cmd.Flags().Duration("debounce", 2*time.Second, "Delay before re-running after a change")
	return cmd
}
