package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/open-code-labs/open-code/internal/tracking"
)

var (
	listRepo string
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured components and their sync state",
	Long: `List the components offered by the configured repositories together with
the revision they were synced at and whether they were modified locally.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listRepo, "repo", "", "Only list components of this repository")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// Sync states shown by list.
const (
	stateAvailable  = "available"
	stateSynced     = "synced"
	stateCustomized = "customized"
	stateOrphaned   = "orphaned"
)

// listEntry is one row of the list output.
type listEntry struct {
	Repository string     `json:"repository"`
	Component  string     `json:"component"`
	Path       string     `json:"path"`
	State      string     `json:"state"`
	Version    string     `json:"version,omitempty"`
	LastSynced *time.Time `json:"lastSynced,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	reg, err := s.registry()
	if err != nil {
		return err
	}
	if listRepo != "" {
		if _, err := reg.SelectRepository(listRepo, nil); err != nil {
			return err
		}
	}
	lt, err := s.tracking().Load()
	if err != nil {
		return err
	}
	if lt == nil {
		lt = &tracking.LocalTracking{}
	}

	var entries []listEntry
	seen := make(map[string]bool)
	for _, repo := range reg.Repositories {
		if listRepo != "" && repo.Name != listRepo {
			continue
		}
		for _, c := range repo.Components {
			entry := listEntry{Repository: repo.Name, Component: c.Name, Path: c.Path, State: stateAvailable}
			if row := lt.Find(c.Name, repo.Name); row != nil {
				seen[row.Key()] = true
				fillTracked(&entry, row)
			}
			entries = append(entries, entry)
		}
	}
	// Tracked rows whose repository or component left the registry.
	for i := range lt.Components {
		row := &lt.Components[i]
		if seen[row.Key()] || (listRepo != "" && row.RepositoryName != listRepo) {
			continue
		}
		entry := listEntry{Repository: row.RepositoryName, Component: row.Name, Path: row.OriginalPath}
		fillTracked(&entry, row)
		entry.State = stateOrphaned
		entries = append(entries, entry)
	}

	if listJSON {
		return printListJSON(cmd, entries)
	}
	if len(entries) == 0 {
		s.out.Info("No components configured.")
		return nil
	}
	printListTable(cmd, entries)
	return nil
}

func fillTracked(entry *listEntry, row *tracking.TrackedComponent) {
	entry.State = stateSynced
	if row.Customized {
		entry.State = stateCustomized
	}
	entry.Version = row.Version
	synced := row.LastSynced
	entry.LastSynced = &synced
}

func printListTable(cmd *cobra.Command, entries []listEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"REPOSITORY", "COMPONENT", "STATE", "REVISION", "LAST SYNCED"})
	for _, e := range entries {
		revision, synced := "-", "-"
		if e.Version != "" {
			revision = shortRevision(e.Version)
		}
		if e.LastSynced != nil {
			synced = e.LastSynced.Local().Format(time.DateTime)
		}
		t.AppendRow(table.Row{e.Repository, e.Component, e.State, revision, synced})
	}
	t.Render()
}

func printListJSON(cmd *cobra.Command, entries []listEntry) error {
	if entries == nil {
		entries = []listEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling list: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
