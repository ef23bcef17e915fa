package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-code-labs/open-code/internal/gitutil"
	"github.com/open-code-labs/open-code/internal/reconcile"
)

var (
	syncRepo  string
	syncForce bool
)

func init() {
	syncCmd.Flags().StringVar(&syncRepo, "repo", "", "Repository to sync from")
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "Overwrite locally modified components without asking")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync [components...]",
	Short: "Copy components from a source repository",
	Long: `Sync components from a source repository into the project.

Without arguments every component of the repository is synced. Components
with local modifications are only overwritten after confirmation or with
--force.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	reg, err := s.registry()
	if err != nil {
		return err
	}
	repo, err := reg.SelectRepository(syncRepo, s.chooseRepository)
	if err != nil {
		return err
	}

	s.out.Step("Syncing from %s (%s)", s.out.Highlight(repo.Name), repo.Branch)

	r := &reconcile.Reconciler{
		Root:     s.root,
		Registry: reg,
		Store:    s.tracking(),
		Fetcher:  gitutil.New(),
	}
	summary, err := r.Sync(ctx, repo, reconcile.Options{
		Components: args,
		Force:      syncForce,
		Confirm:    s.confirmOverwrite,
		Progress:   func(res reconcile.Result) { printSyncResult(s, res) },
	})
	if err != nil {
		return err
	}

	printSyncSummary(s, summary)
	return nil
}

func printSyncResult(s *session, res reconcile.Result) {
	name := s.out.Highlight(res.Component)
	switch res.Outcome {
	case reconcile.Synced:
		s.out.Success("Synced %s", name)
	case reconcile.Skipped:
		switch res.Reason {
		case reconcile.ReasonNotFound:
			s.out.Warn("Skipped %s: not found in repository", name)
		case reconcile.ReasonCustomized:
			s.out.Warn("Skipped %s: has local modifications", name)
		default:
			s.out.Warn("Skipped %s", name)
		}
	case reconcile.Failed:
		s.out.Error("Failed to sync %s: %v", name, res.Err)
	}
}

func printSyncSummary(s *session, summary *reconcile.Summary) {
	s.out.Break()
	if names := summary.Names(reconcile.Synced); len(names) > 0 {
		s.out.Success("%s synced: %s", plural(len(names), "component"), strings.Join(names, ", "))
	}
	if names := summary.Names(reconcile.Skipped); len(names) > 0 {
		s.out.Warn("%s skipped: %s", plural(len(names), "component"), strings.Join(names, ", "))
	}
	if names := summary.Names(reconcile.Failed); len(names) > 0 {
		s.out.Error("%s failed: %s", plural(len(names), "component"), strings.Join(names, ", "))
	}

	for _, res := range summary.Results {
		if len(res.MissingDependencies) > 0 {
			s.out.Info("%s depends on %s which %s not synced",
				res.Component, strings.Join(res.MissingDependencies, ", "), isAre(len(res.MissingDependencies)))
		}
	}
	if summary.Revision != "" {
		s.out.Info("Upstream revision %s", s.out.Dim(shortRevision(summary.Revision)))
	}
}

func isAre(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
