package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-code-labs/open-code/internal/branding"
	"github.com/open-code-labs/open-code/internal/drift"
	"github.com/open-code-labs/open-code/internal/gitutil"
	"github.com/open-code-labs/open-code/internal/registry"
)

var detectDiff bool

func init() {
	detectCmd.Flags().BoolVar(&detectDiff, "diff", false, "Print the line diff of each changed file")
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect-changes [components...]",
	Short: "Detect local modifications of tracked components",
	Long: `Compare tracked components with their upstream repositories.

Components that differ are marked as customized in the tracking file so a
later sync asks before overwriting them.`,
	RunE: runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	reg, err := s.registry()
	if err != nil {
		return err
	}

	s.out.Step("Detecting changes to components...")
	res, err := scanChanges(cmd.Context(), s, reg, args)
	if err != nil {
		return err
	}
	if len(res.Reports) == 0 && len(res.Problems) == 0 {
		s.out.Warn("No components to check.")
		return nil
	}

	for _, rep := range res.Reports {
		name := s.out.Highlight(rep.Component.Name)
		if !rep.HasChanges {
			s.out.Success("Component %s is unchanged", name)
			continue
		}
		s.out.Warn("Component %s has been modified", name)
		for _, c := range rep.Changes {
			s.out.Info("  %s (%d additions, %d deletions)", c.FilePath, c.Additions, c.Deletions)
			if detectDiff && c.Diff != drift.NewFileDiff {
				for _, line := range strings.Split(strings.TrimSuffix(c.Diff, "\n"), "\n") {
					s.out.Info("    %s", s.out.Dim(line))
				}
			}
		}
	}

	s.out.Break()
	if changed := res.Changed(); len(changed) > 0 {
		s.out.Warn("%s modified: %s", plural(len(changed), "component"), strings.Join(reportNames(changed), ", "))
	}
	if unchanged := res.Unchanged(); len(unchanged) > 0 {
		s.out.Success("%s unchanged: %s", plural(len(unchanged), "component"), strings.Join(reportNames(unchanged), ", "))
	}
	if len(res.Changed()) > 0 {
		s.out.Info("Use %s to submit your changes as pull requests.", s.out.Highlight(branding.CLIName()+" contribute"))
	}
	return nil
}

// scanChanges runs a drift scan and prints what could not be checked.
func scanChanges(ctx context.Context, s *session, reg *registry.Registry, names []string) (*drift.Result, error) {
	scanner := &drift.Scanner{
		Root:     s.root,
		Registry: reg,
		Store:    s.tracking(),
		Fetcher:  gitutil.New(),
	}
	res, err := scanner.Scan(ctx, names)
	if err != nil {
		return nil, err
	}
	for _, name := range res.Unknown {
		s.out.Warn("Component %s is not tracked", s.out.Highlight(name))
	}
	for _, p := range res.Problems {
		s.out.Error("Could not check %s: %v", s.out.Highlight(p.Component), p.Err)
	}
	return res, nil
}

func reportNames(reports []drift.Report) []string {
	names := make([]string, len(reports))
	for i, r := range reports {
		names[i] = r.Component.Name
	}
	return names
}
