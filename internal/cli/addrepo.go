package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/open-code-labs/open-code/internal/branding"
	"github.com/open-code-labs/open-code/internal/errs"
	"github.com/open-code-labs/open-code/internal/gitutil"
	"github.com/open-code-labs/open-code/internal/registry"
)

var (
	addRepoName   string
	addRepoURL    string
	addRepoBranch string
)

func init() {
	addRepoCmd.Flags().StringVar(&addRepoName, "name", "", "Name for the repository (required)")
	addRepoCmd.Flags().StringVar(&addRepoURL, "url", "", "URL of the repository (required)")
	addRepoCmd.Flags().StringVar(&addRepoBranch, "branch", registry.DefaultBranch, "Branch to use")
	_ = addRepoCmd.MarkFlagRequired("name")
	_ = addRepoCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(addRepoCmd)
}

var addRepoCmd = &cobra.Command{
	Use:   "add-repo",
	Short: "Add a source repository to the configuration",
	Long: `Add a source repository.

The repository is cloned once to discover its components, which are recorded
in the registry file under the given name.`,
	Args: cobra.NoArgs,
	RunE: runAddRepo,
}

func runAddRepo(cmd *cobra.Command, args []string) error {
	const op errs.Op = "cli.add-repo"
	ctx := cmd.Context()

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	reg, err := s.registry()
	if err != nil {
		return err
	}
	if reg.Repository(addRepoName) != nil {
		return errs.E(op, errs.ConfigInvalid, fmt.Errorf("repository %q already exists", addRepoName))
	}

	s.out.Step("Cloning repository %s", s.out.Highlight(addRepoURL))
	snap, err := gitutil.New().Clone(ctx, addRepoURL, addRepoBranch)
	if err != nil {
		return err
	}
	defer func() {
		if err := snap.Cleanup(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("dir", snap.Dir).Msg("removing snapshot")
		}
	}()

	components, err := registry.DiscoverComponents(snap.Dir)
	if err != nil {
		return errs.E(op, errs.Filesystem, err)
	}
	if len(components) == 0 {
		return errs.E(op, errs.NotFound,
			errors.New("no components found in repository; make sure it has a valid component structure"))
	}
	s.out.Step("Found %s", plural(len(components), "component"))

	repo := registry.RepositoryConfig{
		Name:       addRepoName,
		URL:        addRepoURL,
		Branch:     addRepoBranch,
		Components: components,
	}
	if _, err := registry.AddRepository(s.root, repo); err != nil {
		return err
	}

	s.out.Break()
	s.out.Success("Added repository %s with %s", s.out.Highlight(addRepoName), plural(len(components), "component"))
	s.out.Info("Components: %s", strings.Join(repo.ComponentNames(), ", "))
	s.out.Info("Use %s to sync components from this repository.",
		s.out.Highlight(fmt.Sprintf("%s sync --repo %s", branding.CLIName(), addRepoName)))
	return nil
}
