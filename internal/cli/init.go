package cli

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/open-code-labs/open-code/internal/branding"
	"github.com/open-code-labs/open-code/internal/config"
	"github.com/open-code-labs/open-code/internal/errs"
	"github.com/open-code-labs/open-code/internal/gitutil"
	"github.com/open-code-labs/open-code/internal/prompt"
	"github.com/open-code-labs/open-code/internal/registry"
)

var (
	initRepo         string
	initBranch       string
	initComponentDir string
	initForce        bool
)

func init() {
	initCmd.Flags().StringVar(&initRepo, "repo", "", "URL of the source repository to initialize from")
	initCmd.Flags().StringVar(&initBranch, "branch", registry.DefaultBranch, "Branch of the source repository")
	initCmd.Flags().StringVar(&initComponentDir, "component-dir", "", "Directory for storing components")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the project and create its configuration",
	Long: `Initialize the project configuration.

Clones the source repository, records the components it offers in the
registry file and creates the local tracking file. Missing values are asked
for interactively.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	const op errs.Op = "cli.init"
	ctx := cmd.Context()

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	exists, err := registry.Exists(s.root)
	if err != nil {
		return errs.E(op, errs.Filesystem, err)
	}
	if exists && !initForce {
		return errs.E(op, errs.ConfigInvalid,
			fmt.Errorf("a configuration already exists at %s; use --force to overwrite it", s.root))
	}

	repoURL := strings.TrimSpace(initRepo)
	if repoURL == "" {
		repoURL, err = s.in.Text("Enter the URL of the source repository", "")
		if err != nil && !errors.Is(err, prompt.ErrNoInput) {
			return err
		}
		if repoURL == "" {
			return errs.E(op, errs.ConfigInvalid, errors.New("repository URL is required"))
		}
	}

	componentDir := initComponentDir
	if componentDir == "" {
		componentDir, err = s.in.Text("Where do you want to store your components?", config.ComponentDir())
		if errors.Is(err, prompt.ErrNoInput) || componentDir == "" {
			componentDir, err = config.ComponentDir(), nil
		}
		if err != nil {
			return err
		}
	}

	reg := &registry.Registry{
		Name: branding.CLIName(),
		Repositories: []registry.RepositoryConfig{{
			Name:   repositoryName(repoURL),
			URL:    repoURL,
			Branch: initBranch,
		}},
		ComponentDirectories: registry.ComponentDirectories{Base: componentDir},
	}
	if err := registry.Check(reg); err != nil {
		return err
	}

	s.out.Step("Initializing project with repository %s", s.out.Highlight(repoURL))

	git := gitutil.New()
	snap, err := git.Clone(ctx, repoURL, initBranch)
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
		s.out.Warn("No components found in the repository.")
	}
	reg.Repositories[0].Components = components

	write := registry.Create
	if exists {
		write = registry.Replace
	}
	if err := write(s.root, reg); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(s.root, filepath.FromSlash(componentDir)), 0o755); err != nil {
		return errs.E(op, errs.Filesystem, fmt.Errorf("creating component directory: %w", err))
	}
	if err := git.InitIfNeeded(ctx, s.root); err != nil {
		return err
	}

	store := s.tracking()
	lt, err := store.Load()
	if err != nil {
		return err
	}
	if lt == nil {
		if _, err := store.Create(); err != nil {
			return err
		}
	}

	s.out.Success("Project initialized with %s from %s", plural(len(components), "component"), s.out.Highlight(reg.Repositories[0].Name))
	s.out.Info("Use %s to copy components into %s.", s.out.Highlight(branding.CLIName()+" sync"), componentDir)
	return nil
}

// repositoryName derives a registry name from a clone URL.
func repositoryName(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	return strings.TrimSuffix(path.Base(filepath.ToSlash(url)), ".git")
}
