package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-code-labs/open-code/internal/config"
	"github.com/open-code-labs/open-code/internal/contribute"
	"github.com/open-code-labs/open-code/internal/drift"
	"github.com/open-code-labs/open-code/internal/github"
	"github.com/open-code-labs/open-code/internal/gitutil"
	"github.com/open-code-labs/open-code/internal/prompt"
)

var (
	contributeMessage  string
	contributeSkipAuth bool
)

// hostCLI supplies the gh session token. Tests point it at a missing binary.
var hostCLI = github.HostCLI{}

func init() {
	contributeCmd.Flags().StringVarP(&contributeMessage, "message", "m", "", "Commit and pull request message")
	contributeCmd.Flags().BoolVar(&contributeSkipAuth, "skip-auth", false, "Only use an existing gh CLI session for authentication")
	rootCmd.AddCommand(contributeCmd)
}

var contributeCmd = &cobra.Command{
	Use:   "contribute [components...]",
	Short: "Open pull requests with local component changes",
	Long: `Contribute local modifications back to the source repositories.

Each component is copied onto a new branch of a fork of its repository and a
pull request is opened against the configured branch. Without arguments the
modified components are detected and offered for selection.`,
	RunE: runContribute,
}

func runContribute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	reg, err := s.registry()
	if err != nil {
		return err
	}

	targets := contribute.Targets(args...)
	if len(targets) == 0 {
		s.out.Step("Detecting changes to components...")
		res, err := scanChanges(ctx, s, reg, nil)
		if err != nil {
			return err
		}
		labels, byLabel := contributeChoices(res.Changed())
		if len(labels) == 0 {
			s.out.Success("No modified components found.")
			return nil
		}
		selected, err := s.in.MultiSelect("Select components to contribute", labels)
		if err != nil && !errors.Is(err, prompt.ErrNoInput) {
			return err
		}
		if len(selected) == 0 {
			s.out.Warn("No components selected.")
			return nil
		}
		for _, label := range selected {
			targets = append(targets, byLabel[label])
		}
	}

	auth := github.Authenticator{
		Host:       hostCLI,
		Configured: config.GitHubToken,
		Prompt: func() (string, error) {
			return s.in.Secret("GitHub personal access token")
		},
	}
	token, err := auth.Resolve(ctx, contributeSkipAuth)
	if err != nil {
		return err
	}

	p := &contribute.Pipeline{
		Root:     s.root,
		Registry: reg,
		Store:    s.tracking(),
		Git:      gitutil.New(),
		Host:     github.NewClient(token, github.WithBaseURL(config.GitHubAPIURL())),
		Token:    token,
		Progress: func(res contribute.Result) { printContribution(s, res) },
	}
	results, err := p.Run(ctx, targets, contributeMessage)
	printContributeSummary(s, results)
	if err != nil {
		return err
	}
	s.out.Success("Contribution process completed.")
	return nil
}

// contributeChoices returns the selection labels for the changed components
// and the target behind each label. A name changed in several repositories
// is labeled with its repository.
func contributeChoices(changed []drift.Report) ([]string, map[string]contribute.Target) {
	count := make(map[string]int, len(changed))
	for _, r := range changed {
		count[r.Component.Name]++
	}
	labels := make([]string, 0, len(changed))
	byLabel := make(map[string]contribute.Target, len(changed))
	for _, r := range changed {
		label := r.Component.Name
		if count[label] > 1 {
			label = fmt.Sprintf("%s (%s)", r.Component.Name, r.Component.RepositoryName)
		}
		labels = append(labels, label)
		byLabel[label] = contribute.Target{Name: r.Component.Name, Repository: r.Component.RepositoryName}
	}
	return labels, byLabel
}

func printContributeSummary(s *session, results []contribute.Result) {
	if len(results) == 0 {
		return
	}
	var created, failed []string
	for _, res := range results {
		if res.Created() {
			created = append(created, res.Component)
		} else {
			failed = append(failed, res.Component)
		}
	}
	s.out.Break()
	if len(created) > 0 {
		s.out.Success("%s opened: %s", plural(len(created), "pull request"), strings.Join(created, ", "))
	}
	if len(failed) > 0 {
		s.out.Error("%s failed: %s", plural(len(failed), "component"), strings.Join(failed, ", "))
	}
}

func printContribution(s *session, res contribute.Result) {
	name := s.out.Highlight(res.Component)
	if res.Err != nil {
		s.out.Error("Failed to create pull request for %s (%s): %v", name, res.Stage, res.Err)
		return
	}
	s.out.Success("Created pull request for %s", name)
	s.out.Info("Pull request: %s", s.out.Highlight(res.PRURL))
}
