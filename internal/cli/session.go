package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/open-code-labs/open-code/internal/errs"
	"github.com/open-code-labs/open-code/internal/prompt"
	"github.com/open-code-labs/open-code/internal/registry"
	"github.com/open-code-labs/open-code/internal/tracking"
	"github.com/open-code-labs/open-code/internal/ui"
)

// session bundles what a command needs to work on one project.
type session struct {
	root string
	out  *ui.Printer
	in   *prompt.Prompter
}

func newSession(cmd *cobra.Command) (*session, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	return &session{
		root: root,
		out:  ui.New(cmd.OutOrStdout()),
		in:   prompt.New(cmd.InOrStdin(), cmd.OutOrStdout()),
	}, nil
}

// projectRoot resolves --cwd to an absolute directory.
func projectRoot() (string, error) {
	const op errs.Op = "cli.projectRoot"

	dir := rootCwd
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errs.E(op, errs.Filesystem, fmt.Errorf("resolving %s: %w", dir, err))
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errs.E(op, errs.Filesystem, err)
	}
	if !info.IsDir() {
		return "", errs.E(op, errs.Filesystem, fmt.Errorf("%s is not a directory", abs))
	}
	return abs, nil
}

func (s *session) registry() (*registry.Registry, error) {
	return registry.LoadRequired(s.root)
}

func (s *session) tracking() *tracking.Store {
	return tracking.NewStore(s.root)
}

// confirmOverwrite asks before a customized component is replaced. Running
// out of input counts as no.
func (s *session) confirmOverwrite(name string) (bool, error) {
	ok, err := s.in.Confirm(fmt.Sprintf("Component %s has local modifications. Overwrite?", s.out.Highlight(name)), false)
	if errors.Is(err, prompt.ErrNoInput) {
		return false, nil
	}
	return ok, err
}

// chooseRepository lets the user pick one of several repositories.
func (s *session) chooseRepository(names []string) (string, error) {
	return s.in.Select("Select a repository", names)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
