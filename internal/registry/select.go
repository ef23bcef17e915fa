package registry

import (
	"errors"
	"fmt"

	"github.com/open-code-labs/open-code/internal/errs"
)

// ErrNoSelection is returned by a chooser when the user picked nothing.
var ErrNoSelection = errors.New("no repository selected")

// Chooser asks the user to pick one of several repository names.
type Chooser func(names []string) (string, error)

// SelectRepository resolves the repository a command should act on.
//
// An explicit name must exist. Without a name, a single configured
// repository is used implicitly and several are offered to choose.
func (r *Registry) SelectRepository(name string, choose Chooser) (*RepositoryConfig, error) {
	const op errs.Op = "registry.SelectRepository"

	if name != "" {
		repo := r.Repository(name)
		if repo == nil {
			return nil, errs.E(op, errs.NotFound, fmt.Errorf("repository %q not found in configuration", name))
		}
		return repo, nil
	}

	switch len(r.Repositories) {
	case 0:
		return nil, errs.E(op, errs.ConfigInvalid, errors.New("no repositories configured"))
	case 1:
		return &r.Repositories[0], nil
	}

	if choose == nil {
		return nil, errs.E(op, errs.ConfigInvalid, fmt.Errorf("%w: several repositories configured, pass one explicitly", ErrNoSelection))
	}
	picked, err := choose(r.RepositoryNames())
	if err != nil {
		return nil, errs.E(op, errs.ConfigInvalid, err)
	}
	if picked == "" {
		return nil, errs.E(op, errs.ConfigInvalid, ErrNoSelection)
	}
	repo := r.Repository(picked)
	if repo == nil {
		return nil, errs.E(op, errs.NotFound, fmt.Errorf("repository %q not found in configuration", picked))
	}
	return repo, nil
}
