package reconcile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/open-code-labs/open-code/internal/errs"
	"github.com/open-code-labs/open-code/internal/fsutil"
	"github.com/open-code-labs/open-code/internal/gitutil"
	"github.com/open-code-labs/open-code/internal/registry"
	"github.com/open-code-labs/open-code/internal/tracking"
)

// Fetcher produces an upstream snapshot of a repository branch.
type Fetcher interface {
	Clone(ctx context.Context, url, branch string) (*gitutil.Snapshot, error)
}

// ConfirmFunc asks whether the customized component name may be
// overwritten.
type ConfirmFunc func(name string) (bool, error)

// Options selects what a sync run does.
type Options struct {
	// Components to sync, in order. Empty means every component of the
	// repository.
	Components []string

	// Force overwrites customized components without asking.
	Force bool

	// Confirm is asked before overwriting a customized component. A nil
	// Confirm declines.
	Confirm ConfirmFunc

	// Progress, when set, is called after each component.
	Progress func(Result)
}

// Reconciler syncs components of one project.
type Reconciler struct {
	Root     string
	Registry *registry.Registry
	Store    *tracking.Store
	Fetcher  Fetcher
}

// Sync fetches one snapshot of repo and processes the selected components
// sequentially. A failed fetch ends the run with an error; per-component
// failures are recorded in the summary and do not stop the batch.
func (r *Reconciler) Sync(ctx context.Context, repo *registry.RepositoryConfig, opts Options) (*Summary, error) {
	const op errs.Op = "reconcile.Sync"
	log := zerolog.Ctx(ctx)

	names := opts.Components
	if len(names) == 0 {
		names = repo.ComponentNames()
	}

	snap, err := r.Fetcher.Clone(ctx, repo.URL, repo.Branch)
	if err != nil {
		return nil, errs.E(op, errs.Remote, err)
	}
	defer func() {
		if err := snap.Cleanup(); err != nil {
			log.Warn().Err(err).Str("dir", snap.Dir).Msg("removing snapshot")
		}
	}()

	summary := &Summary{Repository: repo.Name, Revision: snap.Revision}
	base := filepath.Join(r.Root, filepath.FromSlash(r.Registry.BaseDir()))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res := r.syncOne(ctx, repo, snap, base, name, opts)
		log.Debug().Str("component", name).Stringer("outcome", res.Outcome).Str("reason", res.Reason).Msg("sync")
		summary.Results = append(summary.Results, res)
		if opts.Progress != nil {
			opts.Progress(res)
		}
	}

	for i := range summary.Results {
		res := &summary.Results[i]
		if res.Outcome == Synced {
			res.MissingDependencies = r.missingDependencies(ctx, repo.Component(res.Component))
		}
	}

	return summary, nil
}

func (r *Reconciler) syncOne(ctx context.Context, repo *registry.RepositoryConfig, snap *gitutil.Snapshot, base, name string, opts Options) Result {
	const op errs.Op = "reconcile.syncOne"
	res := Result{Component: name}

	desc := repo.Component(name)
	if desc == nil {
		res.Outcome, res.Reason = Skipped, ReasonNotFound
		res.Err = errs.E(op, errs.NotFound, fmt.Errorf("component %q is not declared by repository %q", name, repo.Name))
		return res
	}

	upstream := filepath.Join(snap.Dir, filepath.FromSlash(desc.Path))
	if !fsutil.IsDir(upstream) {
		res.Outcome, res.Reason = Skipped, ReasonNotFound
		res.Err = errs.E(op, errs.NotFound, fmt.Errorf("%s not found in repository %q", desc.Path, repo.Name))
		return res
	}

	local, err := fsutil.Join(base, name)
	if err != nil {
		res.Outcome, res.Err = Failed, errs.E(op, errs.ConfigInvalid, fmt.Errorf("component %q: %w", name, err))
		return res
	}
	if fsutil.Exists(local) && !opts.Force {
		tracked, err := r.Store.Find(name, repo.Name)
		if err != nil {
			res.Outcome, res.Err = Failed, err
			return res
		}
		if tracked != nil && tracked.Customized {
			ok := false
			if opts.Confirm != nil {
				ok, err = opts.Confirm(name)
				if err != nil {
					res.Outcome, res.Err = Failed, fmt.Errorf("confirming overwrite of %s: %w", name, err)
					return res
				}
			}
			if !ok {
				res.Outcome, res.Reason = Skipped, ReasonCustomized
				return res
			}
		}
	}

	if err := fsutil.CopyTree(upstream, local, fsutil.Replace); err != nil {
		res.Outcome, res.Err = Failed, errs.E(op, errs.Filesystem, err)
		return res
	}

	if _, err := r.Store.Upsert(tracking.TrackedComponent{
		Name:           name,
		RepositoryName: repo.Name,
		Version:        snap.Revision,
		Path:           name,
		OriginalPath:   desc.Path,
		Customized:     false,
	}); err != nil {
		res.Outcome, res.Err = Failed, err
		return res
	}

	res.Outcome = Synced
	return res
}

// missingDependencies returns the declared dependencies of desc that are not
// tracked under any repository.
func (r *Reconciler) missingDependencies(ctx context.Context, desc *registry.ComponentDescriptor) []string {
	if desc == nil {
		return nil
	}
	var missing []string
	for _, dep := range desc.Dependencies {
		matches, err := r.Store.Matches(dep)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("dependency", dep).Msg("checking dependency")
			continue
		}
		if len(matches) == 0 {
			missing = append(missing, dep)
		}
	}
	return missing
}
