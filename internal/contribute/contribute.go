package contribute

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/open-code-labs/open-code/internal/branding"
	"github.com/open-code-labs/open-code/internal/errs"
	"github.com/open-code-labs/open-code/internal/fsutil"
	"github.com/open-code-labs/open-code/internal/github"
	"github.com/open-code-labs/open-code/internal/gitutil"
	"github.com/open-code-labs/open-code/internal/registry"
	"github.com/open-code-labs/open-code/internal/tracking"
)

// Git is the subset of git operations a contribution needs.
type Git interface {
	Clone(ctx context.Context, url, branch string) (*gitutil.Snapshot, error)
	CreateBranch(ctx context.Context, dir, name string) error
	PushChanges(ctx context.Context, dir, branch, message string) error
}

// Host is the hosting service API.
type Host interface {
	CreateFork(ctx context.Context, repoURL string) (*github.Fork, error)
	CreatePullRequest(ctx context.Context, pr github.PullRequest) (string, error)
}

// Stage names the step a component failed at.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageLocal   Stage = "local"
	StageFork    Stage = "fork"
	StageClone   Stage = "clone"
	StageBranch  Stage = "branch"
	StageCopy    Stage = "copy"
	StagePush    Stage = "push"
	StagePR      Stage = "pull-request"
)

// Result is the outcome of one component. PRURL is set on success; Stage
// and Err are set on failure.
type Result struct {
	Component  string
	Repository string
	Branch     string
	PRURL      string
	Stage      Stage
	Err        error
}

// Created reports whether a pull request was opened.
func (r Result) Created() bool { return r.Err == nil && r.PRURL != "" }

// Pipeline contributes components of one project.
type Pipeline struct {
	Root     string
	Registry *registry.Registry
	Store    *tracking.Store
	Git      Git
	Host     Host

	// Token authenticates pushes to https forks.
	Token string

	// Now is the clock used for branch names. Defaults to time.Now.
	Now func() time.Time

	// Progress, when set, is called after each component.
	Progress func(Result)
}

// DefaultMessage is the commit message used when none is given.
func DefaultMessage(component string) string {
	return fmt.Sprintf("Update %s component\n\nUpdated by %s", component, branding.CLIName())
}

// BranchName returns the contribution branch for component at t.
func BranchName(component string, t time.Time) string {
	return fmt.Sprintf("%s/%s-%d", branding.BranchPrefix(), component, t.UnixMilli())
}

// Target names a tracked component. An empty Repository selects the most
// recently synced component with that name.
type Target struct {
	Name       string
	Repository string
}

// Targets builds repository-less targets from component names.
func Targets(names ...string) []Target {
	targets := make([]Target, len(names))
	for i, name := range names {
		targets[i] = Target{Name: name}
	}
	return targets
}

// Run contributes each target in order. A failing component does not stop
// the rest of the batch unless its error is fatal, such as a rejected token;
// the results gathered so far are returned with that error.
func (p *Pipeline) Run(ctx context.Context, targets []Target, message string) ([]Result, error) {
	results := make([]Result, 0, len(targets))
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := p.contributeOne(ctx, target, message)
		if res.Err != nil {
			zerolog.Ctx(ctx).Debug().Err(res.Err).Str("component", target.Name).Str("stage", string(res.Stage)).Msg("contribution failed")
		}
		results = append(results, res)
		if p.Progress != nil {
			p.Progress(res)
		}
		if errs.Fatal(res.Err) {
			return results, res.Err
		}
	}
	return results, nil
}

func (p *Pipeline) contributeOne(ctx context.Context, target Target, message string) Result {
	const op errs.Op = "contribute.Run"
	name := target.Name
	res := Result{Component: name, Repository: target.Repository}
	fail := func(stage Stage, err error) Result {
		res.Stage, res.Err = stage, err
		return res
	}

	tracked, err := p.Store.Find(name, target.Repository)
	if err != nil {
		return fail(StageResolve, err)
	}
	if tracked == nil {
		if target.Repository != "" {
			return fail(StageResolve, errs.E(op, errs.NotFound, fmt.Errorf("component %q from repository %q not found in tracking", name, target.Repository)))
		}
		return fail(StageResolve, errs.E(op, errs.NotFound, fmt.Errorf("component %q not found in tracking", name)))
	}
	res.Repository = tracked.RepositoryName
	repo := p.Registry.Repository(tracked.RepositoryName)
	if repo == nil {
		return fail(StageResolve, errs.E(op, errs.NotFound, fmt.Errorf("repository %q not found in configuration", tracked.RepositoryName)))
	}

	local, err := fsutil.Join(filepath.Join(p.Root, filepath.FromSlash(p.Registry.BaseDir())), tracked.Path)
	if err != nil {
		return fail(StageLocal, errs.E(op, errs.ConfigInvalid, err))
	}
	if !fsutil.IsDir(local) {
		return fail(StageLocal, errs.E(op, errs.NotFound, fmt.Errorf("local component not found at %s", local)))
	}

	fork, err := p.Host.CreateFork(ctx, repo.URL)
	if err != nil {
		return fail(StageFork, err)
	}

	snap, err := p.Git.Clone(ctx, github.WithToken(fork.CloneURL, p.Token), repo.Branch)
	if err != nil {
		return fail(StageClone, err)
	}
	defer func() {
		if err := snap.Cleanup(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("dir", snap.Dir).Msg("removing fork checkout")
		}
	}()

	res.Branch = BranchName(name, p.now())
	if err := p.Git.CreateBranch(ctx, snap.Dir, res.Branch); err != nil {
		return fail(StageBranch, errs.E(op, errs.Remote, err))
	}

	dest := filepath.Join(snap.Dir, filepath.FromSlash(tracked.OriginalPath))
	if err := fsutil.CopyTree(local, dest, fsutil.Merge); err != nil {
		return fail(StageCopy, errs.E(op, errs.Filesystem, err))
	}

	if message == "" {
		message = DefaultMessage(name)
	}
	if err := p.Git.PushChanges(ctx, snap.Dir, res.Branch, message); err != nil {
		var execErr *gitutil.ExecError
		if errors.As(err, &execErr) && execErr.Type == gitutil.NothingToCommit {
			err = fmt.Errorf("no changes to contribute for %s: %w", name, err)
		}
		return fail(StagePush, errs.E(op, errs.Remote, err))
	}

	owner := fork.Owner.Login
	url, err := p.Host.CreatePullRequest(ctx, github.PullRequest{
		UpstreamURL: repo.URL,
		ForkOwner:   owner,
		Branch:      res.Branch,
		Base:        repo.Branch,
		Title:       fmt.Sprintf("Update %s component", name),
		Body:        message,
	})
	if err != nil {
		return fail(StagePR, err)
	}
	res.PRURL = url
	return res
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
