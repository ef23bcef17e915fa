package gitutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/open-code-labs/open-code/internal/branding"
	"github.com/open-code-labs/open-code/internal/errs"
)

// Snapshot is a temporary shallow checkout of a repository branch.
type Snapshot struct {
	Dir      string
	Revision string
}

// Cleanup removes the checkout. It is safe to call on a nil Snapshot.
func (s *Snapshot) Cleanup() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	return os.RemoveAll(s.Dir)
}

// Git performs the repository operations needed by sync, drift detection
// and contribution.
type Git struct {
	tempDir string
}

// Option configures Git.
type Option func(*Git)

// WithTempDir sets the parent directory for snapshots. The default is the
// system temp directory.
func WithTempDir(dir string) Option {
	return func(g *Git) { g.tempDir = dir }
}

// New returns a Git.
func New(opts ...Option) *Git {
	g := &Git{}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Clone fetches a depth-1 snapshot of branch from url into a fresh temporary
// directory and records the head revision. The caller owns the snapshot and
// must call Cleanup.
func (g *Git) Clone(ctx context.Context, url, branch string) (*Snapshot, error) {
	const op errs.Op = "gitutil.Clone"

	dir, err := os.MkdirTemp(g.tempDir, branding.CLIName()+"-")
	if err != nil {
		return nil, errs.E(op, errs.Filesystem, fmt.Errorf("creating temp dir: %w", err))
	}
	snap := &Snapshot{Dir: dir}

	r, err := NewRunner("")
	if err != nil {
		_ = snap.Cleanup()
		return nil, errs.E(op, errs.Remote, err)
	}
	if _, err := r.Run(ctx, "clone", "--depth", "1", "--branch", branch, url, dir); err != nil {
		_ = snap.Cleanup()
		return nil, errs.E(op, errs.Remote, fmt.Errorf("cloning %s (%s): %w", redact(url), branch, err))
	}

	rev, err := g.CurrentCommitHash(ctx, dir)
	if err != nil {
		_ = snap.Cleanup()
		return nil, errs.E(op, errs.Remote, err)
	}
	snap.Revision = rev

	zerolog.Ctx(ctx).Debug().Str("url", redact(url)).Str("branch", branch).Str("revision", rev).Msg("cloned snapshot")
	return snap, nil
}

// CurrentCommitHash returns the HEAD commit of the repository at dir.
func (g *Git) CurrentCommitHash(ctx context.Context, dir string) (string, error) {
	r, err := NewRunner(dir)
	if err != nil {
		return "", err
	}
	rr, err := r.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("reading current commit: %w", err)
	}
	hash := strings.TrimSpace(rr.Stdout)
	if hash == "" {
		return "", errors.New("reading current commit: empty output")
	}
	return hash, nil
}

// CreateBranch creates and checks out a new branch.
func (g *Git) CreateBranch(ctx context.Context, dir, name string) error {
	r, err := NewRunner(dir)
	if err != nil {
		return err
	}
	if _, err := r.Run(ctx, "checkout", "-b", name); err != nil {
		return fmt.Errorf("creating branch %s: %w", name, err)
	}
	return nil
}

// PushChanges stages everything, commits with message and pushes branch to
// origin, setting the upstream.
func (g *Git) PushChanges(ctx context.Context, dir, branch, message string) error {
	r, err := NewRunner(dir)
	if err != nil {
		return err
	}
	if _, err := r.Run(ctx, "add", "."); err != nil {
		return fmt.Errorf("staging changes: %w", err)
	}
	if _, err := r.Run(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("committing changes: %w", err)
	}
	if _, err := r.Run(ctx, "push", "--set-upstream", "origin", branch); err != nil {
		return fmt.Errorf("pushing %s: %w", branch, err)
	}
	return nil
}

// IsRepository reports whether dir is inside a git work tree.
func (g *Git) IsRepository(ctx context.Context, dir string) bool {
	r, err := NewRunner(dir)
	if err != nil {
		return false
	}
	rr, err := r.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(rr.Stdout) == "true"
}

// InitIfNeeded runs git init in dir unless it is already a repository.
func (g *Git) InitIfNeeded(ctx context.Context, dir string) error {
	if g.IsRepository(ctx, dir) {
		return nil
	}
	r, err := NewRunner(dir)
	if err != nil {
		return err
	}
	if _, err := r.Run(ctx, "init"); err != nil {
		return fmt.Errorf("initializing repository: %w", err)
	}
	return nil
}
