package drift

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/open-code-labs/open-code/internal/branding"
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

// Problem is a component that could not be checked.
type Problem struct {
	Component  string
	Repository string
	Err        error
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s (%s): %v", p.Component, p.Repository, p.Err)
}

// Result is the outcome of a scan.
type Result struct {
	Reports  []Report
	Problems []Problem
	// Unknown lists requested names that are not tracked.
	Unknown []string
}

// Changed returns the reports with changes.
func (r *Result) Changed() []Report {
	var out []Report
	for _, rep := range r.Reports {
		if rep.HasChanges {
			out = append(out, rep)
		}
	}
	return out
}

// Unchanged returns the reports without changes.
func (r *Result) Unchanged() []Report {
	var out []Report
	for _, rep := range r.Reports {
		if !rep.HasChanges {
			out = append(out, rep)
		}
	}
	return out
}

// Scanner checks tracked components of a project against their upstreams.
type Scanner struct {
	Root     string
	Registry *registry.Registry
	Store    *tracking.Store
	Fetcher  Fetcher
}

// Scan checks the tracked components named in names, or all of them when
// names is empty. One snapshot is fetched per repository. A repository that
// cannot be fetched is reported as a problem for each of its components and
// the scan moves on.
func (s *Scanner) Scan(ctx context.Context, names []string) (*Result, error) {
	const op errs.Op = "drift.Scan"
	log := zerolog.Ctx(ctx)

	lt, err := s.Store.Load()
	if err != nil {
		return nil, errs.E(op, errs.Other, err)
	}
	if lt == nil {
		return nil, errs.E(op, errs.ConfigMissing, fmt.Errorf("no %s found in %s", branding.TrackingFile(), s.Root))
	}

	res := &Result{}
	selected := lt.Components
	if len(names) > 0 {
		selected, res.Unknown = filterByName(lt.Components, names)
	}

	order, groups := groupByRepository(selected)
	base := filepath.Join(s.Root, filepath.FromSlash(s.Registry.BaseDir()))

	for _, repoName := range order {
		components := groups[repoName]

		repo := s.Registry.Repository(repoName)
		if repo == nil {
			for _, c := range components {
				res.Problems = append(res.Problems, Problem{c.Name, repoName,
					errs.E(op, errs.NotFound, fmt.Errorf("repository %q not found in configuration", repoName))})
			}
			continue
		}

		log.Debug().Str("repository", repo.Name).Str("url", repo.URL).Msg("fetching snapshot")
		snap, err := s.Fetcher.Clone(ctx, repo.URL, repo.Branch)
		if err != nil {
			for _, c := range components {
				res.Problems = append(res.Problems, Problem{c.Name, repoName, err})
			}
			continue
		}

		for _, c := range components {
			upstream := filepath.Join(snap.Dir, filepath.FromSlash(c.OriginalPath))
			local, err := fsutil.Join(base, c.Path)
			if err != nil {
				res.Problems = append(res.Problems, Problem{c.Name, repoName, errs.E(op, errs.ConfigInvalid, err)})
				continue
			}
			if !fsutil.IsDir(local) {
				res.Problems = append(res.Problems, Problem{c.Name, repoName,
					errs.E(op, errs.NotFound, fmt.Errorf("local component not found at %s", local))})
				continue
			}
			if !fsutil.IsDir(upstream) {
				res.Problems = append(res.Problems, Problem{c.Name, repoName,
					errs.E(op, errs.NotFound, fmt.Errorf("repository component not found at %s", c.OriginalPath))})
				continue
			}

			report, err := CheckComponent(c, upstream, local, s.Store)
			if err != nil {
				res.Problems = append(res.Problems, Problem{c.Name, repoName, errs.E(op, errs.Filesystem, err)})
				continue
			}
			res.Reports = append(res.Reports, report)
		}

		if err := snap.Cleanup(); err != nil {
			log.Warn().Err(err).Str("dir", snap.Dir).Msg("removing snapshot")
		}
	}

	return res, nil
}

// filterByName keeps the rows whose name was requested and returns the
// requested names that matched nothing.
func filterByName(rows []tracking.TrackedComponent, names []string) ([]tracking.TrackedComponent, []string) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	found := make(map[string]bool)
	var out []tracking.TrackedComponent
	for _, c := range rows {
		if want[c.Name] {
			out = append(out, c)
			found[c.Name] = true
		}
	}

	var unknown []string
	for _, n := range names {
		if !found[n] {
			unknown = append(unknown, n)
			found[n] = true
		}
	}
	return out, unknown
}

// groupByRepository groups rows by repository, in first-seen order.
func groupByRepository(rows []tracking.TrackedComponent) ([]string, map[string][]tracking.TrackedComponent) {
	var order []string
	groups := make(map[string][]tracking.TrackedComponent)
	for _, c := range rows {
		if _, ok := groups[c.RepositoryName]; !ok {
			order = append(order, c.RepositoryName)
		}
		groups[c.RepositoryName] = append(groups[c.RepositoryName], c)
	}
	return order, groups
}
