package registry

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// supportedFormats is the constraint a persisted registry version must meet.
// Registries are never migrated between major versions.
const supportedFormats = "^1"

// applyDefaults fills in values the file format allows to be omitted.
func applyDefaults(r *Registry) {
	if r.Version == "" {
		r.Version = FormatVersion
	}
	if r.ComponentDirectories.Base == "" {
		r.ComponentDirectories.Base = DefaultBaseDir
	}
	if r.Repositories == nil {
		r.Repositories = []RepositoryConfig{}
	}
	for i := range r.Repositories {
		repo := &r.Repositories[i]
		if repo.Branch == "" {
			repo.Branch = DefaultBranch
		}
		if repo.Components == nil {
			repo.Components = []ComponentDescriptor{}
		}
	}
}

// Validate checks the registry invariants that the JSON schema cannot
// express and returns one message per violation.
func Validate(r *Registry) []string {
	var problems []string

	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "name must not be empty")
	}

	if r.Version != "" {
		if msg := checkFormatVersion(r.Version); msg != "" {
			problems = append(problems, msg)
		}
	}

	seenRepos := make(map[string]bool)
	for i, repo := range r.Repositories {
		where := fmt.Sprintf("repositories[%d]", i)
		if strings.TrimSpace(repo.Name) == "" {
			problems = append(problems, where+": name must not be empty")
		} else {
			where = fmt.Sprintf("repository %q", repo.Name)
			if seenRepos[repo.Name] {
				problems = append(problems, where+": duplicate repository name")
			}
			seenRepos[repo.Name] = true
		}

		if !validURL(repo.URL) {
			problems = append(problems, fmt.Sprintf("%s: invalid url %q", where, repo.URL))
		}

		seenComponents := make(map[string]bool)
		for _, c := range repo.Components {
			if strings.TrimSpace(c.Name) == "" {
				problems = append(problems, where+": component name must not be empty")
				continue
			}
			if seenComponents[c.Name] {
				problems = append(problems, fmt.Sprintf("%s: duplicate component %q", where, c.Name))
			}
			seenComponents[c.Name] = true

			if !ValidComponentName(c.Name) {
				problems = append(problems, fmt.Sprintf("%s: component name %q must be a single path element", where, c.Name))
			}
			if !validComponentPath(c.Path) {
				problems = append(problems, fmt.Sprintf("%s: component %q has invalid path %q", where, c.Name, c.Path))
			}
		}
	}

	return problems
}

func checkFormatVersion(v string) string {
	version, err := semver.NewVersion(strings.TrimPrefix(v, "v"))
	if err != nil {
		return fmt.Sprintf("version %q is not a valid semantic version", v)
	}
	c, err := semver.NewConstraint(supportedFormats)
	if err != nil {
		return fmt.Sprintf("invalid format constraint: %v", err)
	}
	if !c.Check(version) {
		return fmt.Sprintf("registry format %s is not supported by this build (supported: %s)", v, supportedFormats)
	}
	return ""
}

// scpURL matches the scp-like form git accepts for SSH remotes, such as
// git@github.com:org/repo.git.
var scpURL = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[^\s:][^\s]*$`)

// ValidComponentName reports whether name can be used as a directory name
// below the component base directory.
func ValidComponentName(name string) bool {
	switch name {
	case "", ".", "..":
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}

// validURL accepts absolute URLs with a host, file URLs with a path and
// scp-like SSH remotes.
func validURL(raw string) bool {
	if scpURL.MatchString(raw) {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	if u.Scheme == "file" {
		return u.Path != ""
	}
	return u.Host != ""
}

// validComponentPath requires a repository-relative path that stays inside
// the repository.
func validComponentPath(p string) bool {
	if strings.TrimSpace(p) == "" {
		return false
	}
	p = strings.ReplaceAll(p, "\\", "/")
	if path.IsAbs(p) {
		return false
	}
	clean := path.Clean(p)
	return clean != ".." && !strings.HasPrefix(clean, "../")
}
