package github

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Repo identifies a repository on the hosting service.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string { return r.Owner + "/" + r.Name }

var repoURLPattern = regexp.MustCompile(`github\.com[/:]([^/]+)/([^/]+?)(?:\.git)?/?$`)

// ParseRepoURL extracts owner and name from an https or ssh GitHub URL.
func ParseRepoURL(raw string) (Repo, error) {
	m := repoURLPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Repo{}, fmt.Errorf("invalid GitHub URL: %s", raw)
	}
	return Repo{Owner: m[1], Name: m[2]}, nil
}

// WithToken returns an https clone URL that carries token as credentials.
// Non-https URLs and an empty token are returned unchanged.
func WithToken(cloneURL, token string) string {
	if token == "" {
		return cloneURL
	}
	u, err := url.Parse(cloneURL)
	if err != nil || u.Scheme != "https" {
		return cloneURL
	}
	u.User = url.UserPassword("x-access-token", token)
	return u.String()
}
