package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/open-code-labs/open-code/internal/branding"
	"github.com/open-code-labs/open-code/internal/errs"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// Client calls the GitHub REST API with a token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API endpoint, e.g. a GitHub
// Enterprise server or a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient returns a Client authenticating with token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultAPIURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fork is a fork owned by the authenticated user.
type Fork struct {
	HTMLURL  string `json:"html_url"`
	CloneURL string `json:"clone_url"`
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// CreateFork forks the repository at repoURL. An existing fork is returned
// as is.
func (c *Client) CreateFork(ctx context.Context, repoURL string) (*Fork, error) {
	const op errs.Op = "github.CreateFork"

	repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, errs.E(op, errs.Remote, err)
	}

	var fork Fork
	path := fmt.Sprintf("/repos/%s/%s/forks", repo.Owner, repo.Name)
	if err := c.post(ctx, path, nil, &fork); err != nil {
		return nil, errs.E(op, errs.Other, fmt.Errorf("creating fork of %s: %w", repo, err))
	}
	if fork.Owner.Login == "" {
		if r, err := ParseRepoURL(fork.HTMLURL); err == nil {
			fork.Owner.Login = r.Owner
		}
	}
	if fork.CloneURL == "" && fork.HTMLURL != "" {
		fork.CloneURL = fork.HTMLURL + ".git"
	}
	return &fork, nil
}

// PullRequest describes a pull request from a fork branch into upstream.
type PullRequest struct {
	UpstreamURL string
	ForkOwner   string
	Branch      string
	Base        string
	Title       string
	Body        string
}

// CreatePullRequest opens pr against its upstream and returns the pull
// request's web URL.
func (c *Client) CreatePullRequest(ctx context.Context, pr PullRequest) (string, error) {
	const op errs.Op = "github.CreatePullRequest"

	repo, err := ParseRepoURL(pr.UpstreamURL)
	if err != nil {
		return "", errs.E(op, errs.Remote, err)
	}

	req := map[string]string{
		"title": pr.Title,
		"body":  pr.Body,
		"head":  pr.ForkOwner + ":" + pr.Branch,
		"base":  pr.Base,
	}
	var resp struct {
		HTMLURL string `json:"html_url"`
	}
	path := fmt.Sprintf("/repos/%s/%s/pulls", repo.Owner, repo.Name)
	if err := c.post(ctx, path, req, &resp); err != nil {
		return "", errs.E(op, errs.Other, fmt.Errorf("creating pull request on %s: %w", repo, err))
	}
	return resp.HTMLURL, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", branding.CLIName())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	zerolog.Ctx(ctx).Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("github request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.E("", errs.Remote, fmt.Errorf("calling GitHub API: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.E("", errs.Remote, fmt.Errorf("reading response body: %w", err))
	}

	zerolog.Ctx(ctx).Debug().Int("status", resp.StatusCode).Msg("github response")

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errs.E("", errs.Auth, fmt.Errorf("GitHub rejected the token: %s", apiMessage(data)))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return errs.E("", errs.Remote, fmt.Errorf("GitHub API returned status %d: %s", resp.StatusCode, apiMessage(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errs.E("", errs.Remote, fmt.Errorf("parsing response JSON: %w", err))
	}
	return nil
}

// apiMessage extracts the "message" field of an error response, falling
// back to the raw body.
func apiMessage(data []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &e) == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(data))
}
