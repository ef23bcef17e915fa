package gitutil

import (
	"regexp"
	"strings"
)

// ErrorType classifies a failed git invocation from its stderr.
type ErrorType int

const (
	Unknown ErrorType = iota
	UnknownReference
	AuthRequired
	RepositoryNotFound
	RepositoryUnavailable
	NothingToCommit
)

func (t ErrorType) String() string {
	switch t {
	case UnknownReference:
		return "unknown reference"
	case AuthRequired:
		return "authentication required"
	case RepositoryNotFound:
		return "repository not found"
	case RepositoryUnavailable:
		return "repository unavailable"
	case NothingToCommit:
		return "nothing to commit"
	}
	return "unknown"
}

// ExecError is returned when git exits with a non-zero status.
type ExecError struct {
	Type   ErrorType
	Args   []string
	Err    error
	StdErr string
	StdOut string
}

func (e *ExecError) Error() string {
	b := new(strings.Builder)
	b.WriteString("git ")
	b.WriteString(strings.Join(e.Args, " "))
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if msg := strings.TrimSpace(e.StdErr); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	} else if msg := strings.TrimSpace(e.StdOut); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return redact(b.String())
}

func (e *ExecError) Unwrap() error { return e.Err }

var credentialsPattern = regexp.MustCompile(`(://[^/:@\s]+):[^/@\s]+@`)

// redact hides passwords embedded in URLs.
func redact(s string) string {
	return credentialsPattern.ReplaceAllString(s, "${1}:xxxxx@")
}

var notFoundPattern = regexp.MustCompile(`fatal: repository '.*' not found`)

func determineErrorType(stdout, stderr string) ErrorType {
	switch {
	case strings.Contains(stderr, "Remote branch") && strings.Contains(stderr, "not found"),
		strings.Contains(stderr, "unknown revision or path not in the working tree"):
		return UnknownReference
	case strings.Contains(stderr, "could not read Username"),
		strings.Contains(stderr, "Authentication failed"):
		return AuthRequired
	case strings.Contains(stderr, "Could not resolve host"):
		return RepositoryUnavailable
	case notFoundPattern.MatchString(stderr),
		strings.Contains(stderr, "does not appear to be a git repository"):
		return RepositoryNotFound
	case strings.Contains(stdout, "nothing to commit"):
		return NothingToCommit
	}
	return Unknown
}
