// Package errs defines the error taxonomy shared by the tracking engine.
//
// An Error carries the operation that failed and a Kind. The kind decides
// whether a failure ends the whole run (configuration, authentication) or
// only the component being processed (not-found, filesystem, remote).
package errs

import (
	"errors"
	"strings"
)

// Op names the operation being performed, e.g. "registry.Load".
type Op string

// Kind classifies an error.
type Kind int

const (
	Other Kind = iota
	ConfigMissing
	ConfigInvalid
	NotFound
	Filesystem
	Remote
	Auth
)

func (k Kind) String() string {
	switch k {
	case ConfigMissing:
		return "configuration missing"
	case ConfigInvalid:
		return "configuration invalid"
	case NotFound:
		return "not found"
	case Filesystem:
		return "filesystem error"
	case Remote:
		return "remote operation failed"
	case Auth:
		return "authentication failed"
	}
	return "error"
}

// Error is the error type returned across package boundaries.
type Error struct {
	Op   Op
	Kind Kind
	Err  error
}

// E builds an *Error. Kind defaults to the kind of a wrapped *Error.
func E(op Op, kind Kind, err error) *Error {
	if kind == Other {
		kind = KindOf(err)
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	b := new(strings.Builder)
	if e.Op != "" {
		b.WriteString(string(e.Op))
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind with no Op or
// wrapped error, so errors.Is(err, &errs.Error{Kind: errs.NotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

func pad(b *strings.Builder, s string) {
	if b.Len() > 0 {
		b.WriteString(s)
	}
}

// KindOf returns the kind of the outermost *Error in err's chain that has one.
func KindOf(err error) Kind {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return Other
		}
		if e.Kind != Other {
			return e.Kind
		}
		err = e.Err
	}
	return Other
}

// Fatal reports whether err must end the run rather than a single component.
func Fatal(err error) bool {
	switch KindOf(err) {
	case ConfigMissing, ConfigInvalid, Auth:
		return true
	}
	return false
}
