package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/open-code-labs/open-code/internal/errs"
)

// TokenSource is a session-backed token provider such as the gh CLI.
type TokenSource interface {
	IsAuthenticated(ctx context.Context) bool
	Token(ctx context.Context) (string, error)
}

// Authenticator resolves the token used for a contribution run.
type Authenticator struct {
	// Host is consulted first.
	Host TokenSource

	// Configured returns a token from user settings or the environment.
	Configured func() string

	// Prompt asks the user for a token interactively.
	Prompt func() (string, error)
}

// Resolve returns a token. The host CLI session is preferred. With skipAuth
// the host CLI is the only allowed source; otherwise a configured token and
// then the prompt are tried. Every failure is an Auth error.
func (a Authenticator) Resolve(ctx context.Context, skipAuth bool) (string, error) {
	const op errs.Op = "github.Authenticate"
	log := zerolog.Ctx(ctx)

	if a.Host != nil && a.Host.IsAuthenticated(ctx) {
		token, err := a.Host.Token(ctx)
		if err != nil {
			return "", errs.E(op, errs.Auth, err)
		}
		log.Debug().Msg("using gh CLI token")
		return token, nil
	}

	if skipAuth {
		return "", errs.E(op, errs.Auth, errors.New("GitHub CLI is not authenticated; run `gh auth login` or drop --skip-auth"))
	}

	if a.Configured != nil {
		if token := strings.TrimSpace(a.Configured()); token != "" {
			log.Debug().Msg("using configured token")
			return token, nil
		}
	}

	if a.Prompt == nil {
		return "", errs.E(op, errs.Auth, errors.New("no GitHub token available"))
	}
	token, err := a.Prompt()
	if err != nil {
		return "", errs.E(op, errs.Auth, fmt.Errorf("reading token: %w", err))
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errs.E(op, errs.Auth, errors.New("token is required"))
	}
	return token, nil
}
