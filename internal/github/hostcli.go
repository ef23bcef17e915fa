package github

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// HostCLI is the gh command line tool.
type HostCLI struct {
	// Bin is the executable to run. Defaults to "gh".
	Bin string
}

func (h HostCLI) bin() string {
	if h.Bin == "" {
		return "gh"
	}
	return h.Bin
}

// Available reports whether the CLI is installed.
func (h HostCLI) Available() bool {
	_, err := exec.LookPath(h.bin())
	return err == nil
}

// IsAuthenticated reports whether gh has a logged-in session.
func (h HostCLI) IsAuthenticated(ctx context.Context) bool {
	if !h.Available() {
		return false
	}
	return exec.CommandContext(ctx, h.bin(), "auth", "status").Run() == nil
}

// Token returns the session token of the gh CLI.
func (h HostCLI) Token(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, h.bin(), "auth", "token").Output()
	if err != nil {
		return "", fmt.Errorf("reading token from %s: %w", h.bin(), err)
	}
	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", errors.New("gh returned an empty token")
	}
	return token, nil
}
