package gitutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Runner runs git commands in a directory.
type Runner struct {
	gitPath string

	// Dir is the directory the commands are run in.
	Dir string
}

// RunResult holds the captured output of a successful command.
type RunResult struct {
	Stdout string
	Stderr string
}

// NewRunner returns a Runner for dir. It fails when git is not on PATH.
func NewRunner(dir string) (*Runner, error) {
	p, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git is required but not found in PATH: %w", err)
	}
	return &Runner{gitPath: p, Dir: dir}, nil
}

// Run runs a git command. Omit the leading "git".
func (r *Runner) Run(ctx context.Context, args ...string) (RunResult, error) {
	zerolog.Ctx(ctx).Debug().Str("dir", r.Dir).Str("args", redact(strings.Join(args, " "))).Msg("git")

	cmd := exec.CommandContext(ctx, r.gitPath, args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return RunResult{}, &ExecError{
			Type:   determineErrorType(stdout.String(), stderr.String()),
			Args:   args,
			Err:    err,
			StdOut: stdout.String(),
			StdErr: stderr.String(),
		}
	}
	return RunResult{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}
