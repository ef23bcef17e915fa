//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	UpstreamDir string // working tree of the upstream repository
	UpstreamURL string // file URL of UpstreamDir
	ProjectDir  string // the consuming project
}

// setupTestEnv creates an upstream repository with a button and a card
// component, plus an empty project directory.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	env := &testEnv{
		UpstreamDir: t.TempDir(),
		ProjectDir:  t.TempDir(),
	}
	env.UpstreamURL = "file://" + filepath.ToSlash(env.UpstreamDir)

	t.Setenv("GIT_AUTHOR_NAME", "Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	runGit(t, env.UpstreamDir, "init", "-q")
	runGit(t, env.UpstreamDir, "symbolic-ref", "HEAD", "refs/heads/main")
	writeFile(t, filepath.Join(env.UpstreamDir, "components", "button", "index.ts"), "export const Button = 1\n")
	writeFile(t, filepath.Join(env.UpstreamDir, "components", "button", "README.md"), "# Button\n")
	writeFile(t, filepath.Join(env.UpstreamDir, "components", "card", "index.ts"), "export const Card = 1\n")
	commitAll(t, env.UpstreamDir, "initial")

	return env
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-c", "commit.gpgsign=false"}, args...)...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

func commitAll(t *testing.T, dir, message string) string {
	t.Helper()
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", message)
	return runGit(t, dir, "rev-parse", "HEAD")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to not exist", path)
	}
}
