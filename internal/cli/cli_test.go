package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/open-code-labs/open-code/internal/errs"
	"github.com/open-code-labs/open-code/internal/github"
	"github.com/open-code-labs/open-code/internal/registry"
	"github.com/open-code-labs/open-code/internal/tracking"
)

// resetFlags restores every flag of cmd and its children to its default so
// package-level flag variables do not leak between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes the command tree with args against an isolated home
// directory and returns combined stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// isolate points the user settings at a temporary home and clears
// environment that would leak a token or identity into the run.
func isolate(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("OPEN_CODE_GITHUB_TOKEN", "")
	t.Setenv("OPEN_CODE_GITHUB_API_URL", "")
	t.Setenv("OPEN_CODE_LOG_LEVEL", "")
	t.Setenv("GIT_AUTHOR_NAME", "Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	prev := hostCLI
	hostCLI = github.HostCLI{Bin: "open-code-test-missing-gh"}
	t.Cleanup(func() { hostCLI = prev })
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	full := append([]string{"-c", "commit.gpgsign=false"}, args...)
	cmd := exec.Command("git", full...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// newUpstream creates a git repository on main with two components and
// returns its directory and file URL.
func newUpstream(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	git(t, dir, "init", "-q")
	git(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	writeFile(t, filepath.Join(dir, "components", "button", "index.ts"), "export const Button = 1\n")
	writeFile(t, filepath.Join(dir, "components", "card", "index.ts"), "export const Card = 1\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-q", "-m", "initial")
	return dir, "file://" + filepath.ToSlash(dir)
}

func TestVersion(t *testing.T) {
	isolate(t)
	buildVersion, buildCommit, buildDate = "1.2.3", "abc", "today"

	out, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if want := "open-code version 1.2.3 (commit: abc, built: today)\n"; out != want {
		t.Errorf("version = %q, want %q", out, want)
	}

	out, err = runCLI(t, "", "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != "1.2.3\n" {
		t.Errorf("version --short = %q", out)
	}
}

func TestConfigSetGet(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "", "config", "set", "component_dir", "./ui")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Set component_dir = ./ui") {
		t.Errorf("set output = %q", out)
	}

	out, err = runCLI(t, "", "config", "get", "component_dir")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "./ui" {
		t.Errorf("get = %q, want ./ui", out)
	}

	out, err = runCLI(t, "", "config", "set", "github.token", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "secret") {
		t.Errorf("token echoed: %q", out)
	}

	if _, err := runCLI(t, "", "config", "set", "nope", "x"); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "", "--log-level", "loud", "version"); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestCommandsRequireConfiguration(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	for _, args := range [][]string{
		{"sync"},
		{"detect-changes"},
		{"contribute", "button"},
		{"list"},
		{"add-repo", "--name", "x", "--url", "https://example.com/x.git"},
	} {
		_, err := runCLI(t, "", append([]string{"--cwd", dir}, args...)...)
		if errs.KindOf(err) != errs.ConfigMissing {
			t.Errorf("%v: kind = %v, want ConfigMissing (err %v)", args, errs.KindOf(err), err)
		}
	}
}

func TestReportErrorHints(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, errs.E("registry.Load", errs.ConfigMissing, errors.New("no configuration")))
	if !strings.Contains(buf.String(), "open-code init") {
		t.Errorf("missing init hint: %q", buf.String())
	}

	buf.Reset()
	reportError(&buf, errs.E("github.Authenticate", errs.Auth, errors.New("no token")))
	if !strings.Contains(buf.String(), "gh auth login") {
		t.Errorf("missing auth hint: %q", buf.String())
	}
}

func TestRepositoryName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/ui.git", "ui"},
		{"https://github.com/acme/ui", "ui"},
		{"https://github.com/acme/ui/", "ui"},
		{"git@github.com:acme/design-system.git", "design-system"},
		{"file:///tmp/upstream", "upstream"},
	}
	for _, tt := range tests {
		if got := repositoryName(tt.url); got != tt.want {
			t.Errorf("repositoryName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestInitRefusesExistingConfiguration(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".open-code.json"), `{"name": "demo", "repositories": []}`)

	_, err := runCLI(t, "", "--cwd", dir, "init", "--repo", "https://github.com/acme/ui")
	if errs.KindOf(err) != errs.ConfigInvalid {
		t.Fatalf("kind = %v, want ConfigInvalid (err %v)", errs.KindOf(err), err)
	}
}

func TestInitRequiresRepository(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	_, err := runCLI(t, "", "--cwd", dir, "init")
	if errs.KindOf(err) != errs.ConfigInvalid {
		t.Fatalf("kind = %v, want ConfigInvalid (err %v)", errs.KindOf(err), err)
	}
}

func TestListJSON(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	reg := &registry.Registry{
		Name: "demo",
		Repositories: []registry.RepositoryConfig{{
			Name:   "ui",
			URL:    "https://github.com/acme/ui",
			Branch: "main",
			Components: []registry.ComponentDescriptor{
				{Name: "button", Path: "components/button"},
				{Name: "card", Path: "components/card"},
			},
		}},
	}
	if err := registry.Create(dir, reg); err != nil {
		t.Fatal(err)
	}
	store := tracking.NewStore(dir)
	for _, c := range []tracking.TrackedComponent{
		{Name: "button", RepositoryName: "ui", Version: "abc", Path: "button", OriginalPath: "components/button", Customized: true},
		{Name: "gone", RepositoryName: "old", Version: "def", Path: "gone", OriginalPath: "components/gone"},
	} {
		if _, err := store.Upsert(c); err != nil {
			t.Fatal(err)
		}
	}

	out, err := runCLI(t, "", "--cwd", dir, "list", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var entries []listEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	type row struct{ Repository, Component, State, Version string }
	var got []row
	for _, e := range entries {
		got = append(got, row{e.Repository, e.Component, e.State, e.Version})
	}
	want := []row{
		{"ui", "button", stateCustomized, "abc"},
		{"ui", "card", stateAvailable, ""},
		{"old", "gone", stateOrphaned, "def"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	out, err = runCLI(t, "", "--cwd", dir, "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"REPOSITORY", "button", "customized", "available"} {
		if !strings.Contains(out, s) {
			t.Errorf("table output missing %q:\n%s", s, out)
		}
	}

	if _, err := runCLI(t, "", "--cwd", dir, "list", "--repo", "missing"); errs.KindOf(err) != errs.NotFound {
		t.Errorf("unknown repo: kind = %v, want NotFound", errs.KindOf(err))
	}
}
