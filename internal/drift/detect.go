package drift

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/open-code-labs/open-code/internal/fsutil"
)

// NewFileDiff is the rendering recorded for a file that exists only locally.
const NewFileDiff = "New file added"

// Change is one differing file, relative to the component root.
type Change struct {
	FilePath  string `json:"filePath"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Diff      string `json:"diff,omitempty"`
}

// Detect returns the changes of localDir relative to upstreamDir. Files are
// visited in path order, upstream files first.
func Detect(upstreamDir, localDir string) ([]Change, error) {
	upstream, err := listFiles(upstreamDir)
	if err != nil {
		return nil, fmt.Errorf("listing upstream files: %w", err)
	}
	local, err := listFiles(localDir)
	if err != nil {
		return nil, fmt.Errorf("listing local files: %w", err)
	}

	localSet := make(map[string]bool, len(local))
	for _, f := range local {
		localSet[f] = true
	}
	upstreamSet := make(map[string]bool, len(upstream))
	for _, f := range upstream {
		upstreamSet[f] = true
	}

	var changes []Change
	for _, rel := range upstream {
		if !localSet[rel] {
			continue
		}
		before, err := os.ReadFile(filepath.Join(upstreamDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("reading upstream %s: %w", rel, err)
		}
		after, err := os.ReadFile(filepath.Join(localDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("reading local %s: %w", rel, err)
		}
		if bytes.Equal(before, after) {
			continue
		}
		c := diffText(string(before), string(after))
		c.FilePath = rel
		changes = append(changes, c)
	}

	for _, rel := range local {
		if upstreamSet[rel] {
			continue
		}
		changes = append(changes, Change{
			FilePath:  rel,
			Additions: 1,
			Diff:      NewFileDiff,
		})
	}

	return changes, nil
}

// diffText computes a line diff and renders it with two-character prefixes.
func diffText(before, after string) Change {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var c Change
	var out []string
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
			c.Additions += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			prefix = "- "
			c.Deletions += countLines(d.Text)
		}
		for _, line := range splitLines(d.Text) {
			out = append(out, prefix+line)
		}
	}
	c.Diff = strings.Join(out, "\n")
	return c
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// listFiles returns the slash-separated paths of the regular files under
// root, sorted. Excluded entries are skipped.
func listFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && fsutil.Excluded(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
