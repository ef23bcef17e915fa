package registry

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// componentRoots are the directories of a repository snapshot whose
// immediate subdirectories are offered as components.
var componentRoots = []string{
	"components",
	"src/components",
	"lib",
	"src/lib",
	"ui",
	"src/ui",
}

// DiscoverComponents lists candidate components in a repository snapshot.
// The first directory with a given name wins.
func DiscoverComponents(snapshotDir string) ([]ComponentDescriptor, error) {
	seen := make(map[string]bool)
	var found []ComponentDescriptor

	for _, root := range componentRoots {
		entries, err := os.ReadDir(filepath.Join(snapshotDir, filepath.FromSlash(root)))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", root, err)
		}

		for _, e := range entries {
			name := e.Name()
			if !e.IsDir() || seen[name] || name[0] == '.' || name == "node_modules" {
				continue
			}
			seen[name] = true
			found = append(found, ComponentDescriptor{
				Name:        name,
				Path:        path.Join(root, name),
				Description: name + " component",
			})
		}
	}

	return found, nil
}
