package drift

import (
	"fmt"

	"github.com/open-code-labs/open-code/internal/tracking"
)

// Report is the drift of one tracked component.
type Report struct {
	Component  tracking.TrackedComponent `json:"component"`
	HasChanges bool                      `json:"hasChanges"`
	Changes    []Change                  `json:"changes,omitempty"`
}

// Additions sums the added lines of all changes.
func (r Report) Additions() int {
	n := 0
	for _, c := range r.Changes {
		n += c.Additions
	}
	return n
}

// Deletions sums the removed lines of all changes.
func (r Report) Deletions() int {
	n := 0
	for _, c := range r.Changes {
		n += c.Deletions
	}
	return n
}

// Marker flags a tracked component as customized.
type Marker interface {
	MarkCustomized(name, repositoryName string) error
}

// CheckComponent detects drift of component and, when there is any, marks
// it customized through m so a later sync protects the local edits.
func CheckComponent(component tracking.TrackedComponent, upstreamDir, localDir string, m Marker) (Report, error) {
	changes, err := Detect(upstreamDir, localDir)
	if err != nil {
		return Report{Component: component}, err
	}

	r := Report{
		Component:  component,
		HasChanges: len(changes) > 0,
		Changes:    changes,
	}
	if r.HasChanges && m != nil {
		if err := m.MarkCustomized(component.Name, component.RepositoryName); err != nil {
			return r, fmt.Errorf("marking %s customized: %w", component.Name, err)
		}
		r.Component.Customized = true
	}
	return r, nil
}
