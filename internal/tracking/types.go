package tracking

import "time"

// TrackedComponent is one synced component. Name and RepositoryName together
// identify it.
type TrackedComponent struct {
	Name           string    `json:"name"`
	RepositoryName string    `json:"repositoryName"`
	Version        string    `json:"version"`
	Path           string    `json:"path"`
	OriginalPath   string    `json:"originalPath"`
	LastSynced     time.Time `json:"lastSynced"`
	Customized     bool      `json:"customized"`
}

// Key returns the composite identity of the component.
func (c TrackedComponent) Key() string {
	return c.RepositoryName + "/" + c.Name
}

// LocalTracking is the document stored in the tracking file.
type LocalTracking struct {
	Schema     string             `json:"$schema,omitempty"`
	LastSync   time.Time          `json:"lastSync"`
	Components []TrackedComponent `json:"components"`
}

// Find returns the component identified by name and repositoryName, or nil.
func (lt *LocalTracking) Find(name, repositoryName string) *TrackedComponent {
	for i := range lt.Components {
		c := &lt.Components[i]
		if c.Name == name && c.RepositoryName == repositoryName {
			return c
		}
	}
	return nil
}

// Matches returns every row named name, across repositories.
func (lt *LocalTracking) Matches(name string) []TrackedComponent {
	var out []TrackedComponent
	for _, c := range lt.Components {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}
