package registry

// DefaultBranch is used when a repository does not name one.
const DefaultBranch = "main"

// DefaultBaseDir is where components are materialized when the registry does
// not configure componentDirectories.base.
const DefaultBaseDir = "./components"

// FormatVersion is the registry format written by this build.
const FormatVersion = "1.0.0"

// Registry is the project-level record of upstream repositories.
type Registry struct {
	Schema               string               `json:"$schema,omitempty" yaml:"$schema,omitempty"`
	Version              string               `json:"version,omitempty" yaml:"version,omitempty"`
	Name                 string               `json:"name" yaml:"name"`
	Repositories         []RepositoryConfig   `json:"repositories" yaml:"repositories"`
	ComponentDirectories ComponentDirectories `json:"componentDirectories" yaml:"componentDirectories"`
}

// RepositoryConfig is one configured upstream source.
type RepositoryConfig struct {
	Name       string                `json:"name" yaml:"name"`
	URL        string                `json:"url" yaml:"url"`
	Branch     string                `json:"branch" yaml:"branch"`
	Components []ComponentDescriptor `json:"components" yaml:"components"`
}

// ComponentDescriptor names a component and its path relative to the
// repository root. Names are unique within one repository only.
type ComponentDescriptor struct {
	Name         string   `json:"name" yaml:"name"`
	Path         string   `json:"path" yaml:"path"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// ComponentDirectories configures where synced components land locally.
type ComponentDirectories struct {
	Base  string `json:"base" yaml:"base"`
	UI    string `json:"ui,omitempty" yaml:"ui,omitempty"`
	Lib   string `json:"lib,omitempty" yaml:"lib,omitempty"`
	Utils string `json:"utils,omitempty" yaml:"utils,omitempty"`
}

// Patch is a shallow, top-level update of a registry. Nil fields are left
// untouched; a non-nil field replaces the persisted value wholesale.
type Patch struct {
	Name                 *string               `json:"name,omitempty"`
	Version              *string               `json:"version,omitempty"`
	Repositories         []RepositoryConfig    `json:"repositories,omitempty"`
	ComponentDirectories *ComponentDirectories `json:"componentDirectories,omitempty"`
}

// Repository returns the repository with the given name, or nil.
func (r *Registry) Repository(name string) *RepositoryConfig {
	for i := range r.Repositories {
		if r.Repositories[i].Name == name {
			return &r.Repositories[i]
		}
	}
	return nil
}

// RepositoryNames returns the configured repository names in order.
func (r *Registry) RepositoryNames() []string {
	names := make([]string, len(r.Repositories))
	for i, repo := range r.Repositories {
		names[i] = repo.Name
	}
	return names
}

// BaseDir returns the configured component base directory.
func (r *Registry) BaseDir() string {
	if r.ComponentDirectories.Base == "" {
		return DefaultBaseDir
	}
	return r.ComponentDirectories.Base
}

// Component returns the component with the given name, or nil.
func (rc *RepositoryConfig) Component(name string) *ComponentDescriptor {
	for i := range rc.Components {
		if rc.Components[i].Name == name {
			return &rc.Components[i]
		}
	}
	return nil
}

// ComponentNames returns the repository's component names in order.
func (rc *RepositoryConfig) ComponentNames() []string {
	names := make([]string, len(rc.Components))
	for i, c := range rc.Components {
		names[i] = c.Name
	}
	return names
}
