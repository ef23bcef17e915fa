package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/open-code-labs/open-code/internal/branding"
	"github.com/open-code-labs/open-code/internal/errs"
	"github.com/open-code-labs/open-code/internal/fsutil"
	"github.com/open-code-labs/open-code/internal/schema"
)

type format int

const (
	formatJSON format = iota
	formatYAML
	formatPackageJSON
)

// location is where a registry was found.
type location struct {
	path   string
	format format
}

// SearchPlaces returns the file names checked, in order, when locating a
// registry inside a project root.
func SearchPlaces() []string {
	base := branding.RegistryBaseName()
	return []string{
		branding.RegistryFile(),
		base + ".yaml",
		base + ".yml",
		"package.json",
	}
}

// Path returns the file the registry would be created at for root.
func Path(root string) string {
	return filepath.Join(root, branding.RegistryFile())
}

// Exists reports whether root contains a registry in any search place.
func Exists(root string) (bool, error) {
	loc, _, err := locate(root)
	if err != nil {
		return false, err
	}
	return loc != nil, nil
}

// Load reads, validates and defaults the registry under root. A missing
// registry is not an error: Load returns nil, nil.
func Load(root string) (*Registry, error) {
	const op errs.Op = "registry.Load"

	loc, data, err := locate(root)
	if err != nil {
		return nil, errs.E(op, errs.Filesystem, err)
	}
	if loc == nil {
		return nil, nil
	}

	reg, err := parse(data, loc.format)
	if err != nil {
		return nil, errs.E(op, errs.ConfigInvalid, fmt.Errorf("%s: %w", loc.path, err))
	}
	return reg, nil
}

// LoadRequired is Load, with a missing registry reported as ConfigMissing.
func LoadRequired(root string) (*Registry, error) {
	reg, err := Load(root)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, errs.E("registry.Load", errs.ConfigMissing,
			fmt.Errorf("no %s found in %s", branding.RegistryFile(), root))
	}
	return reg, nil
}

// Create writes a new registry to root. It refuses to overwrite an existing
// registry in any search place.
func Create(root string, reg *Registry) error {
	const op errs.Op = "registry.Create"

	loc, _, err := locate(root)
	if err != nil {
		return errs.E(op, errs.Filesystem, err)
	}
	if loc != nil {
		return errs.E(op, errs.ConfigInvalid, fmt.Errorf("configuration file already exists: %s", loc.path))
	}

	normalized := *reg
	applyDefaults(&normalized)
	if err := check(&normalized); err != nil {
		return errs.E(op, errs.ConfigInvalid, err)
	}

	if err := write(Path(root), formatJSON, &normalized); err != nil {
		return errs.E(op, errs.Filesystem, err)
	}
	return nil
}

// Update shallow-merges patch over the persisted registry, re-validates the
// result and writes it back in the same format. A registry read from
// package.json is written to the dedicated registry file instead.
func Update(root string, patch Patch) (*Registry, error) {
	const op errs.Op = "registry.Update"

	loc, data, err := locate(root)
	if err != nil {
		return nil, errs.E(op, errs.Filesystem, err)
	}
	if loc == nil {
		return nil, errs.E(op, errs.ConfigMissing, fmt.Errorf("no %s found in %s", branding.RegistryFile(), root))
	}

	merged, err := merge(data, loc.format, patch)
	if err != nil {
		return nil, errs.E(op, errs.ConfigInvalid, fmt.Errorf("%s: %w", loc.path, err))
	}
	reg, err := parse(merged, formatJSON)
	if err != nil {
		return nil, errs.E(op, errs.ConfigInvalid, err)
	}

	target, f := loc.path, loc.format
	if f == formatPackageJSON {
		target, f = Path(root), formatJSON
	}
	if err := write(target, f, reg); err != nil {
		return nil, errs.E(op, errs.Filesystem, err)
	}
	return reg, nil
}

// AddRepository appends repo to the registry under root.
func AddRepository(root string, repo RepositoryConfig) (*Registry, error) {
	const op errs.Op = "registry.AddRepository"

	reg, err := LoadRequired(root)
	if err != nil {
		return nil, err
	}
	if reg.Repository(repo.Name) != nil {
		return nil, errs.E(op, errs.ConfigInvalid, fmt.Errorf("repository %q already exists", repo.Name))
	}

	repos := append(append([]RepositoryConfig{}, reg.Repositories...), repo)
	return Update(root, Patch{Repositories: repos})
}

// locate checks the search places and returns the first registry found
// together with its raw document. A package.json without the registry key
// does not count as a registry.
func locate(root string) (*location, []byte, error) {
	key := branding.CLIName()
	for i, name := range SearchPlaces() {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}

		switch {
		case i == 0:
			return &location{path: path, format: formatJSON}, data, nil
		case name == "package.json":
			var pkg map[string]json.RawMessage
			if err := json.Unmarshal(data, &pkg); err != nil {
				return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
			}
			section, ok := pkg[key]
			if !ok || bytes.Equal(bytes.TrimSpace(section), []byte("null")) {
				continue
			}
			return &location{path: path, format: formatPackageJSON}, section, nil
		default:
			return &location{path: path, format: formatYAML}, data, nil
		}
	}
	return nil, nil, nil
}

// toJSON returns the document as JSON. YAML registries are converted;
// JSON is passed through since YAML rejects tab indentation.
func toJSON(data []byte, f format) ([]byte, error) {
	if f == formatYAML {
		return schema.Decode(data)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("parsing document: invalid JSON")
	}
	return data, nil
}

// parse runs a raw document through the schema, the typed decoder, the
// defaults and the semantic checks.
func parse(data []byte, f format) (*Registry, error) {
	doc, err := toJSON(data, f)
	if err != nil {
		return nil, err
	}

	res, err := schema.Validate(schema.Registry, doc)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, fmt.Errorf("schema validation failed: %s", res.Summary())
	}

	var reg Registry
	if err := json.Unmarshal(doc, &reg); err != nil {
		return nil, fmt.Errorf("decoding registry: %w", err)
	}
	applyDefaults(&reg)
	if err := check(&reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Check reports whether reg would be accepted by Create, after defaults are
// applied. reg itself is not modified.
func Check(reg *Registry) error {
	normalized := *reg
	normalized.Repositories = append([]RepositoryConfig(nil), reg.Repositories...)
	applyDefaults(&normalized)
	if err := check(&normalized); err != nil {
		return errs.E("registry.Check", errs.ConfigInvalid, err)
	}
	return nil
}

func check(reg *Registry) error {
	if problems := Validate(reg); len(problems) > 0 {
		return fmt.Errorf("invalid registry: %s", strings.Join(problems, "; "))
	}
	return nil
}

// merge overlays the present keys of patch onto the top level of the raw
// document.
func merge(data []byte, f format, patch Patch) ([]byte, error) {
	doc, err := toJSON(data, f)
	if err != nil {
		return nil, err
	}
	var current map[string]json.RawMessage
	if err := json.Unmarshal(doc, &current); err != nil {
		return nil, fmt.Errorf("registry is not an object: %w", err)
	}
	if current == nil {
		current = map[string]json.RawMessage{}
	}

	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encoding patch: %w", err)
	}
	var changes map[string]json.RawMessage
	if err := json.Unmarshal(raw, &changes); err != nil {
		return nil, fmt.Errorf("decoding patch: %w", err)
	}
	for k, v := range changes {
		current[k] = v
	}

	return json.Marshal(current)
}

func write(path string, f format, reg *Registry) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case formatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(reg); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	default:
		data, err = json.MarshalIndent(reg, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	return fsutil.WriteFileAtomic(path, data, 0o644)
}

// Replace overwrites the registry under root with reg, keeping the format of
// the existing file. The new document is validated before anything is
// written and the write is atomic, so a rejected registry leaves the old one
// in place. A registry kept inside package.json is not touched.
func Replace(root string, reg *Registry) error {
	const op errs.Op = "registry.Replace"

	loc, _, err := locate(root)
	if err != nil {
		return errs.E(op, errs.Filesystem, err)
	}
	target, f := Path(root), formatJSON
	if loc != nil {
		if loc.format == formatPackageJSON {
			return errs.E(op, errs.ConfigInvalid,
				fmt.Errorf("registry is embedded in %s; remove the %q key first", loc.path, branding.CLIName()))
		}
		target, f = loc.path, loc.format
	}

	normalized := *reg
	applyDefaults(&normalized)
	if err := check(&normalized); err != nil {
		return errs.E(op, errs.ConfigInvalid, err)
	}
	if err := write(target, f, &normalized); err != nil {
		return errs.E(op, errs.Filesystem, err)
	}
	return nil
}
