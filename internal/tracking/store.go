package tracking

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/open-code-labs/open-code/internal/branding"
	"github.com/open-code-labs/open-code/internal/errs"
	"github.com/open-code-labs/open-code/internal/fsutil"
	"github.com/open-code-labs/open-code/internal/schema"
)

// Store reads and writes the tracking file of one project root. Every
// mutation is a whole-file read-modify-write; one writer per project is
// assumed.
type Store struct {
	root string
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for sync timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns a Store for the project at root.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{root: root, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the tracking file location.
func (s *Store) Path() string {
	return filepath.Join(s.root, branding.TrackingFile())
}

// Load returns the tracking document, or nil when the file does not exist.
func (s *Store) Load() (*LocalTracking, error) {
	const op errs.Op = "tracking.Load"

	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.E(op, errs.Filesystem, err)
	}

	res, err := schema.Validate(schema.Tracking, data)
	if err != nil {
		return nil, errs.E(op, errs.ConfigInvalid, fmt.Errorf("%s: %w", s.Path(), err))
	}
	if !res.Valid {
		return nil, errs.E(op, errs.ConfigInvalid, fmt.Errorf("%s: %s", s.Path(), res.Summary()))
	}

	var lt LocalTracking
	if err := json.Unmarshal(data, &lt); err != nil {
		return nil, errs.E(op, errs.ConfigInvalid, fmt.Errorf("decoding %s: %w", s.Path(), err))
	}
	if lt.Components == nil {
		lt.Components = []TrackedComponent{}
	}
	seen := make(map[string]bool, len(lt.Components))
	for _, c := range lt.Components {
		if seen[c.Key()] {
			return nil, errs.E(op, errs.ConfigInvalid,
				fmt.Errorf("%s: duplicate component %q from repository %q", s.Path(), c.Name, c.RepositoryName))
		}
		seen[c.Key()] = true
	}
	return &lt, nil
}

// Create writes an empty tracking document and returns it.
func (s *Store) Create() (*LocalTracking, error) {
	lt := &LocalTracking{
		LastSync:   s.now().UTC(),
		Components: []TrackedComponent{},
	}
	if err := s.save(lt); err != nil {
		return nil, errs.E("tracking.Create", errs.Filesystem, err)
	}
	return lt, nil
}

// Upsert records a sync of component. An existing row with the same name and
// repository has its non-empty fields replaced; otherwise the row is
// appended. The sync timestamp always advances. The file is created when
// absent.
func (s *Store) Upsert(component TrackedComponent) (*TrackedComponent, error) {
	const op errs.Op = "tracking.Upsert"

	lt, err := s.loadOrNew()
	if err != nil {
		return nil, errs.E(op, errs.Other, err)
	}

	stamp := s.now().UTC()
	if !stamp.After(lt.LastSync) {
		stamp = lt.LastSync.Add(time.Nanosecond)
	}

	row := lt.Find(component.Name, component.RepositoryName)
	if row == nil {
		lt.Components = append(lt.Components, component)
		row = &lt.Components[len(lt.Components)-1]
	} else {
		mergeFields(row, component)
	}
	if !stamp.After(row.LastSynced) {
		stamp = row.LastSynced.Add(time.Nanosecond)
	}
	row.LastSynced = stamp
	lt.LastSync = stamp

	out := *row
	if err := s.save(lt); err != nil {
		return nil, errs.E(op, errs.Filesystem, err)
	}
	return &out, nil
}

// Find returns the component tracked under name and repositoryName. With an
// empty repositoryName the most recently synced row with that name is
// returned. The result is nil when nothing matches.
func (s *Store) Find(name, repositoryName string) (*TrackedComponent, error) {
	lt, err := s.Load()
	if err != nil || lt == nil {
		return nil, err
	}

	if repositoryName != "" {
		if c := lt.Find(name, repositoryName); c != nil {
			out := *c
			return &out, nil
		}
		return nil, nil
	}

	var latest *TrackedComponent
	matches := lt.Matches(name)
	for i := range matches {
		if latest == nil || matches[i].LastSynced.After(latest.LastSynced) {
			latest = &matches[i]
		}
	}
	return latest, nil
}

// Matches returns every tracked row named name.
func (s *Store) Matches(name string) ([]TrackedComponent, error) {
	lt, err := s.Load()
	if err != nil || lt == nil {
		return nil, err
	}
	return lt.Matches(name), nil
}

// MarkCustomized flags a tracked component as locally modified.
func (s *Store) MarkCustomized(name, repositoryName string) error {
	const op errs.Op = "tracking.MarkCustomized"

	lt, err := s.Load()
	if err != nil {
		return err
	}
	var row *TrackedComponent
	if lt != nil {
		row = lt.Find(name, repositoryName)
	}
	if row == nil {
		return errs.E(op, errs.NotFound, fmt.Errorf("component %q from repository %q is not tracked", name, repositoryName))
	}
	if row.Customized {
		return nil
	}

	row.Customized = true
	if err := s.save(lt); err != nil {
		return errs.E(op, errs.Filesystem, err)
	}
	return nil
}

func (s *Store) loadOrNew() (*LocalTracking, error) {
	lt, err := s.Load()
	if err != nil {
		return nil, err
	}
	if lt == nil {
		lt = &LocalTracking{Components: []TrackedComponent{}}
	}
	return lt, nil
}

func (s *Store) save(lt *LocalTracking) error {
	data, err := json.MarshalIndent(lt, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tracking file: %w", err)
	}
	return fsutil.WriteFileAtomic(s.Path(), append(data, '\n'), 0o644)
}

// mergeFields copies the non-empty fields of src into dst. Customized is
// always taken from src so a resync clears the flag.
func mergeFields(dst *TrackedComponent, src TrackedComponent) {
	if src.Version != "" {
		dst.Version = src.Version
	}
	if src.Path != "" {
		dst.Path = src.Path
	}
	if src.OriginalPath != "" {
		dst.OriginalPath = src.OriginalPath
	}
	dst.Customized = src.Customized
}
