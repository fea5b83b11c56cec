// Package store persists plugin option records under the host's data
// directory. Records are plain JSON objects, one file per plugin, matching
// the host's on-disk configuration contract.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joelkoz/signalk-plugin-base/errors"
	"github.com/joelkoz/signalk-plugin-base/plugin"
)

// configSubdir is the directory under the data dir holding per-plugin
// option files.
const configSubdir = "plugin-config-data"

// Store reads and writes plugin option records.
type Store struct {
	dirs plugin.DirectoryResolver
}

// New creates a store rooted at the resolver's data directory.
func New(dirs plugin.DirectoryResolver) *Store {
	return &Store{dirs: dirs}
}

// Path returns the on-disk location of a plugin's option record.
func (s *Store) Path(pluginID string) string {
	return filepath.Join(s.dirs.DataDirectory(), configSubdir, pluginID+".json")
}

// Load returns the persisted option record for a plugin, or an empty record
// when none has been saved yet.
func (s *Store) Load(pluginID string) (map[string]any, error) {
	raw, err := os.ReadFile(s.Path(pluginID))
	if os.IsNotExist(err) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "Store", "Load", "option file read")
	}

	var options map[string]any
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil, errors.WrapInvalid(err, "Store", "Load", "option file parse")
	}
	return options, nil
}

// Save writes the option record atomically (temp file plus rename) so a
// crash mid-write never leaves a torn record behind.
func (s *Store) Save(pluginID string, options map[string]any) error {
	if options == nil {
		options = make(map[string]any)
	}

	raw, err := json.MarshalIndent(options, "", "  ")
	if err != nil {
		return errors.WrapInvalid(err, "Store", "Save", "option serialization")
	}

	path := s.Path(pluginID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "Store", "Save", "config directory creation")
	}

	tmp := fmt.Sprintf("%s.tmp", path)
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrap(err, "Store", "Save", "temp file write")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "Store", "Save", "atomic rename")
	}
	return nil
}

// Delete removes a plugin's persisted record. Removing a record that does
// not exist is not an error.
func (s *Store) Delete(pluginID string) error {
	err := os.Remove(s.Path(pluginID))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "Store", "Delete", "option file removal")
	}
	return nil
}
