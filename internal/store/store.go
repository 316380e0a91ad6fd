// SPDX-License-Identifier: MPL-2.0

// Package store manages the installed-version tree under the data root:
// the versions directory and the "current" pointer.
//
// Version identifiers are opaque strings. The launcher never orders them
// semantically; List sorts lexicographically for stable output only.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"skiff-launcher/internal/config"
)

// ErrRemoveCurrent is returned when removal targets the version the
// "current" pointer selects.
var ErrRemoveCurrent = errors.New("refusing to remove the current version")

// NotInstalledError reports a version that is not present in the versions
// directory, together with what is installed so callers can enumerate the
// alternatives.
type NotInstalledError struct {
	Version   string
	Installed []string
}

func (e *NotInstalledError) Error() string {
	if len(e.Installed) == 0 {
		return fmt.Sprintf("version %q is not installed (no versions installed)", e.Version)
	}
	return fmt.Sprintf("version %q is not installed (installed: %s)", e.Version, strings.Join(e.Installed, ", "))
}

// Current describes what the "current" pointer selects.
type Current struct {
	// Name is the version identifier, or "current" for the legacy layout.
	Name string

	// Dir is the directory holding that version's files.
	Dir string

	// Legacy is set when "current" is a plain directory from an older
	// installer rather than a symlink into the versions directory.
	Legacy bool
}

// Store reads and mutates the version tree.
type Store struct {
	versionsDir string
	currentPath string
}

func New(cfg config.Config) *Store {
	return &Store{
		versionsDir: cfg.VersionsDir(),
		currentPath: cfg.CurrentPath(),
	}
}

// VersionDir returns the directory a version lives in (installed or not).
func (s *Store) VersionDir(version string) string {
	return filepath.Join(s.versionsDir, version)
}

// List returns the installed version names, sorted. A missing versions
// directory is an empty install, not an error.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.versionsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading versions directory: %w", err)
	}

	var versions []string
	for _, e := range entries {
		// Staging directories from in-flight updates start with a dot.
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		versions = append(versions, e.Name())
	}
	sort.Strings(versions)
	return versions, nil
}

// IsInstalled reports whether version exists as a directory under the
// versions directory.
func (s *Store) IsInstalled(version string) bool {
	if version == "" || strings.ContainsAny(version, `/\`) {
		return false
	}
	info, err := os.Stat(s.VersionDir(version))
	return err == nil && info.IsDir()
}

// Current returns what the "current" pointer selects, or nil (not an
// error) when no pointer exists.
func (s *Store) Current() (*Current, error) {
	info, err := os.Lstat(s.currentPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("inspecting current pointer: %w", err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(s.currentPath)
		if err != nil {
			return nil, fmt.Errorf("reading current pointer: %w", err)
		}
		name := filepath.Base(target)
		return &Current{Name: name, Dir: s.VersionDir(name)}, nil
	}

	if info.IsDir() {
		// Older installers materialized "current" as a real directory.
		return &Current{Name: "current", Dir: s.currentPath, Legacy: true}, nil
	}

	return nil, fmt.Errorf("current pointer %s is neither a symlink nor a directory", s.currentPath)
}

// SwitchTo repoints "current" at an installed version. The swap creates a
// new symlink beside the pointer and renames it into place, so a reader
// never observes a missing pointer.
func (s *Store) SwitchTo(version string) error {
	if !s.IsInstalled(version) {
		installed, _ := s.List()
		return &NotInstalledError{Version: version, Installed: installed}
	}

	tmp := s.currentPath + ".new"
	os.Remove(tmp)
	// Relative target keeps the tree relocatable.
	if err := os.Symlink(filepath.Join("versions", version), tmp); err != nil {
		return fmt.Errorf("creating current pointer: %w", err)
	}

	// os.Rename replaces an existing symlink but not a non-empty legacy
	// directory; move such a directory aside first.
	var aside string
	if info, err := os.Lstat(s.currentPath); err == nil && info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
		aside = s.currentPath + ".legacy"
		os.RemoveAll(aside)
		if err := os.Rename(s.currentPath, aside); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("moving legacy current directory aside: %w", err)
		}
	}

	if err := os.Rename(tmp, s.currentPath); err != nil {
		if aside != "" {
			os.Rename(aside, s.currentPath)
		}
		os.Remove(tmp)
		return fmt.Errorf("activating current pointer: %w", err)
	}
	if aside != "" {
		os.RemoveAll(aside)
	}
	return nil
}

// Remove deletes an installed version directory. The version "current"
// points at cannot be removed.
func (s *Store) Remove(version string) error {
	if !s.IsInstalled(version) {
		installed, _ := s.List()
		return &NotInstalledError{Version: version, Installed: installed}
	}
	cur, err := s.Current()
	if err != nil {
		return err
	}
	if cur != nil && cur.Name == version {
		return fmt.Errorf("%w: %s", ErrRemoveCurrent, version)
	}
	if err := os.RemoveAll(s.VersionDir(version)); err != nil {
		return fmt.Errorf("removing version %s: %w", version, err)
	}
	return nil
}
