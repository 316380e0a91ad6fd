// SPDX-License-Identifier: MPL-2.0

// Package locate finds the wrapped binary inside a version directory.
// Installed archives have shipped in three shapes over time; the probe
// order below is fixed and the first hit wins.
package locate

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"skiff-launcher/internal/config"
)

// Layout identifies which on-disk shape a version directory uses.
type Layout int

const (
	// LayoutBundle is the macOS application bundle:
	// Skiff.app/Contents/MacOS/skiff.
	LayoutBundle Layout = iota

	// LayoutNestedBin is the unpacked-distribution shape: skiff/bin/skiff.
	LayoutNestedBin

	// LayoutFlat is a bare binary at the version directory root: skiff.
	LayoutFlat
)

func (l Layout) String() string {
	switch l {
	case LayoutBundle:
		return "bundle"
	case LayoutNestedBin:
		return "nested bin"
	case LayoutFlat:
		return "flat"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// Location is a found binary and the layout it was found under.
type Location struct {
	Path   string
	Layout Layout
}

// NotFoundError reports that no layout matched, carrying every probed path
// for diagnostics.
type NotFoundError struct {
	VersionDir string
	Probed     []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s binary in %s (searched: %s)",
		config.ProductName, e.VersionDir, strings.Join(e.Probed, ", "))
}

// NotExecutableError reports a binary that exists but cannot be executed.
type NotExecutableError struct {
	Path string
}

func (e *NotExecutableError) Error() string {
	return fmt.Sprintf("%s exists but is not executable", e.Path)
}

func exeName() string {
	if runtime.GOOS == "windows" {
		return config.ProductName + ".exe"
	}
	return config.ProductName
}

// candidates lists the probe paths for versionDir, in precedence order.
func candidates(versionDir string) []struct {
	path   string
	layout Layout
} {
	exe := exeName()
	return []struct {
		path   string
		layout Layout
	}{
		{filepath.Join(versionDir, config.BundleName, "Contents", "MacOS", config.ProductName), LayoutBundle},
		{filepath.Join(versionDir, config.ProductName, "bin", exe), LayoutNestedBin},
		{filepath.Join(versionDir, exe), LayoutFlat},
	}
}

// Find probes versionDir for the binary without checking permissions.
// Useful right after extraction, before the exec bit has been restored.
func Find(versionDir string) (Location, error) {
	var probed []string
	for _, c := range candidates(versionDir) {
		info, err := os.Stat(c.path)
		if err == nil && info.Mode().IsRegular() {
			return Location{Path: c.path, Layout: c.layout}, nil
		}
		probed = append(probed, c.path)
	}
	return Location{}, &NotFoundError{VersionDir: versionDir, Probed: probed}
}

// Locate probes versionDir and additionally requires the binary to be
// executable (a no-op check on Windows, where execution is extension
// driven).
func Locate(versionDir string) (Location, error) {
	loc, err := Find(versionDir)
	if err != nil {
		return Location{}, err
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(loc.Path)
		if err != nil {
			return Location{}, fmt.Errorf("inspecting %s: %w", loc.Path, err)
		}
		if info.Mode().Perm()&0o111 == 0 {
			return Location{}, &NotExecutableError{Path: loc.Path}
		}
	}
	return loc, nil
}
