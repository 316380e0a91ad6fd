// SPDX-License-Identifier: MPL-2.0

// Package config resolves the launcher configuration from the environment.
// The resulting Config value is built once in main and passed explicitly
// into every component constructor; no component reads ambient process
// state after Load returns.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

const (
	// ProductName is the name of the wrapped binary the launcher dispatches to.
	ProductName = "skiff"

	// BundleName is the macOS application bundle directory inside a version
	// install (layout: BundleName/Contents/MacOS/ProductName).
	BundleName = "Skiff.app"

	// EnvDataRoot overrides the per-user data root.
	EnvDataRoot = "SKIFF_HOME"

	// EnvVersion selects the version for one launch. It ranks below the
	// --use-version flag and above the current pointer.
	EnvVersion = "SKIFF_VERSION"

	// EnvLaunchDir marks the directory the user launched from. It is exported
	// to the wrapped program, defaulted to the launcher's cwd when unset.
	EnvLaunchDir = "SKIFF_LAUNCH_DIR"

	// EnvDebug raises the diagnostic log level when set to a non-empty value.
	EnvDebug = "SKIFF_DEBUG"

	versionsDirName     = "versions"
	currentLinkName     = "current"
	updatesDirName      = "updates"
	pendingManifestName = "pending-update.json"
	signingKeyName      = "signing-key.pub"
)

// Config carries the data-root layout and the env overrides captured at
// startup.
type Config struct {
	// DataRoot is the per-user install tree holding versions/, current and
	// updates/.
	DataRoot string

	// VersionOverride is the value of SKIFF_VERSION at startup ("" if unset).
	VersionOverride string

	// LaunchDir is the value of SKIFF_LAUNCH_DIR at startup ("" if unset).
	LaunchDir string

	// Debug enables verbose diagnostics on stderr.
	Debug bool
}

// Load builds a Config from the environment. The data root defaults to the
// platform-conventional per-user data directory when SKIFF_HOME is unset.
func Load() (Config, error) {
	v := viper.New()
	_ = v.BindEnv("home", EnvDataRoot)
	_ = v.BindEnv("version", EnvVersion)
	_ = v.BindEnv("launch_dir", EnvLaunchDir)
	_ = v.BindEnv("debug", EnvDebug)

	root := v.GetString("home")
	if root == "" {
		var err error
		root, err = defaultDataRoot()
		if err != nil {
			return Config{}, err
		}
	}

	return Config{
		DataRoot:        root,
		VersionOverride: v.GetString("version"),
		LaunchDir:       v.GetString("launch_dir"),
		Debug:           v.GetString("debug") != "",
	}, nil
}

// VersionsDir is the directory holding one immutable subdirectory per
// installed version.
func (c Config) VersionsDir() string {
	return filepath.Join(c.DataRoot, versionsDirName)
}

// CurrentPath is the symlink recording the default version. A plain directory
// at this path is the tolerated legacy form.
func (c Config) CurrentPath() string {
	return filepath.Join(c.DataRoot, currentLinkName)
}

// UpdatesDir holds the transient pending-update descriptor and, optionally,
// the minisign public key used to verify downloaded archives.
func (c Config) UpdatesDir() string {
	return filepath.Join(c.DataRoot, updatesDirName)
}

// PendingManifestPath is the queued update descriptor. Its existence is the
// sole trigger for update application.
func (c Config) PendingManifestPath() string {
	return filepath.Join(c.UpdatesDir(), pendingManifestName)
}

// SigningKeyPath is the optional minisign public key. Archive signature
// verification runs only when this file exists.
func (c Config) SigningKeyPath() string {
	return filepath.Join(c.UpdatesDir(), signingKeyName)
}

// defaultDataRoot returns the platform-conventional per-user data directory:
// %LOCALAPPDATA% on Windows, ~/Library/Application Support on macOS, and
// $XDG_DATA_HOME (falling back to ~/.local/share) elsewhere.
func defaultDataRoot() (string, error) {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
		return filepath.Join(base, ProductName), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", ProductName), nil
	default:
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolving home directory: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(base, ProductName), nil
	}
}
