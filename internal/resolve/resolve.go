// SPDX-License-Identifier: MPL-2.0

// Package resolve decides which installed version a launch should use.
//
// Precedence, highest first: the --use-version=<v> flag anywhere in the
// arguments, the SKIFF_VERSION environment override, then whatever the
// "current" pointer selects.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"skiff-launcher/internal/config"
	"skiff-launcher/internal/store"
)

// UseVersionFlag is the per-invocation override flag. Only the
// --use-version=<v> spelling is recognized; a separate value argument
// would be ambiguous with the wrapped program's own arguments.
const UseVersionFlag = "--use-version"

// ErrNoVersionFound means no override was given and no "current" pointer
// exists.
var ErrNoVersionFound = errors.New("no version selected and no current version installed")

// Source records where the selected version identifier came from.
type Source int

const (
	SourceFlag Source = iota
	SourceEnv
	SourceCurrent
)

func (s Source) String() string {
	switch s {
	case SourceFlag:
		return UseVersionFlag + " flag"
	case SourceEnv:
		return config.EnvVersion + " environment variable"
	case SourceCurrent:
		return "current pointer"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Resolved is the launch decision.
type Resolved struct {
	// Name is the version identifier ("current" for the legacy layout).
	Name string

	// Dir is the version directory to locate the binary in.
	Dir string

	// Source is which precedence level produced the decision.
	Source Source
}

// Resolver applies the precedence rules over the store.
type Resolver struct {
	cfg   config.Config
	store *store.Store
}

func New(cfg config.Config, st *store.Store) *Resolver {
	return &Resolver{cfg: cfg, store: st}
}

// Resolve picks the version for a launch with the given arguments.
// An explicitly requested version that is not installed is an error even
// when a lower-precedence source would have worked.
func (r *Resolver) Resolve(args []string) (Resolved, error) {
	if v, ok := ScanUseVersion(args); ok {
		return r.validated(v, SourceFlag)
	}
	if v := r.cfg.VersionOverride; v != "" {
		return r.validated(v, SourceEnv)
	}

	cur, err := r.store.Current()
	if err != nil {
		return Resolved{}, err
	}
	if cur == nil {
		return Resolved{}, ErrNoVersionFound
	}
	if cur.Legacy {
		// The legacy plain directory is itself the version dir; it has no
		// entry under versions/ to validate against.
		return Resolved{Name: cur.Name, Dir: cur.Dir, Source: SourceCurrent}, nil
	}
	return r.validated(cur.Name, SourceCurrent)
}

func (r *Resolver) validated(version string, src Source) (Resolved, error) {
	if !r.store.IsInstalled(version) {
		installed, _ := r.store.List()
		return Resolved{}, fmt.Errorf("%s selected by %s: %w",
			version, src, &store.NotInstalledError{Version: version, Installed: installed})
	}
	return Resolved{Name: version, Dir: r.store.VersionDir(version), Source: src}, nil
}

// ScanUseVersion returns the value of the first --use-version=<v>
// occurrence in args. The whole argument list is scanned; the flag may
// follow arguments meant for the wrapped program.
func ScanUseVersion(args []string) (string, bool) {
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, UseVersionFlag+"="); ok {
			return v, true
		}
	}
	return "", false
}

// StripUseVersion returns args with every --use-version=<v> occurrence
// removed, preserving the order of everything else. The wrapped program
// never sees the launcher's own flag.
func StripUseVersion(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, UseVersionFlag+"=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
