// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"errors"
	"fmt"
	"strings"

	"skiff-launcher/internal/config"
	"skiff-launcher/internal/store"
)

// Administrative flags act on the launcher itself and are only recognized
// as the first argument; anywhere else the argument belongs to the wrapped
// program and is forwarded untouched.
const (
	flagShimVersion      = "--shim-version"
	flagListVersions     = "--list-versions"
	flagSwitchVersion    = "--switch-version"
	flagUninstallVersion = "--uninstall-version"
)

type adminCommand int

const (
	adminNone adminCommand = iota
	adminShimVersion
	adminListVersions
	adminSwitchVersion
	adminUninstallVersion
)

// parseAdmin classifies a first argument. The value-carrying commands use
// the = form only, matching the --use-version spelling.
func parseAdmin(arg string) (adminCommand, string) {
	switch arg {
	case flagShimVersion:
		return adminShimVersion, ""
	case flagListVersions:
		return adminListVersions, ""
	}
	if v, ok := strings.CutPrefix(arg, flagSwitchVersion+"="); ok {
		return adminSwitchVersion, v
	}
	if v, ok := strings.CutPrefix(arg, flagUninstallVersion+"="); ok {
		return adminUninstallVersion, v
	}
	return adminNone, ""
}

func (a *App) shimVersion() int {
	fmt.Fprintf(a.stdout, "%s launcher %s\n", config.ProductName, Version)
	return 0
}

func (a *App) listVersions() int {
	versions, err := a.store.List()
	if err != nil {
		a.fatal(err)
		return 1
	}
	if len(versions) == 0 {
		fmt.Fprintln(a.stdout, "No versions installed.")
		return 0
	}

	cur, err := a.store.Current()
	if err != nil {
		a.fatal(err)
		return 1
	}
	currentName := ""
	if cur != nil {
		currentName = cur.Name
	}

	for _, v := range versions {
		if v == currentName {
			fmt.Fprintf(a.stdout, "%s %s\n", currentStyle.Render("*"), v)
		} else {
			fmt.Fprintf(a.stdout, "%s %s\n", dimStyle.Render(" "), v)
		}
	}
	if cur != nil && cur.Legacy {
		fmt.Fprintln(a.stdout, dimStyle.Render("current is a legacy directory install"))
	}
	return 0
}

func (a *App) switchVersion(version string) int {
	if err := a.store.SwitchTo(version); err != nil {
		a.fatal(err)
		return 1
	}
	fmt.Fprintf(a.stdout, "Now using %s %s\n", config.ProductName, version)
	return 0
}

func (a *App) uninstallVersion(version string) int {
	if err := a.store.Remove(version); err != nil {
		if errors.Is(err, store.ErrRemoveCurrent) {
			a.fatal(fmt.Errorf("%w; switch to another version first", err))
			return 1
		}
		a.fatal(err)
		return 1
	}
	fmt.Fprintf(a.stdout, "Removed %s %s\n", config.ProductName, version)
	return 0
}
