// SPDX-License-Identifier: MPL-2.0

//go:build darwin

package update

import (
	"os/exec"

	"github.com/charmbracelet/log"
)

// stripQuarantine removes the com.apple.quarantine attribute Gatekeeper
// stamps on downloaded archives, which would otherwise block the extracted
// binary. Best effort; a failure is logged and the launch continues.
func stripQuarantine(dir string, logger *log.Logger) {
	if err := exec.Command("xattr", "-dr", "com.apple.quarantine", dir).Run(); err != nil {
		logger.Debug("could not strip quarantine attribute", "dir", dir, "err", err)
	}
}
