// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package launch

import (
	"fmt"
	"syscall"
)

// Exec replaces the launcher process with the binary. On success it does
// not return; the wrapped program owns the process from here, with the
// launcher's stdio, exit status and signal disposition.
func Exec(binary string, args []string, env []string) error {
	argv := append([]string{binary}, args...)
	if err := syscall.Exec(binary, argv, env); err != nil {
		return fmt.Errorf("executing %s: %w", binary, err)
	}
	return nil
}
