// SPDX-License-Identifier: MPL-2.0

//go:build windows

package launch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
)

// Exec has no true process replacement on Windows; the launcher spawns the
// binary with inherited stdio, forwards interrupts, and exits with the
// child's exit code.
func Exec(binary string, args []string, env []string) error {
	cmd := exec.Command(binary, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = env

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", binary, err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		for s := range sigs {
			cmd.Process.Signal(s)
		}
	}()

	err := cmd.Wait()
	signal.Stop(sigs)
	close(sigs)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", binary, err)
	}
	os.Exit(0)
	return nil
}
