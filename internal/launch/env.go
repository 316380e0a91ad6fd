// SPDX-License-Identifier: MPL-2.0

// Package launch hands the process off to the selected binary. On unix the
// launcher replaces itself; on Windows it spawns a child and mirrors its
// exit status.
package launch

import (
	"os"
	"strings"

	"skiff-launcher/internal/config"
)

// Environment builds the child environment: the launcher's own, with the
// data root and launch directory exported so the wrapped program can find
// its install tree and the directory the user invoked it from.
func Environment(cfg config.Config) []string {
	env := os.Environ()

	launchDir := cfg.LaunchDir
	if launchDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			// The marker must always reach the child, even from a deleted
			// working directory.
			wd = "."
		}
		launchDir = wd
	}
	env = setEnv(env, config.EnvLaunchDir, launchDir)
	env = setEnv(env, config.EnvDataRoot, cfg.DataRoot)
	return env
}

func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
