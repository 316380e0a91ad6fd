// SPDX-License-Identifier: MPL-2.0

// Command skiff is the launcher shim installed in place of the real skiff
// binary. It applies any pending self-update, resolves which installed
// version to run, and replaces itself with that binary.
package main

import (
	"os"

	"skiff-launcher/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
