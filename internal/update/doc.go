// SPDX-License-Identifier: MPL-2.0

// Package update applies a pending self-update before launch: it verifies
// the downloaded archive, extracts it into the versions tree and repoints
// the "current" symlink. Failures are reported, never fatal; the launcher
// always proceeds to start whatever version is already installed.
package update
