// SPDX-License-Identifier: MPL-2.0

// Package archive extracts downloaded update archives into a version
// directory. The extractor for a given archive is selected once, by file
// extension, and every implementation enforces the same safety rules: no
// entry may escape the target directory and no single file may decompress
// beyond a fixed cap.
package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// maxFileBytes caps the decompressed size of a single archive entry (500 MB).
const maxFileBytes = 500 * 1024 * 1024

var (
	// ErrNoExtractor means the archive extension is not a supported format.
	ErrNoExtractor = errors.New("no extractor for archive format")

	// ErrExtraction classifies any failure while unpacking an archive, so
	// callers can distinguish it from verification failures.
	ErrExtraction = errors.New("archive extraction failed")
)

// Extractor unpacks one archive format into a target directory.
type Extractor interface {
	Extract(archivePath, targetDir string) error
}

// ForArchive selects the extractor for path by extension.
func ForArchive(path string) (Extractor, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".zip"):
		return zipExtractor{}, nil
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return tarGzExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoExtractor, filepath.Ext(name))
	}
}

// Extract unpacks the archive at archivePath into targetDir, creating the
// directory if needed. Existing files are overwritten, so re-extracting
// after an interrupted run converges on the same tree.
func Extract(archivePath, targetDir string) error {
	ex, err := ForArchive(archivePath)
	if err != nil {
		return err
	}
	if err := ex.Extract(archivePath, targetDir); err != nil {
		return fmt.Errorf("%w: unpacking %s: %v", ErrExtraction, filepath.Base(archivePath), err)
	}
	return nil
}

// securePath resolves an archive entry name below root, rejecting absolute
// names and any traversal that would land outside root.
func securePath(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes the target directory", name)
	}
	return filepath.Join(root, cleaned), nil
}
