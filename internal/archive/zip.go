// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type zipExtractor struct{}

func (zipExtractor) Extract(archivePath, targetDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	for _, f := range r.File {
		if err := extractZipEntry(f, targetDir); err != nil {
			return err
		}
	}
	return nil
}

func extractZipEntry(f *zip.File, targetDir string) error {
	dest, err := securePath(targetDir, f.Name)
	if err != nil {
		return err
	}

	mode := f.Mode()
	switch {
	case mode.IsDir():
		return os.MkdirAll(dest, 0o755)
	case mode&os.ModeSymlink != 0:
		return extractZipSymlink(f, dest, targetDir)
	case !mode.IsRegular():
		// Devices, sockets and the like have no business in an update
		// archive; skip them rather than fail the whole extraction.
		return nil
	}

	if f.UncompressedSize64 > maxFileBytes {
		return fmt.Errorf("entry %q exceeds the size cap", f.Name)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating parent of %q: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("creating %q: %w", f.Name, err)
	}
	if _, err := io.Copy(out, io.LimitReader(rc, maxFileBytes)); err != nil {
		out.Close()
		return fmt.Errorf("writing %q: %w", f.Name, err)
	}
	return out.Close()
}

func extractZipSymlink(f *zip.File, dest, targetDir string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening symlink entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	target, err := io.ReadAll(io.LimitReader(rc, 4096))
	if err != nil {
		return fmt.Errorf("reading symlink entry %q: %w", f.Name, err)
	}
	if _, err := securePath(filepath.Dir(dest), string(target)); err != nil {
		return fmt.Errorf("symlink %q: %w", f.Name, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating parent of %q: %w", f.Name, err)
	}
	os.Remove(dest)
	return os.Symlink(string(target), dest)
}
