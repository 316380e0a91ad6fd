// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type tarGzExtractor struct{}

func (tarGzExtractor) Extract(archivePath, targetDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}
		if err := extractTarEntry(tr, hdr, targetDir); err != nil {
			return err
		}
	}
}

func extractTarEntry(tr *tar.Reader, hdr *tar.Header, targetDir string) error {
	dest, err := securePath(targetDir, hdr.Name)
	if err != nil {
		return err
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(dest, 0o755)

	case tar.TypeSymlink:
		if _, err := securePath(filepath.Dir(dest), hdr.Linkname); err != nil {
			return fmt.Errorf("symlink %q: %w", hdr.Name, err)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating parent of %q: %w", hdr.Name, err)
		}
		os.Remove(dest)
		return os.Symlink(hdr.Linkname, dest)

	case tar.TypeReg:
		if hdr.Size > maxFileBytes {
			return fmt.Errorf("entry %q exceeds the size cap", hdr.Name)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating parent of %q: %w", hdr.Name, err)
		}
		out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode).Perm())
		if err != nil {
			return fmt.Errorf("creating %q: %w", hdr.Name, err)
		}
		if _, err := io.Copy(out, io.LimitReader(tr, maxFileBytes)); err != nil {
			out.Close()
			return fmt.Errorf("writing %q: %w", hdr.Name, err)
		}
		return out.Close()

	default:
		return nil
	}
}
