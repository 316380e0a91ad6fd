// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

type zipEntry struct {
	name string
	body string
	mode os.FileMode
	dir  bool
}

func buildZip(t *testing.T, entries []zipEntry) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		if e.dir {
			hdr.SetMode(os.ModeDir | 0o755)
		} else {
			mode := e.mode
			if mode == 0 {
				mode = 0o644
			}
			hdr.SetMode(mode)
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("creating zip entry %q: %v", e.name, err)
		}
		if !e.dir {
			if _, err := w.Write([]byte(e.body)); err != nil {
				t.Fatalf("writing zip entry %q: %v", e.name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "fixture.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing zip fixture: %v", err)
	}
	return path
}

func buildTarGz(t *testing.T, entries []zipEntry) string {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		if e.dir {
			if err := tw.WriteHeader(&tar.Header{Name: e.name, Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
				t.Fatalf("writing tar dir %q: %v", e.name, err)
			}
			continue
		}
		mode := e.mode
		if mode == 0 {
			mode = 0o644
		}
		hdr := &tar.Header{Name: e.name, Mode: int64(mode), Size: int64(len(e.body))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing tar header %q: %v", e.name, err)
		}
		if _, err := tw.Write([]byte(e.body)); err != nil {
			t.Fatalf("writing tar body %q: %v", e.name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "fixture.tar.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing tar.gz fixture: %v", err)
	}
	return path
}

func TestForArchive(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"skiff-1.0.0.zip", "SKIFF.ZIP", "skiff.tar.gz", "skiff.tgz"} {
		if _, err := ForArchive(name); err != nil {
			t.Errorf("ForArchive(%q) error: %v", name, err)
		}
	}
	if _, err := ForArchive("skiff-1.0.0.rar"); !errors.Is(err, ErrNoExtractor) {
		t.Errorf("ForArchive(rar) error = %v, want ErrNoExtractor", err)
	}
}

func TestExtract_Zip(t *testing.T) {
	t.Parallel()

	archivePath := buildZip(t, []zipEntry{
		{name: "skiff/bin/", dir: true},
		{name: "skiff/bin/skiff", body: "#!/bin/sh\necho skiff\n", mode: 0o755},
		{name: "skiff/README.md", body: "readme\n"},
	})

	target := filepath.Join(t.TempDir(), "versions", "1.0.0")
	if err := Extract(archivePath, target); err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	bin := filepath.Join(target, "skiff", "bin", "skiff")
	info, err := os.Stat(bin)
	if err != nil {
		t.Fatalf("stat extracted binary: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o100 == 0 {
		t.Errorf("extracted binary mode = %v, want exec bit preserved", info.Mode())
	}

	got, err := os.ReadFile(filepath.Join(target, "skiff", "README.md"))
	if err != nil {
		t.Fatalf("reading extracted file: %v", err)
	}
	if string(got) != "readme\n" {
		t.Errorf("extracted contents = %q", got)
	}
}

func TestExtract_TarGz(t *testing.T) {
	t.Parallel()

	archivePath := buildTarGz(t, []zipEntry{
		{name: "skiff", body: "binary bytes", mode: 0o755},
	})

	target := filepath.Join(t.TempDir(), "out")
	if err := Extract(archivePath, target); err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(target, "skiff")); err != nil {
		t.Fatalf("stat extracted file: %v", err)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	t.Parallel()

	archivePath := buildZip(t, []zipEntry{{name: "skiff", body: "v2"}})
	target := t.TempDir()

	// A stale file from an interrupted earlier run gets overwritten.
	if err := os.WriteFile(filepath.Join(target, "skiff"), []byte("stale"), 0o644); err != nil {
		t.Fatalf("seeding stale file: %v", err)
	}
	if err := Extract(archivePath, target); err != nil {
		t.Fatalf("Extract() over existing tree: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(target, "skiff"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Errorf("re-extracted contents = %q, want %q", got, "v2")
	}
}

func TestExtract_PathTraversal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(t *testing.T) string
	}{
		{
			name: "zip dotdot",
			build: func(t *testing.T) string {
				return buildZip(t, []zipEntry{{name: "../evil", body: "x"}})
			},
		},
		{
			name: "tar dotdot",
			build: func(t *testing.T) string {
				return buildTarGz(t, []zipEntry{{name: "../../evil", body: "x"}})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parent := t.TempDir()
			target := filepath.Join(parent, "inner", "target")
			err := Extract(tt.build(t), target)
			if !errors.Is(err, ErrExtraction) {
				t.Fatalf("Extract() error = %v, want ErrExtraction", err)
			}
			if _, statErr := os.Stat(filepath.Join(parent, "evil")); !errors.Is(statErr, os.ErrNotExist) {
				t.Error("traversal entry escaped the target directory")
			}
		})
	}
}

func TestExtract_CorruptArchive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.zip")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Extract(path, t.TempDir()); !errors.Is(err, ErrExtraction) {
		t.Errorf("Extract() error = %v, want ErrExtraction", err)
	}
}
