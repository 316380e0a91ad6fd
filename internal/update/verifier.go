// SPDX-License-Identifier: MPL-2.0

package update

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrChecksumMismatch is the sentinel for digest comparison failures.
// Callers match it with errors.Is; the full detail travels in
// ChecksumError.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumError carries the mismatch details for diagnostics.
type ChecksumError struct {
	Path     string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Got)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// Verifier computes a file digest. An implementation may return an empty
// digest to signal that verification is unavailable; callers then skip
// comparison and proceed unverified.
type Verifier interface {
	Digest(path string) (string, error)
}

// SHA256Verifier streams the file through crypto/sha256.
type SHA256Verifier struct{}

func (SHA256Verifier) Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NoopVerifier always reports verification as unavailable.
type NoopVerifier struct{}

func (NoopVerifier) Digest(string) (string, error) { return "", nil }

// VerifyFile compares the file's digest with expected, case-insensitively.
// It reports whether a comparison actually happened: false means the
// verifier is unavailable and the caller proceeds unverified.
func VerifyFile(v Verifier, path, expected string) (bool, error) {
	got, err := v.Digest(path)
	if err != nil {
		return false, err
	}
	if got == "" {
		return false, nil
	}
	if !strings.EqualFold(got, expected) {
		return true, &ChecksumError{Path: path, Expected: strings.ToLower(expected), Got: strings.ToLower(got)}
	}
	return true, nil
}
