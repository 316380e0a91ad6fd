// SPDX-License-Identifier: MPL-2.0

package update

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedisct1/go-minisign"
)

// ErrSignatureMismatch is the sentinel for minisign verification failures.
var ErrSignatureMismatch = errors.New("signature verification failed")

// verifySignature checks the minisign signature of the archive when both
// the public key at keyPath and the <archive>.minisig sidecar exist. The
// step is opt-in by file presence; when either file is absent it reports
// checked=false and no error.
func verifySignature(archivePath, keyPath string) (bool, error) {
	sigPath := archivePath + ".minisig"
	if _, err := os.Stat(keyPath); err != nil {
		return false, nil
	}
	if _, err := os.Stat(sigPath); err != nil {
		return false, nil
	}

	pub, err := minisign.NewPublicKeyFromFile(keyPath)
	if err != nil {
		return true, fmt.Errorf("reading signing key: %w", err)
	}
	sig, err := minisign.NewSignatureFromFile(sigPath)
	if err != nil {
		return true, fmt.Errorf("reading signature: %w", err)
	}
	content, err := os.ReadFile(archivePath)
	if err != nil {
		return true, fmt.Errorf("reading archive for signature check: %w", err)
	}
	valid, err := pub.Verify(content, sig)
	if err != nil {
		return true, fmt.Errorf("%w: %v", ErrSignatureMismatch, err)
	}
	if !valid {
		return true, ErrSignatureMismatch
	}
	return true, nil
}
