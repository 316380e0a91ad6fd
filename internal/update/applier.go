// SPDX-License-Identifier: MPL-2.0

package update

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"skiff-launcher/internal/archive"
	"skiff-launcher/internal/config"
	"skiff-launcher/internal/locate"
	"skiff-launcher/internal/manifest"
	"skiff-launcher/internal/store"
)

// ErrArchiveMissing means the manifest references an archive that is no
// longer on disk.
var ErrArchiveMissing = errors.New("update archive missing")

// Outcome classifies an ApplyPending run.
type Outcome int

const (
	// NoOp means there was nothing pending.
	NoOp Outcome = iota

	// Applied means the update was installed and activated.
	Applied

	// Failed means a pending update existed but could not be applied.
	// The launcher logs the reason and starts the existing version.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NoOp:
		return "no-op"
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is what an ApplyPending run produced.
type Result struct {
	Outcome Outcome
	Version string
	Err     error
}

// Applier consumes the pending-update manifest.
//
// Two launcher processes racing on the same pending update are not
// guarded against; extraction staging is per-process and the rename
// loser simply overwrites an identical tree, so the race is benign.
type Applier struct {
	cfg      config.Config
	store    *store.Store
	verifier Verifier
	logger   *log.Logger
}

func NewApplier(cfg config.Config, st *store.Store, v Verifier, logger *log.Logger) *Applier {
	return &Applier{cfg: cfg, store: st, verifier: v, logger: logger}
}

// ApplyPending checks for a queued update and installs it.
//
// Cleanup on failure is asymmetric and deliberate. An invalid manifest or
// a bad archive is discarded so the same broken update is not retried on
// every launch; a manifest whose archive vanished loses only the manifest.
// On success every artifact is removed.
func (a *Applier) ApplyPending() Result {
	manifestPath := a.cfg.PendingManifestPath()

	m, err := manifest.Load(manifestPath)
	if err != nil {
		// Broken manifests are discarded along with the archive they
		// reference, when that much decoded.
		a.removeArtifact(manifestPath)
		if m != nil && m.ZipPath != "" {
			a.removeArtifact(m.ZipPath)
			a.removeArtifact(m.ZipPath + ".minisig")
		}
		return Result{Outcome: Failed, Err: err}
	}
	if m == nil {
		return Result{Outcome: NoOp}
	}

	if _, err := os.Stat(m.ZipPath); err != nil {
		a.removeArtifact(manifestPath)
		return Result{
			Outcome: Failed,
			Version: m.Version,
			Err:     fmt.Errorf("%w: %s", ErrArchiveMissing, m.ZipPath),
		}
	}

	if err := a.verify(m); err != nil {
		a.removeArtifact(manifestPath)
		a.removeArtifact(m.ZipPath)
		a.removeArtifact(m.ZipPath + ".minisig")
		return Result{Outcome: Failed, Version: m.Version, Err: err}
	}

	// Win or lose, the artifacts go: a corrupt archive retried on every
	// launch would fail forever.
	installErr := a.install(m)
	a.removeArtifact(m.ZipPath)
	a.removeArtifact(m.ZipPath + ".minisig")
	a.removeArtifact(manifestPath)
	if installErr != nil {
		return Result{Outcome: Failed, Version: m.Version, Err: installErr}
	}
	return Result{Outcome: Applied, Version: m.Version}
}

// removeArtifact deletes an update artifact, logging a removal that fails
// for any reason other than the file already being gone. A stuck artifact
// retriggers the same apply on every launch, which the log line surfaces.
func (a *Applier) removeArtifact(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.logger.Warn("could not remove update artifact", "path", path, "err", err)
	}
}

func (a *Applier) verify(m *manifest.UpdateManifest) error {
	if m.SHA256 == "" {
		a.logger.Warn("applying update unverified, manifest carries no checksum",
			"version", m.Version)
	} else {
		verified, err := VerifyFile(a.verifier, m.ZipPath, m.SHA256)
		if err != nil {
			return err
		}
		if !verified {
			a.logger.Warn("applying update unverified, no checksum tool available",
				"version", m.Version)
		}
	}

	checked, err := verifySignature(m.ZipPath, a.cfg.SigningKeyPath())
	if err != nil {
		return err
	}
	if checked {
		a.logger.Debug("archive signature verified", "version", m.Version)
	}
	return nil
}

func (a *Applier) install(m *manifest.UpdateManifest) error {
	versionsDir := a.cfg.VersionsDir()
	if err := os.MkdirAll(versionsDir, 0o755); err != nil {
		return fmt.Errorf("creating versions directory: %w", err)
	}

	// Extract into a staging directory next to the final location, then
	// rename into place so an interrupted run never leaves a half-written
	// version directory behind.
	staging, err := os.MkdirTemp(versionsDir, ".tmp-"+m.Version+"-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := archive.Extract(m.ZipPath, staging); err != nil {
		return err
	}

	if loc, err := locate.Find(staging); err == nil {
		if err := os.Chmod(loc.Path, 0o755); err != nil {
			return fmt.Errorf("restoring exec permission on %s: %w", loc.Path, err)
		}
		stripQuarantine(staging, a.logger)
	} else {
		a.logger.Warn("no binary found in extracted update", "version", m.Version, "err", err)
	}

	versionDir := a.store.VersionDir(m.Version)
	if err := os.RemoveAll(versionDir); err != nil {
		return fmt.Errorf("clearing previous install of %s: %w", m.Version, err)
	}
	if err := os.Rename(staging, versionDir); err != nil {
		return fmt.Errorf("activating version directory: %w", err)
	}

	if err := a.store.SwitchTo(m.Version); err != nil {
		return fmt.Errorf("switching to %s: %w", m.Version, err)
	}
	return nil
}
