// SPDX-License-Identifier: MPL-2.0

// Package manifest reads the pending-update descriptor queued by the update
// producer. The descriptor is a small flat JSON object; its structure is
// checked against an embedded JSON Schema so that a malformed file is
// classified once, here, and never partially acted upon.
package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed pending-update.schema.json
var schemaJSON []byte

// ErrInvalidManifest classifies descriptors that are syntactically broken or
// missing a required field. Such a manifest is discarded by the caller, never
// retried.
var ErrInvalidManifest = errors.New("invalid update manifest")

// UpdateManifest describes one queued update.
type UpdateManifest struct {
	// Version is the version identifier the archive installs.
	Version string `json:"version"`

	// ZipPath is the local path of the downloaded archive.
	ZipPath string `json:"zipPath"`

	// SHA256 is the optional expected archive digest, hex encoded.
	SHA256 string `json:"sha256,omitempty"`
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parsing embedded manifest schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("pending-update.schema.json", doc); err != nil {
			schemaErr = fmt.Errorf("registering manifest schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile("pending-update.schema.json")
	})
	return schema, schemaErr
}

// Load reads and validates the manifest at path.
//
// A missing file is the normal "nothing pending" case and returns (nil, nil).
// A structurally invalid manifest returns an error wrapping
// ErrInvalidManifest; when the JSON itself was decodable, the partially
// decoded manifest is returned alongside the error so the caller can clean
// up the archive it references. Load never deletes anything itself.
func Load(path string) (*UpdateManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	if err := sch.Validate(inst); err != nil {
		// Recover whatever fields did decode so the caller can remove an
		// orphaned archive referenced by an otherwise-broken manifest.
		var m UpdateManifest
		if json.Unmarshal(data, &m) == nil {
			return &m, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	var m UpdateManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return &m, nil
}
