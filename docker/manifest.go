// Package docker models the two image manifest schemas served by
// Docker-compatible registries: the current schema 2 (whose shape OCI image
// manifests share) and the legacy schema 1 with its fsLayers list.
package docker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opencontainers/go-digest"
)

// Manifest media types used in registry requests and responses.
const (
	MediaTypeManifestV2S2     = "application/vnd.docker.distribution.manifest.v2+json"
	MediaTypeManifestV2       = "application/vnd.docker.distribution.manifest.v1+json"
	MediaTypeSignedManifestV2 = "application/vnd.docker.distribution.manifest.v1+prettyjws"
)

// ErrInvalidManifest is returned when a payload matches neither manifest
// schema.
var ErrInvalidManifest = errors.New("docker: invalid manifest")

// Descriptor references one content-addressed blob of a schema 2 manifest.
type Descriptor struct {
	MediaType string        `json:"mediaType"`
	Size      int64         `json:"size"`
	Digest    digest.Digest `json:"digest"`
}

// V2S2 is a schema 2 image manifest. OCI image manifests decode into the
// same shape.
type V2S2 struct {
	SchemaVersion int          `json:"schemaVersion"`
	MediaType     string       `json:"mediaType,omitempty"`
	Config        Descriptor   `json:"config"`
	Layers        []Descriptor `json:"layers"`
}

// FSLayer references one filesystem layer of a legacy manifest.
type FSLayer struct {
	BlobSum digest.Digest `json:"blobSum"`
}

// V2 is a legacy (schema 1) image manifest.
type V2 struct {
	SchemaVersion int       `json:"schemaVersion"`
	Name          string    `json:"name"`
	Tag           string    `json:"tag"`
	Architecture  string    `json:"architecture,omitempty"`
	FSLayers      []FSLayer `json:"fsLayers"`
}

// Manifest holds whichever schema variant a payload parsed as. Exactly one
// field is non-nil.
type Manifest struct {
	V2S2 *V2S2
	V2   *V2
}

// Parse classifies and decodes a manifest payload. It probes for schema 2
// first (schemaVersion 2 with a layers array) and falls back to the legacy
// schema (an fsLayers array); a payload matching neither fails.
func Parse(data []byte) (*Manifest, error) {
	var probe struct {
		SchemaVersion int             `json:"schemaVersion"`
		Layers        json.RawMessage `json:"layers"`
		FSLayers      json.RawMessage `json:"fsLayers"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	switch {
	case probe.SchemaVersion == 2 && probe.Layers != nil:
		var m V2S2
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
		for _, layer := range m.Layers {
			if err := layer.Digest.Validate(); err != nil {
				return nil, fmt.Errorf("%w: layer digest %q: %v", ErrInvalidManifest, layer.Digest, err)
			}
		}
		return &Manifest{V2S2: &m}, nil

	case probe.FSLayers != nil:
		var m V2
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
		for _, layer := range m.FSLayers {
			if err := layer.BlobSum.Validate(); err != nil {
				return nil, fmt.Errorf("%w: blobSum %q: %v", ErrInvalidManifest, layer.BlobSum, err)
			}
		}
		return &Manifest{V2: &m}, nil
	}

	return nil, fmt.Errorf("%w: matches neither schema", ErrInvalidManifest)
}

// SchemaVersion returns the declared schema version of the parsed variant.
func (m *Manifest) SchemaVersion() int {
	switch {
	case m.V2S2 != nil:
		return m.V2S2.SchemaVersion
	case m.V2 != nil:
		return m.V2.SchemaVersion
	}
	return 0
}

// LayerDigests returns the manifest's layer digests in manifest order:
// layers[].digest for schema 2, fsLayers[].blobSum for the legacy schema.
// Legacy manifests may repeat a digest; callers fetching blobs should
// deduplicate.
func (m *Manifest) LayerDigests() []digest.Digest {
	switch {
	case m.V2S2 != nil:
		digests := make([]digest.Digest, 0, len(m.V2S2.Layers))
		for _, layer := range m.V2S2.Layers {
			digests = append(digests, layer.Digest)
		}
		return digests
	case m.V2 != nil:
		digests := make([]digest.Digest, 0, len(m.V2.FSLayers))
		for _, layer := range m.V2.FSLayers {
			digests = append(digests, layer.BlobSum)
		}
		return digests
	}
	return nil
}
