package docker

import (
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schema2Manifest = `{
	"schemaVersion": 2,
	"mediaType": "application/vnd.docker.distribution.manifest.v2+json",
	"config": {
		"mediaType": "application/vnd.docker.container.image.v1+json",
		"size": 1469,
		"digest": "sha256:3f57d9401f8d42f986df300f0c69192fc41da28ccc8d797829467780db3dd741"
	},
	"layers": [
		{
			"mediaType": "application/vnd.docker.image.rootfs.diff.tar.gzip",
			"size": 2220094,
			"digest": "sha256:9ad63333ebc97e32b987ae66aa3cff81300e4c2e6d2f2395cef8a3ae18b249fe"
		},
		{
			"mediaType": "application/vnd.docker.image.rootfs.diff.tar.gzip",
			"size": 32,
			"digest": "sha256:a3ed95caeb02ffe68cdd9fd84406680ae93d633cb16422d00e8a7c22955b46d4"
		}
	]
}`

const schema1Manifest = `{
	"schemaVersion": 1,
	"name": "library/busybox",
	"tag": "latest",
	"architecture": "amd64",
	"fsLayers": [
		{"blobSum": "sha256:a3ed95caeb02ffe68cdd9fd84406680ae93d633cb16422d00e8a7c22955b46d4"},
		{"blobSum": "sha256:9ad63333ebc97e32b987ae66aa3cff81300e4c2e6d2f2395cef8a3ae18b249fe"},
		{"blobSum": "sha256:a3ed95caeb02ffe68cdd9fd84406680ae93d633cb16422d00e8a7c22955b46d4"}
	]
}`

const ociManifest = `{
	"schemaVersion": 2,
	"mediaType": "application/vnd.oci.image.manifest.v1+json",
	"config": {
		"mediaType": "application/vnd.oci.image.config.v1+json",
		"size": 7023,
		"digest": "sha256:b5b2b2c507a0944348e0303114d8d93aaaa081732b86451d9bce1f432a537bc7"
	},
	"layers": [
		{
			"mediaType": "application/vnd.oci.image.layer.v1.tar+gzip",
			"size": 32654,
			"digest": "sha256:9834876dcfb05cb167a5c24953eba58c4ac89b1adf57f28f2f9d09af107ee8f0"
		}
	]
}`

func TestParseSchema2(t *testing.T) {
	m, err := Parse([]byte(schema2Manifest))
	require.NoError(t, err)

	require.NotNil(t, m.V2S2)
	assert.Nil(t, m.V2)
	assert.Equal(t, 2, m.SchemaVersion())
	assert.Equal(t, MediaTypeManifestV2S2, m.V2S2.MediaType)

	digests := m.LayerDigests()
	require.Len(t, digests, 2)
	assert.Equal(t,
		digest.Digest("sha256:9ad63333ebc97e32b987ae66aa3cff81300e4c2e6d2f2395cef8a3ae18b249fe"),
		digests[0])
	assert.Equal(t, int64(2220094), m.V2S2.Layers[0].Size)
}

func TestParseSchema1Fallback(t *testing.T) {
	m, err := Parse([]byte(schema1Manifest))
	require.NoError(t, err)

	require.NotNil(t, m.V2)
	assert.Nil(t, m.V2S2)
	assert.Equal(t, 1, m.SchemaVersion())
	assert.Equal(t, "library/busybox", m.V2.Name)
	assert.Equal(t, "latest", m.V2.Tag)

	// Legacy manifests may repeat digests; LayerDigests preserves order and
	// duplicates as declared.
	digests := m.LayerDigests()
	require.Len(t, digests, 3)
	assert.Equal(t, digests[0], digests[2])
}

func TestParseOCIManifest(t *testing.T) {
	m, err := Parse([]byte(ociManifest))
	require.NoError(t, err)

	require.NotNil(t, m.V2S2)
	assert.Equal(t, 2, m.SchemaVersion())
	require.Len(t, m.LayerDigests(), 1)
}

func TestParseSchema2WithFSLayersOnly(t *testing.T) {
	// A declared schemaVersion of 2 without a layers array still classifies
	// as the legacy variant when fsLayers is present.
	payload := `{"schemaVersion": 2, "name": "n", "tag": "t", "fsLayers": [
		{"blobSum": "sha256:a3ed95caeb02ffe68cdd9fd84406680ae93d633cb16422d00e8a7c22955b46d4"}
	]}`

	m, err := Parse([]byte(payload))
	require.NoError(t, err)
	require.NotNil(t, m.V2)
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "not json at all"},
		{"empty object", "{}"},
		{"neither variant", `{"schemaVersion": 2, "config": {}}`},
		{"invalid layer digest", `{"schemaVersion": 2, "layers": [{"digest": "notadigest", "size": 1}]}`},
		{"invalid blobSum", `{"schemaVersion": 1, "fsLayers": [{"blobSum": "sha256:short"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.payload))
			require.ErrorIs(t, err, ErrInvalidManifest)
		})
	}
}
