package uri

import (
	"fmt"
	"net/url"
	"strings"
)

// SchemeDocker is the scheme shared by all registry URIs.
const SchemeDocker = "docker"

// DockerKind distinguishes what a docker URI refers to: a single manifest,
// a single blob, or a whole image (manifest plus all referenced blobs).
type DockerKind string

// Registry URI sub-kinds.
const (
	DockerManifestKind DockerKind = "manifest"
	DockerBlobKind     DockerKind = "blob"
	DockerImageKind    DockerKind = "image"
)

// DockerManifest returns a URI for the manifest of repository at reference
// (a tag or digest) on the given registry host.
func DockerManifest(repository, reference, registry string) *URI {
	return dockerURI(DockerManifestKind, repository, registry, url.Values{"ref": {reference}})
}

// DockerBlob returns a URI for a single blob of repository, identified by
// its content digest, on the given registry host.
func DockerBlob(repository, digest, registry string) *URI {
	return dockerURI(DockerBlobKind, repository, registry, url.Values{"digest": {digest}})
}

// DockerImage returns a URI for a whole image: the manifest of repository
// at reference plus every blob the manifest references.
func DockerImage(repository, reference, registry string) *URI {
	return dockerURI(DockerImageKind, repository, registry, url.Values{"ref": {reference}})
}

// dockerURI encodes the sub-kind and reference in the query string so the
// URI survives a Parse round-trip.
func dockerURI(kind DockerKind, repository, registry string, values url.Values) *URI {
	values.Set("kind", string(kind))
	host, port := splitHostPort(registry)
	return &URI{
		Scheme: SchemeDocker,
		Host:   host,
		Port:   port,
		Path:   "/" + strings.TrimPrefix(repository, "/"),
		Query:  values.Encode(),
	}
}

// DockerKind returns the registry sub-kind encoded in the URI.
func (u *URI) DockerKind() (DockerKind, error) {
	values, err := u.dockerValues()
	if err != nil {
		return "", err
	}
	switch kind := DockerKind(values.Get("kind")); kind {
	case DockerManifestKind, DockerBlobKind, DockerImageKind:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: unknown docker URI kind %q", ErrInvalid, values.Get("kind"))
	}
}

// DockerReference returns the tag or digest a docker manifest/image URI
// points at.
func (u *URI) DockerReference() (string, error) {
	values, err := u.dockerValues()
	if err != nil {
		return "", err
	}
	ref := values.Get("ref")
	if ref == "" {
		return "", fmt.Errorf("%w: docker URI has no reference", ErrInvalid)
	}
	return ref, nil
}

// DockerDigest returns the content digest a docker blob URI points at.
func (u *URI) DockerDigest() (string, error) {
	values, err := u.dockerValues()
	if err != nil {
		return "", err
	}
	digest := values.Get("digest")
	if digest == "" {
		return "", fmt.Errorf("%w: docker URI has no digest", ErrInvalid)
	}
	return digest, nil
}

// Repository returns the repository of a docker URI.
func (u *URI) Repository() string {
	return strings.TrimPrefix(u.Path, "/")
}

// Registry returns the registry host (with port, if any) of a docker URI.
func (u *URI) Registry() string {
	return u.Authority()
}

func (u *URI) dockerValues() (url.Values, error) {
	if u.Scheme != SchemeDocker {
		return nil, fmt.Errorf("%w: %q is not a docker URI", ErrInvalid, u.Scheme)
	}
	values, err := url.ParseQuery(u.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return values, nil
}
