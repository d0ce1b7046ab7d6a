package fetch

import (
	"errors"

	"github.com/meigma/fetch/docker"
	"github.com/meigma/fetch/uri"
)

// Sentinel errors for fetch operations.
var (
	// ErrUnsupportedScheme is returned when no registered plugin matches a
	// URI, or when an explicitly named plugin cannot handle the URI it was
	// given.
	ErrUnsupportedScheme = errors.New("fetch: no plugin matches URI")

	// ErrUnknownPlugin is returned when an explicitly named plugin is not
	// registered.
	ErrUnknownPlugin = errors.New("fetch: unknown plugin")

	// ErrConfiguration is returned by New when a plugin's required external
	// dependency is missing or unusable.
	ErrConfiguration = errors.New("fetch: configuration")

	// ErrNotFound is returned when the remote resource does not exist.
	ErrNotFound = errors.New("fetch: not found")

	// ErrTransfer is returned when a retrieval fails after dispatch: network
	// errors, unexpected status codes, non-zero client exits, short writes.
	ErrTransfer = errors.New("fetch: transfer failed")

	// ErrDigestMismatch is returned when a fetched blob's content does not
	// hash to the requested digest.
	ErrDigestMismatch = errors.New("fetch: digest mismatch")
)

// Errors re-exported from subpackages.
var (
	// ErrInvalidManifest is returned when a manifest payload matches neither
	// schema variant.
	ErrInvalidManifest = docker.ErrInvalidManifest

	// ErrInvalidURI is returned when a URI string or shape is malformed.
	ErrInvalidURI = uri.ErrInvalid
)
