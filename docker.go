package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"golang.org/x/sync/errgroup"
	"oras.land/oras-go/v2/registry"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"

	"github.com/meigma/fetch/docker"
	"github.com/meigma/fetch/internal/longpath"
	"github.com/meigma/fetch/uri"
)

// manifestFileName is the filename the raw manifest body is written under.
const manifestFileName = "manifest"

const defaultUserAgent = "fetch/1.0"

// manifestAccept lists the manifest media types requested from registries,
// current schema first.
var manifestAccept = strings.Join([]string{
	docker.MediaTypeManifestV2S2,
	ocispec.MediaTypeImageManifest,
	docker.MediaTypeSignedManifestV2,
	docker.MediaTypeManifestV2,
}, ", ")

// dockerPlugin fetches manifests and blobs from Docker-compatible
// registries, and whole images as a manifest plus all referenced layer
// blobs.
type dockerPlugin struct {
	client    *auth.Client
	plainHTTP bool
	logger    *slog.Logger
}

func newDockerPlugin(cfg *options, logger *slog.Logger) *dockerPlugin {
	userAgent := cfg.userAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	cred := auth.EmptyCredential
	if cfg.username != "" || cfg.password != "" {
		cred = auth.Credential{Username: cfg.username, Password: cfg.password}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: retry.NewTransport(nil), Timeout: cfg.timeout}
	}

	// Shared auth client: token cache plus challenge-based token exchange.
	client := &auth.Client{
		Client: httpClient,
		Cache:  auth.NewCache(),
		Credential: func(ctx context.Context, hostport string) (auth.Credential, error) {
			return cred, nil
		},
		Header: http.Header{
			"User-Agent": []string{userAgent},
		},
	}

	return &dockerPlugin{
		client:    client,
		plainHTTP: cfg.plainHTTP,
		logger:    logger,
	}
}

func (p *dockerPlugin) Name() string {
	return "docker"
}

func (p *dockerPlugin) Matches(u *uri.URI) bool {
	if u.Scheme != uri.SchemeDocker {
		return false
	}
	_, err := u.DockerKind()
	return err == nil
}

func (p *dockerPlugin) Fetch(ctx context.Context, u *uri.URI, dir string) error {
	ref, err := parseRegistryRef(u)
	if err != nil {
		return err
	}

	kind, err := u.DockerKind()
	if err != nil {
		return err
	}

	switch kind {
	case uri.DockerBlobKind:
		raw, err := u.DockerDigest()
		if err != nil {
			return err
		}
		dgst, err := digest.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: digest %q: %v", uri.ErrInvalid, raw, err)
		}
		return p.fetchBlob(ctx, ref, dgst, dir)

	case uri.DockerManifestKind:
		reference, err := u.DockerReference()
		if err != nil {
			return err
		}
		_, err = p.fetchManifest(ctx, ref, reference, dir)
		return err

	case uri.DockerImageKind:
		reference, err := u.DockerReference()
		if err != nil {
			return err
		}
		return p.fetchImage(ctx, ref, reference, dir)
	}

	return fmt.Errorf("%w: docker URI kind %q", uri.ErrInvalid, kind)
}

// fetchManifest GETs the manifest for reference, writes the raw body to
// <dir>/manifest, and returns the parsed schema variant.
func (p *dockerPlugin) fetchManifest(ctx context.Context, ref registry.Reference, reference, dir string) (*docker.Manifest, error) {
	url := p.baseURL(ref) + "/manifests/" + reference

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	req.Header.Set("Accept", manifestAccept)

	resp, err := p.do(req, ref)
	if err != nil {
		return nil, err
	}
	defer drainClose(resp.Body)

	if err := checkStatus(resp, url); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read manifest: %v", ErrTransfer, err)
	}

	manifest, err := docker.Parse(body)
	if err != nil {
		return nil, err
	}

	if err := writeFile(ctx, filepath.Join(dir, manifestFileName), bytes.NewReader(body)); err != nil {
		return nil, err
	}

	p.logger.Debug("fetched manifest",
		"repository", ref.Repository,
		"reference", reference,
		"schemaVersion", manifest.SchemaVersion(),
		"layers", len(manifest.LayerDigests()))

	return manifest, nil
}

// fetchBlob GETs one blob and writes it to <dir>/<digest>, verifying the
// received bytes hash to the requested digest.
func (p *dockerPlugin) fetchBlob(ctx context.Context, ref registry.Reference, dgst digest.Digest, dir string) error {
	url := p.baseURL(ref) + "/blobs/" + dgst.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}

	resp, err := p.do(req, ref)
	if err != nil {
		return err
	}
	defer drainClose(resp.Body)

	if err := checkStatus(resp, url); err != nil {
		return err
	}

	path := filepath.Join(dir, dgst.String())
	verifier := dgst.Verifier()

	if err := writeFile(ctx, path, io.TeeReader(resp.Body, verifier)); err != nil {
		return err
	}

	if !verifier.Verified() {
		_ = os.Remove(longpath.Apply(path))
		return fmt.Errorf("%w: blob %s", ErrDigestMismatch, dgst)
	}

	p.logger.Debug("fetched blob", "repository", ref.Repository, "digest", dgst.String())
	return nil
}

// fetchImage fetches the manifest and then every blob it references into
// dir. Blob fetches run concurrently and fail fast: the first failure
// cancels the siblings and is returned; blobs that completed before the
// failure are left in place.
func (p *dockerPlugin) fetchImage(ctx context.Context, ref registry.Reference, reference, dir string) error {
	manifest, err := p.fetchManifest(ctx, ref, reference, dir)
	if err != nil {
		return err
	}

	// Legacy manifests may repeat a blobSum; fetching each digest once also
	// keeps concurrent writers off the same path.
	seen := make(map[digest.Digest]struct{})

	g, ctx := errgroup.WithContext(ctx)
	for _, dgst := range manifest.LayerDigests() {
		if _, ok := seen[dgst]; ok {
			continue
		}
		seen[dgst] = struct{}{}
		dgst := dgst
		g.Go(func() error {
			return p.fetchBlob(ctx, ref, dgst, dir)
		})
	}

	return g.Wait()
}

// do issues req with repository pull scope attached so the auth client can
// exchange credentials for a token when challenged.
func (p *dockerPlugin) do(req *http.Request, ref registry.Reference) (*http.Response, error) {
	ctx := auth.AppendRepositoryScope(req.Context(), ref, auth.ActionPull)
	resp, err := p.client.Do(req.Clone(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	return resp, nil
}

func (p *dockerPlugin) baseURL(ref registry.Reference) string {
	scheme := "https"
	if p.plainHTTP {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/v2/%s", scheme, ref.Registry, ref.Repository)
}

func checkStatus(resp *http.Response, url string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s returned %s", ErrNotFound, url, resp.Status)
	default:
		return fmt.Errorf("%w: %s returned %s", ErrTransfer, url, resp.Status)
	}
}

// parseRegistryRef validates the registry and repository components of a
// docker URI.
func parseRegistryRef(u *uri.URI) (registry.Reference, error) {
	ref := registry.Reference{
		Registry:   u.Registry(),
		Repository: u.Repository(),
	}
	if err := ref.ValidateRegistry(); err != nil {
		return registry.Reference{}, fmt.Errorf("%w: registry %q: %v", uri.ErrInvalid, ref.Registry, err)
	}
	if err := ref.ValidateRepository(); err != nil {
		return registry.Reference{}, fmt.Errorf("%w: repository %q: %v", uri.ErrInvalid, ref.Repository, err)
	}
	return ref, nil
}
