package fetch

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/meigma/fetch/uri"
)

// curlPlugin fetches http and https URIs with a single GET and writes the
// response body to <dir>/<basename>. It has no manifest or redirect
// semantics beyond what the HTTP client provides.
type curlPlugin struct {
	client *http.Client
}

func newCurlPlugin(cfg *options) *curlPlugin {
	client := cfg.httpClient
	if client == nil {
		client = &http.Client{Timeout: cfg.timeout}
	}
	return &curlPlugin{client: client}
}

func (p *curlPlugin) Name() string {
	return "curl"
}

func (p *curlPlugin) Matches(u *uri.URI) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

func (p *curlPlugin) Fetch(ctx context.Context, u *uri.URI, dir string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	defer drainClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s returned %s", ErrNotFound, u, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: %s returned %s", ErrTransfer, u, resp.Status)
	}

	return writeFile(ctx, filepath.Join(dir, u.Basename()), resp.Body)
}
