package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/meigma/fetch/uri"
)

// Plugin is one retrieval backend. Implementations must be safe for
// concurrent use.
type Plugin interface {
	// Name is the stable identifier used for explicit dispatch.
	Name() string

	// Matches reports whether the plugin can handle the URI. It is a pure
	// predicate over the URI's scheme (and, for registry URIs, sub-kind),
	// never over remote content.
	Matches(u *uri.URI) bool

	// Fetch retrieves the artifact into dir, blocking until it is fully
	// written or ctx is canceled. dir must already exist; the plugin decides
	// the output filename(s). Callers wanting asynchronous completion run
	// Fetch in a goroutine.
	Fetch(ctx context.Context, u *uri.URI, dir string) error
}

// Fetcher routes fetch requests to the first matching plugin or to an
// explicitly named one. The plugin set is fixed at construction; a Fetcher
// is safe for concurrent use.
type Fetcher struct {
	plugins []Plugin
	byName  map[string]Plugin
	logger  *slog.Logger
}

// New constructs a Fetcher with the built-in plugins (curl, hadoop, copy,
// docker), plus any supplied via WithPlugin registered ahead of them.
//
// New fails with ErrConfiguration when an explicitly configured hadoop
// client does not pass its version probe. With the default client
// resolution an unusable client only disables the hadoop plugin.
func New(opts ...Option) (*Fetcher, error) {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	f := &Fetcher{
		byName: make(map[string]Plugin),
		logger: cfg.logger,
	}

	for _, p := range cfg.plugins {
		f.register(p)
	}

	f.register(newCurlPlugin(&cfg))

	hadoop, err := newHadoopPlugin(&cfg, f.log())
	if err != nil {
		return nil, err
	}
	if hadoop != nil {
		f.register(hadoop)
	}

	f.register(newCopyPlugin())
	f.register(newDockerPlugin(&cfg, f.log()))

	return f, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (f *Fetcher) log() *slog.Logger {
	if f.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f.logger
}

// register appends p unless its name is already taken; the earlier
// registration wins both name and scheme dispatch.
func (f *Fetcher) register(p Plugin) {
	if _, ok := f.byName[p.Name()]; ok {
		f.log().Warn("duplicate plugin name ignored", "plugin", p.Name())
		return
	}
	f.plugins = append(f.plugins, p)
	f.byName[p.Name()] = p
}

// Plugins returns the registered plugin names in match order.
func (f *Fetcher) Plugins() []string {
	names := make([]string, 0, len(f.plugins))
	for _, p := range f.plugins {
		names = append(names, p.Name())
	}
	return names
}

// Fetch retrieves the artifact identified by u into dir, which must already
// exist. By default the first plugin whose Matches accepts u performs the
// retrieval; WithPluginName bypasses scheme matching but the named plugin
// still validates that it can handle u.
//
// Fetch blocks until the artifact is durably written or ctx is canceled.
// Independent Fetch calls may run concurrently. On failure, any files
// written before the failure are left as-is.
func (f *Fetcher) Fetch(ctx context.Context, u *uri.URI, dir string, opts ...FetchOption) error {
	cfg := fetchConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if u == nil {
		return fmt.Errorf("%w: nil URI", uri.ErrInvalid)
	}

	var plugin Plugin
	if cfg.pluginName != "" {
		p, ok := f.byName[cfg.pluginName]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPlugin, cfg.pluginName)
		}
		if !p.Matches(u) {
			return fmt.Errorf("%w: plugin %q cannot handle %q", ErrUnsupportedScheme, cfg.pluginName, u.Scheme)
		}
		plugin = p
	} else {
		for _, p := range f.plugins {
			if p.Matches(u) {
				plugin = p
				break
			}
		}
		if plugin == nil {
			return fmt.Errorf("%w: scheme %q", ErrUnsupportedScheme, u.Scheme)
		}
	}

	f.log().Debug("dispatching fetch", "plugin", plugin.Name(), "uri", u.String(), "dir", dir)
	return plugin.Fetch(ctx, u, dir)
}
