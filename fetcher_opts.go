package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// CommandRunner executes an external binary with args and returns its
// combined output. The hadoop plugin uses it so tests can stand in for the
// real client.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

type options struct {
	httpClient   *http.Client
	timeout      time.Duration
	hadoopClient string
	hadoopRunner CommandRunner
	username     string
	password     string
	plainHTTP    bool
	userAgent    string
	logger       *slog.Logger
	plugins      []Plugin
}

// Option configures a Fetcher at construction time.
type Option func(*options)

// WithHTTPClient sets the HTTP client used by the curl and docker plugins.
// It overrides WithTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTimeout sets the per-request timeout for HTTP-based plugins. Zero
// means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithHadoopClient sets the path of the hadoop client binary. When unset,
// $HADOOP_HOME/bin/hadoop and then "hadoop" on $PATH are tried.
func WithHadoopClient(path string) Option {
	return func(o *options) {
		o.hadoopClient = path
	}
}

// WithHadoopRunner overrides how the hadoop client binary is executed.
func WithHadoopRunner(run CommandRunner) Option {
	return func(o *options) {
		o.hadoopRunner = run
	}
}

// WithCredentials sets the username and password presented to registries
// that challenge for authentication.
func WithCredentials(username, password string) Option {
	return func(o *options) {
		o.username = username
		o.password = password
	}
}

// WithPlainHTTP makes the docker plugin speak HTTP instead of HTTPS, for
// local registries without TLS.
func WithPlainHTTP(plainHTTP bool) Option {
	return func(o *options) {
		o.plainHTTP = plainHTTP
	}
}

// WithUserAgent sets the User-Agent header on registry requests.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.userAgent = userAgent
	}
}

// WithLogger sets the logger. Logging is disabled when unset.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPlugin registers an additional plugin ahead of the built-ins, so it
// wins scheme matching for any URI it accepts.
func WithPlugin(p Plugin) Option {
	return func(o *options) {
		if p != nil {
			o.plugins = append(o.plugins, p)
		}
	}
}

type fetchConfig struct {
	pluginName string
}

// FetchOption configures a single Fetch call.
type FetchOption func(*fetchConfig)

// WithPluginName dispatches to the named plugin instead of scheme matching.
func WithPluginName(name string) FetchOption {
	return func(c *fetchConfig) {
		c.pluginName = name
	}
}
