package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/meigma/fetch/internal/hdfs"
	"github.com/meigma/fetch/internal/longpath"
	"github.com/meigma/fetch/uri"
)

// hadoopSchemes are the schemes the hadoop CLI can copy from; they all
// route through the same client invocation.
var hadoopSchemes = map[string]bool{
	"hdfs": true,
	"hftp": true,
	"s3":   true,
	"s3n":  true,
}

// hadoopPlugin delegates transfers to an external hadoop client binary.
type hadoopPlugin struct {
	client *hdfs.Client
}

// newHadoopPlugin probes the configured client. An explicitly configured
// client failing the probe is a construction error; with default resolution
// an unusable client only disables the plugin (nil, nil).
func newHadoopPlugin(cfg *options, logger *slog.Logger) (*hadoopPlugin, error) {
	var opts []hdfs.Option
	if cfg.hadoopRunner != nil {
		opts = append(opts, hdfs.WithRunner(hdfs.Runner(cfg.hadoopRunner)))
	}

	client, err := hdfs.New(context.Background(), cfg.hadoopClient, opts...)
	if err != nil {
		if cfg.hadoopClient != "" {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		logger.Warn("hadoop plugin disabled", "error", err)
		return nil, nil
	}

	return &hadoopPlugin{client: client}, nil
}

func (p *hadoopPlugin) Name() string {
	return "hadoop"
}

func (p *hadoopPlugin) Matches(u *uri.URI) bool {
	return hadoopSchemes[u.Scheme]
}

func (p *hadoopPlugin) Fetch(ctx context.Context, u *uri.URI, dir string) error {
	// hdfs URIs without an authority name a path on the default cluster;
	// the bare path is what the client expects in that case.
	source := u.Path
	if u.Host != "" {
		source = u.String()
	}

	dest := filepath.Join(dir, u.Basename())
	if err := p.client.CopyToLocal(ctx, source, longpath.Apply(dest)); err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	return nil
}
