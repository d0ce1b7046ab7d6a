// Command fetch downloads the artifact identified by a URI into a local
// directory using the first matching plugin, or a named one.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/meigma/fetch"
	"github.com/meigma/fetch/uri"
)

// config carries CLI settings; environment variables provide defaults that
// flags may override.
type config struct {
	Plugin       string        `env:"FETCH_PLUGIN"`
	HadoopClient string        `env:"FETCH_HADOOP_CLIENT"`
	PlainHTTP    bool          `env:"FETCH_PLAIN_HTTP"`
	Timeout      time.Duration `env:"FETCH_TIMEOUT"`
	Username     string        `env:"FETCH_USERNAME"`
	Password     string        `env:"FETCH_PASSWORD"`
	Verbose      bool          `env:"FETCH_VERBOSE"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "parse environment:", err)
		os.Exit(1)
	}

	cmd := &cobra.Command{
		Use:          "fetch <uri> <dir>",
		Short:        "Fetch an artifact identified by a URI into a directory",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), &cfg, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Plugin, "plugin", cfg.Plugin, "dispatch to a specific plugin by name")
	flags.StringVar(&cfg.HadoopClient, "hadoop-client", cfg.HadoopClient, "path to the hadoop client binary")
	flags.BoolVar(&cfg.PlainHTTP, "plain-http", cfg.PlainHTTP, "use HTTP instead of HTTPS for registries")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout for HTTP fetches")
	flags.StringVar(&cfg.Username, "username", cfg.Username, "registry username")
	flags.StringVar(&cfg.Password, "password", cfg.Password, "registry password")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config, rawURI, dir string) error {
	u, err := uri.Parse(rawURI)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []fetch.Option{
		fetch.WithLogger(logger),
		fetch.WithPlainHTTP(cfg.PlainHTTP),
	}
	if cfg.HadoopClient != "" {
		opts = append(opts, fetch.WithHadoopClient(cfg.HadoopClient))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, fetch.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" || cfg.Password != "" {
		opts = append(opts, fetch.WithCredentials(cfg.Username, cfg.Password))
	}

	f, err := fetch.New(opts...)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create destination %s: %w", dir, err)
	}

	var fetchOpts []fetch.FetchOption
	if cfg.Plugin != "" {
		fetchOpts = append(fetchOpts, fetch.WithPluginName(cfg.Plugin))
	}

	if err := f.Fetch(ctx, u, dir, fetchOpts...); err != nil {
		return err
	}

	logger.Info("fetched", "uri", u.String(), "dir", dir)
	return nil
}
