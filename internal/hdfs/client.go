// Package hdfs wraps an external hadoop command-line client. The fetcher
// shells out to it for schemes the hadoop CLI understands (hdfs, hftp, s3,
// s3n) instead of speaking the protocols natively.
package hdfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrClientUnusable is returned when the client binary cannot be resolved
// or fails its version probe.
var ErrClientUnusable = errors.New("hdfs: client unusable")

// Runner executes the client binary with args and returns its combined
// output. It is injected so tests can substitute an in-process stub for the
// real binary.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Client invokes a hadoop CLI to copy remote paths to local disk.
type Client struct {
	path string
	run  Runner
}

// Option configures a Client.
type Option func(*Client)

// WithRunner overrides how the client binary is executed.
func WithRunner(run Runner) Option {
	return func(c *Client) {
		if run != nil {
			c.run = run
		}
	}
}

// New resolves and probes the hadoop client. path may be empty, in which
// case $HADOOP_HOME/bin/hadoop and then "hadoop" on $PATH are tried. The
// client's "version" command must exit zero or construction fails.
func New(ctx context.Context, path string, opts ...Option) (*Client, error) {
	c := &Client{path: path, run: execRunner}
	for _, opt := range opts {
		opt(c)
	}

	if c.path == "" {
		c.path = resolveDefault()
	}
	if c.path == "" {
		return nil, fmt.Errorf("%w: no hadoop client found in HADOOP_HOME or PATH", ErrClientUnusable)
	}

	if out, err := c.run(ctx, c.path, "version"); err != nil {
		return nil, fmt.Errorf("%w: %q version probe: %v: %s",
			ErrClientUnusable, c.path, err, strings.TrimSpace(string(out)))
	}

	return c, nil
}

// Path returns the resolved client binary path.
func (c *Client) Path() string {
	return c.path
}

// CopyToLocal downloads source to dest with "fs -copyToLocal". The transfer
// is atomic from the caller's perspective: a non-zero exit is a failure
// regardless of what the client may have written.
func (c *Client) CopyToLocal(ctx context.Context, source, dest string) error {
	out, err := c.run(ctx, c.path, "fs", "-copyToLocal", source, dest)
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w: %s", source, dest, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func resolveDefault() string {
	if home := os.Getenv("HADOOP_HOME"); home != "" {
		return filepath.Join(home, "bin", "hadoop")
	}
	if path, err := exec.LookPath("hadoop"); err == nil {
		return path
	}
	return ""
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
