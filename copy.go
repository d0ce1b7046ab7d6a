package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/fetch/internal/longpath"
	"github.com/meigma/fetch/uri"
)

// copyPlugin copies a local file into the destination directory, preserving
// the base filename. It is the uniform fallback for artifacts already
// resident on disk.
type copyPlugin struct{}

func newCopyPlugin() *copyPlugin {
	return &copyPlugin{}
}

func (p *copyPlugin) Name() string {
	return "copy"
}

func (p *copyPlugin) Matches(u *uri.URI) bool {
	return u.Scheme == "file"
}

func (p *copyPlugin) Fetch(ctx context.Context, u *uri.URI, dir string) error {
	src, err := os.Open(longpath.Apply(u.Path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, u.Path)
		}
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	defer src.Close()

	return writeFile(ctx, filepath.Join(dir, u.Basename()), src)
}
