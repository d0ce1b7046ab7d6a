package fetch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/meigma/fetch/internal/longpath"
)

// writeFile streams r to path, truncating any existing file: refetching
// into the same directory overwrites rather than errors.
func writeFile(ctx context.Context, path string, r io.Reader) error {
	f, err := os.Create(longpath.Apply(path))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}

	if _, err := copyWithContext(ctx, f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write %s: %v", ErrTransfer, path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrTransfer, path, err)
	}
	return nil
}

// copyWithContext copies src to dst until EOF or error, checking for
// context cancellation between reads.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[:nr])
			written += int64(nw)
			if ew != nil {
				return written, ew
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er == io.EOF {
				return written, nil
			}
			return written, er
		}
	}
}

// drainClose discards any unread body so the connection can be reused.
func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
