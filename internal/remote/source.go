// Package remote matches catalog records against a remote media archive and
// downloads accepted files into the local media layout.
package remote

import (
	"context"
	"io"

	"github.com/keithbphillips/PinballUX/internal/catalog"
)

// Source lists and streams one remote media archive. Implementations wrap
// failures with the services error markers so callers can classify them.
type Source interface {
	// List returns the file names of one category, merged across the
	// category's remote directories, sorted and de-duplicated.
	List(ctx context.Context, category catalog.MediaCategory) ([]string, error)

	// Fetch opens one remote file. The reported size is
	// fileutil.UnknownSize when the server cannot provide one. The
	// returned reader must be closed before the next call on the source.
	Fetch(ctx context.Context, category catalog.MediaCategory, name string) (io.ReadCloser, int64, error)

	Close() error
}
