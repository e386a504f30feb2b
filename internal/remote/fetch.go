package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/schollz/progressbar/v3"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/fileutil"
	"github.com/keithbphillips/PinballUX/internal/logging"
	"github.com/keithbphillips/PinballUX/internal/media"
	"github.com/keithbphillips/PinballUX/internal/services"
)

// FetchOptions adjusts how a download behaves.
type FetchOptions struct {
	// Replace downloads even when the category already has a local file.
	Replace bool
	// Progress renders a byte progress bar on the terminal.
	Progress bool
}

// FetchResult describes what one download did.
type FetchResult struct {
	Category catalog.MediaCategory `json:"category"`
	Name     string                `json:"name"`
	Path     string                `json:"path,omitempty"`
	Skipped  bool                  `json:"skipped"`
	Reason   string                `json:"reason,omitempty"`
}

// Fetcher downloads accepted candidates into the media layout and registers
// them in the catalog.
type Fetcher struct {
	source Source
	store  *catalog.Store
	layout media.Layout
	logger *slog.Logger
}

// NewFetcher wires a fetcher over a source, the catalog store, and the
// local media layout.
func NewFetcher(source Source, store *catalog.Store, layout media.Layout, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fetcher{
		source: source,
		store:  store,
		layout: layout,
		logger: logging.NewComponentLogger(logger, "remote"),
	}
}

// Fetch downloads one candidate for a record. When the category already has
// a local file and Replace is off, the download is skipped; the existing
// file may use a different extension than the candidate. The file lands
// under its canonical name and is registered with origin ftp.
func (f *Fetcher) Fetch(ctx context.Context, record *catalog.Record, candidate Candidate, opts FetchOptions) (*FetchResult, error) {
	result := &FetchResult{Category: candidate.Category, Name: candidate.Name}

	if !opts.Replace {
		if existing, ok := f.layout.FindExisting(record, candidate.Category); ok {
			result.Skipped = true
			result.Reason = "already present: " + existing
			f.logger.Info("download skipped",
				logging.String(logging.FieldTable, record.Name),
				logging.String(logging.FieldCategory, string(candidate.Category)),
				logging.String(logging.FieldPath, existing),
			)
			return result, nil
		}
	}

	dir, fileName, err := f.layout.DestinationFor(record, candidate.Category, candidate.Name)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "remote", "fetch",
			fmt.Sprintf("place %s", candidate.Name), err)
	}

	stream, size, err := f.source.Fetch(ctx, candidate.Category, candidate.Name)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var reader io.Reader = &contextReader{ctx: ctx, r: stream}
	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.DefaultBytes(size, candidate.Name)
		reader = io.TeeReader(reader, bar)
	}

	finalPath, err := fileutil.WriteStreamAtomic(dir, fileName, reader, size)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "remote", "fetch",
			fmt.Sprintf("download %s", candidate.Name), err)
	}

	kind, _ := media.KindForExtension(path.Ext(candidate.Name))
	ref := &catalog.MediaReference{
		TableID:  record.ID,
		Category: candidate.Category,
		Kind:     kind,
		Path:     finalPath,
		Origin:   catalog.OriginFTP,
	}
	batch := catalog.NewBatch(record.Name).AddMediaReference(ref)
	if err := f.store.Apply(ctx, batch); err != nil {
		return nil, services.Wrap(services.ErrStorage, "remote", "fetch",
			fmt.Sprintf("register %s", fileName), err)
	}

	result.Path = finalPath
	f.logger.Info("media fetched",
		logging.String(logging.FieldTable, record.Name),
		logging.String(logging.FieldCategory, string(candidate.Category)),
		logging.String(logging.FieldPath, finalPath),
	)
	return result, nil
}

// contextReader aborts an in-flight download as soon as its context ends,
// so a cancelled fetch never blocks on a stalled data connection.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
