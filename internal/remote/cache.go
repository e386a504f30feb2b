package remote

import (
	"context"
	"log/slog"
	"time"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/logging"
)

// CachedLister serves category listings from the catalog's listing cache,
// falling back to the live source and rewriting the cache on a miss. Cache
// failures degrade to live listings; they never fail the operation.
type CachedLister struct {
	source Source
	store  *catalog.Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedLister wraps a source with the persistent listing cache.
func NewCachedLister(source Source, store *catalog.Store, ttl time.Duration, logger *slog.Logger) *CachedLister {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CachedLister{
		source: source,
		store:  store,
		ttl:    ttl,
		logger: logging.NewComponentLogger(logger, "remote"),
	}
}

// List returns the category's remote file names. refresh bypasses the
// cache and rewrites it. The bool reports whether the cache served the
// result.
func (c *CachedLister) List(ctx context.Context, category catalog.MediaCategory, refresh bool) ([]string, bool, error) {
	if !refresh {
		names, ok, err := c.store.CachedListing(ctx, string(category), c.ttl)
		if err != nil {
			c.logger.Warn("listing cache read failed",
				logging.String(logging.FieldCategory, string(category)),
				logging.Error(err),
			)
		} else if ok {
			c.logger.Debug("listing served from cache",
				logging.String(logging.FieldCategory, string(category)),
				logging.Int(logging.FieldCount, len(names)),
			)
			return names, true, nil
		}
	}

	names, err := c.source.List(ctx, category)
	if err != nil {
		return nil, false, err
	}
	if err := c.store.StoreListing(ctx, string(category), names); err != nil {
		c.logger.Warn("listing cache write failed",
			logging.String(logging.FieldCategory, string(category)),
			logging.Error(err),
		)
	}
	return names, false, nil
}
