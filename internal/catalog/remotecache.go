package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// CachedListing returns the cached remote file names of one category when a
// cache entry exists and is younger than ttl. The second return reports a
// usable hit. A ttl <= 0 disables the cache entirely.
func (s *Store) CachedListing(ctx context.Context, category string, ttl time.Duration) ([]string, bool, error) {
	if ttl <= 0 {
		return nil, false, nil
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT name, cached_at FROM remote_listing_cache WHERE category = ?`,
		category,
	)
	if err != nil {
		return nil, false, fmt.Errorf("query listing cache: %w", err)
	}
	defer rows.Close()

	var (
		names  []string
		oldest time.Time
	)
	for rows.Next() {
		var name, cachedRaw string
		if err := rows.Scan(&name, &cachedRaw); err != nil {
			return nil, false, err
		}
		cached, err := parseTimeString(cachedRaw)
		if err != nil {
			// Unparseable timestamps poison the whole category; treat as miss.
			return nil, false, nil
		}
		if oldest.IsZero() || cached.Before(oldest) {
			oldest = cached
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	if len(names) == 0 {
		return nil, false, nil
	}
	if time.Since(oldest) > ttl {
		return nil, false, nil
	}

	sort.Strings(names)
	return names, true, nil
}

// StoreListing replaces the cached listing of one category.
func (s *Store) StoreListing(ctx context.Context, category string, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin listing tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM remote_listing_cache WHERE category = ?`, category); err != nil {
		return fmt.Errorf("clear listing cache: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, name := range names {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO remote_listing_cache (category, name, cached_at) VALUES (?, ?, ?)`,
			category, name, now,
		); err != nil {
			return fmt.Errorf("insert listing entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit listing cache: %w", err)
	}
	return nil
}

// InvalidateListing drops the cached listing of one category.
func (s *Store) InvalidateListing(ctx context.Context, category string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM remote_listing_cache WHERE category = ?`, category); err != nil {
		return fmt.Errorf("invalidate listing cache: %w", err)
	}
	return nil
}
