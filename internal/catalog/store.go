package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/keithbphillips/PinballUX/internal/config"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.DatabasePath
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Pragmas are per-connection; SQLite serializes writers anyway, so a
	// single pooled connection keeps them in force.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Create inserts a new record and returns it with its assigned ID.
func (s *Store) Create(ctx context.Context, record *Record) (*Record, error) {
	if record == nil {
		return nil, errors.New("record is nil")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tables (
            name, manufacturer, year, author, rom_name, table_type, players,
            description, file_path, file_size, enabled, custom_launcher,
            play_count, favorite, rating, last_played, total_play_time_seconds,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Name,
		nullableString(record.Manufacturer),
		nullableInt(record.Year),
		nullableString(record.Author),
		nullableString(record.ROMName),
		nullableString(record.TableType),
		nullableInt(record.Players),
		nullableString(record.Description),
		record.FilePath,
		record.FileSize,
		boolToInt(record.Enabled),
		nullableString(record.CustomLauncher),
		record.PlayCount,
		boolToInt(record.Favorite),
		record.Rating,
		nullableTime(record.LastPlayed),
		record.TotalPlaySeconds,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a record by identifier. A missing record returns nil, nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM tables WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// GetByPath fetches the record owning a file path.
func (s *Store) GetByPath(ctx context.Context, path string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM tables WHERE file_path = ?`, path)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record by path: %w", err)
	}
	return record, nil
}

// List returns every record, enabled or not, in stable name order.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	return s.list(ctx, `SELECT `+recordColumns+` FROM tables ORDER BY name COLLATE NOCASE, id`)
}

// ListEnabled returns only enabled records in stable name order.
func (s *Store) ListEnabled(ctx context.Context) ([]*Record, error) {
	return s.list(ctx, `SELECT `+recordColumns+` FROM tables WHERE enabled = 1 ORDER BY name COLLATE NOCASE, id`)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SearchByName returns records whose names contain the query,
// case-insensitively, in stable name order.
func (s *Store) SearchByName(ctx context.Context, query string) ([]*Record, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}
	// SQLite LIKE is already case-insensitive for ASCII.
	pattern := "%" + escapeLike(trimmed) + "%"
	return s.list(
		ctx,
		`SELECT `+recordColumns+` FROM tables WHERE name LIKE ? ESCAPE '\' ORDER BY name COLLATE NOCASE, id`,
		pattern,
	)
}

// SetEnabled flips the enabled flag without touching anything else.
func (s *Store) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE tables SET enabled = ?, updated_at = ? WHERE id = ?`,
		boolToInt(enabled),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set enabled: %w", err)
	}
	return nil
}

// SetFavorite flips the favorite flag.
func (s *Store) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE tables SET favorite = ?, updated_at = ? WHERE id = ?`,
		boolToInt(favorite),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set favorite: %w", err)
	}
	return nil
}

// SetRating stores a 0-5 star rating.
func (s *Store) SetRating(ctx context.Context, id int64, rating int) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rating %d out of range 0-5", rating)
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE tables SET rating = ?, updated_at = ? WHERE id = ?`,
		rating,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	return nil
}

// RecordPlay appends a play session and rolls its duration into the record's
// aggregates in one transaction.
func (s *Store) RecordPlay(ctx context.Context, id int64, startedAt time.Time, duration time.Duration) error {
	seconds := int64(duration / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin play tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO play_sessions (table_id, started_at, duration_seconds) VALUES (?, ?, ?)`,
		id,
		startedAt.UTC().Format(time.RFC3339Nano),
		seconds,
	); err != nil {
		return fmt.Errorf("insert play session: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE tables
         SET play_count = play_count + 1,
             last_played = ?,
             total_play_time_seconds = total_play_time_seconds + ?,
             updated_at = ?
         WHERE id = ?`,
		startedAt.UTC().Format(time.RFC3339Nano),
		seconds,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("update play aggregates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit play: %w", err)
	}
	return nil
}

// PlaySessions returns the play history of one record, oldest first.
func (s *Store) PlaySessions(ctx context.Context, tableID int64) ([]*PlaySession, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, table_id, started_at, duration_seconds
         FROM play_sessions WHERE table_id = ? ORDER BY started_at, id`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("query play sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*PlaySession
	for rows.Next() {
		var (
			session    PlaySession
			startedRaw string
		)
		if err := rows.Scan(&session.ID, &session.TableID, &startedRaw, &session.DurationSeconds); err != nil {
			return nil, err
		}
		if started, err := parseTimeString(startedRaw); err == nil {
			session.StartedAt = started
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

// Remove hard-deletes a record; media references and play sessions go with it
// via the foreign-key cascade.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// AddMediaReference registers a stored media file for a record.
func (s *Store) AddMediaReference(ctx context.Context, ref *MediaReference) (*MediaReference, error) {
	if ref == nil {
		return nil, errors.New("media reference is nil")
	}
	now := time.Now().UTC()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO media_references (table_id, category, kind, path, origin, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		ref.TableID,
		string(ref.Category),
		string(ref.Kind),
		ref.Path,
		string(ref.Origin),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert media reference: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	stored := *ref
	stored.ID = id
	stored.CreatedAt = now
	return &stored, nil
}

// MediaForTable returns the media references of one record, newest last.
func (s *Store) MediaForTable(ctx context.Context, tableID int64) ([]*MediaReference, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, table_id, category, kind, path, origin, created_at
         FROM media_references WHERE table_id = ? ORDER BY created_at, id`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("query media references: %w", err)
	}
	defer rows.Close()

	var refs []*MediaReference
	for rows.Next() {
		ref, err := scanMediaReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// RemoveMediaReference deletes one media reference row.
func (s *Store) RemoveMediaReference(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media_references WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete media reference: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats aggregates catalog counts for status output.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		MediaByOrigin:   make(map[MediaOrigin]int),
		MediaByCategory: make(map[MediaCategory]int),
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1),
                COALESCE(SUM(enabled), 0),
                COALESCE(SUM(favorite), 0),
                COALESCE(SUM(play_count), 0),
                COALESCE(SUM(total_play_time_seconds), 0)
         FROM tables`,
	)
	if err := row.Scan(&stats.Total, &stats.Enabled, &stats.Favorites, &stats.TotalPlays, &stats.TotalPlaySeconds); err != nil {
		return Stats{}, fmt.Errorf("record stats: %w", err)
	}
	stats.Disabled = stats.Total - stats.Enabled

	rows, err := s.db.QueryContext(ctx, `SELECT origin, category, COUNT(1) FROM media_references GROUP BY origin, category`)
	if err != nil {
		return Stats{}, fmt.Errorf("media stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var origin, category string
		var count int
		if err := rows.Scan(&origin, &category, &count); err != nil {
			return Stats{}, err
		}
		stats.MediaByOrigin[MediaOrigin(origin)] += count
		stats.MediaByCategory[MediaCategory(category)] += count
	}
	return stats, rows.Err()
}

// CheckHealth returns diagnostic information about the catalog database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("catalog database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat catalog database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("catalog database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("catalog database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping catalog database: %w", err)
	}
	health.DatabaseReadable = true

	row := s.db.QueryRowContext(connCtx, `SELECT COUNT(1) FROM tables`)
	if err := row.Scan(&health.TotalRecords); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("count records: %w", err)
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}
