package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// MutationKind names one kind of catalog mutation.
type MutationKind string

const (
	MutationCreate     MutationKind = "create"
	MutationUpdatePath MutationKind = "update_path"
	MutationEnable     MutationKind = "enable"
	MutationDisable    MutationKind = "disable"
	MutationRemove     MutationKind = "remove"
	MutationAddMedia   MutationKind = "add_media"
	MutationUpdateInfo MutationKind = "update_info"
)

// Mutation is one catalog change. Which fields are meaningful depends on
// Kind.
type Mutation struct {
	Kind MutationKind

	// TableID targets an existing record for every kind except create.
	TableID int64

	// Record is the create payload. Apply fills in its assigned ID.
	Record *Record

	// Path and FileSize carry the update_path payload.
	Path     string
	FileSize int64

	// Media carries the add_media payload.
	Media *MediaReference

	// Info carries the update_info payload. Values are applied verbatim;
	// callers merge with existing state first if they want to preserve it.
	Info *TableInfo
}

// Batch is an ordered set of mutations covering one logical file or record,
// applied atomically. Flows that change many records emit many batches so a
// failure cannot leave any single record half-applied.
type Batch struct {
	// Label identifies the file or record the batch serves, for logs and
	// reports.
	Label     string
	Mutations []Mutation
}

// NewBatch returns an empty batch with a report label.
func NewBatch(label string) *Batch {
	return &Batch{Label: label}
}

// Empty reports whether the batch carries no mutations.
func (b *Batch) Empty() bool {
	return b == nil || len(b.Mutations) == 0
}

// Create queues a record insertion.
func (b *Batch) Create(record *Record) *Batch {
	b.Mutations = append(b.Mutations, Mutation{Kind: MutationCreate, Record: record})
	return b
}

// UpdatePath queues a file path and size rebind for an existing record.
func (b *Batch) UpdatePath(tableID int64, path string, fileSize int64) *Batch {
	b.Mutations = append(b.Mutations, Mutation{Kind: MutationUpdatePath, TableID: tableID, Path: path, FileSize: fileSize})
	return b
}

// Enable queues re-enabling a soft-disabled record.
func (b *Batch) Enable(tableID int64) *Batch {
	b.Mutations = append(b.Mutations, Mutation{Kind: MutationEnable, TableID: tableID})
	return b
}

// Disable queues soft-disabling a record.
func (b *Batch) Disable(tableID int64) *Batch {
	b.Mutations = append(b.Mutations, Mutation{Kind: MutationDisable, TableID: tableID})
	return b
}

// Remove queues hard-deleting a record and its dependents.
func (b *Batch) Remove(tableID int64) *Batch {
	b.Mutations = append(b.Mutations, Mutation{Kind: MutationRemove, TableID: tableID})
	return b
}

// AddMediaReference queues registering a media file for a record.
func (b *Batch) AddMediaReference(ref *MediaReference) *Batch {
	b.Mutations = append(b.Mutations, Mutation{Kind: MutationAddMedia, Media: ref})
	return b
}

// UpdateInfo queues a descriptive-field refresh for a record.
func (b *Batch) UpdateInfo(tableID int64, info TableInfo) *Batch {
	b.Mutations = append(b.Mutations, Mutation{Kind: MutationUpdateInfo, TableID: tableID, Info: &info})
	return b
}

// Apply runs every mutation of one batch inside a single transaction.
// On error nothing from the batch is visible.
func (s *Store) Apply(ctx context.Context, batch *Batch) error {
	if batch.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)

	for _, m := range batch.Mutations {
		if err := s.applyMutation(ctx, tx, m, now); err != nil {
			return fmt.Errorf("apply %s: %w", m.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (s *Store) applyMutation(ctx context.Context, tx *sql.Tx, m Mutation, now string) error {
	switch m.Kind {
	case MutationCreate:
		if m.Record == nil {
			return errors.New("create mutation without record")
		}
		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO tables (
                name, manufacturer, year, author, rom_name, table_type, players,
                description, file_path, file_size, enabled, custom_launcher,
                play_count, favorite, rating, last_played, total_play_time_seconds,
                created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.Record.Name,
			nullableString(m.Record.Manufacturer),
			nullableInt(m.Record.Year),
			nullableString(m.Record.Author),
			nullableString(m.Record.ROMName),
			nullableString(m.Record.TableType),
			nullableInt(m.Record.Players),
			nullableString(m.Record.Description),
			m.Record.FilePath,
			m.Record.FileSize,
			boolToInt(m.Record.Enabled),
			nullableString(m.Record.CustomLauncher),
			m.Record.PlayCount,
			boolToInt(m.Record.Favorite),
			m.Record.Rating,
			nullableTime(m.Record.LastPlayed),
			m.Record.TotalPlaySeconds,
			now,
			now,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		m.Record.ID = id
		return nil

	case MutationUpdatePath:
		_, err := tx.ExecContext(
			ctx,
			`UPDATE tables SET file_path = ?, file_size = ?, updated_at = ? WHERE id = ?`,
			m.Path, m.FileSize, now, m.TableID,
		)
		return err

	case MutationEnable:
		_, err := tx.ExecContext(
			ctx,
			`UPDATE tables SET enabled = 1, updated_at = ? WHERE id = ?`,
			now, m.TableID,
		)
		return err

	case MutationDisable:
		_, err := tx.ExecContext(
			ctx,
			`UPDATE tables SET enabled = 0, updated_at = ? WHERE id = ?`,
			now, m.TableID,
		)
		return err

	case MutationRemove:
		_, err := tx.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, m.TableID)
		return err

	case MutationAddMedia:
		if m.Media == nil {
			return errors.New("add_media mutation without reference")
		}
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO media_references (table_id, category, kind, path, origin, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			m.Media.TableID,
			string(m.Media.Category),
			string(m.Media.Kind),
			m.Media.Path,
			string(m.Media.Origin),
			now,
		)
		return err

	case MutationUpdateInfo:
		if m.Info == nil {
			return errors.New("update_info mutation without payload")
		}
		_, err := tx.ExecContext(
			ctx,
			`UPDATE tables
             SET name = ?, manufacturer = ?, year = ?, author = ?, rom_name = ?,
                 table_type = ?, players = ?, description = ?, updated_at = ?
             WHERE id = ?`,
			m.Info.Name,
			nullableString(m.Info.Manufacturer),
			nullableInt(m.Info.Year),
			nullableString(m.Info.Author),
			nullableString(m.Info.ROMName),
			nullableString(m.Info.TableType),
			nullableInt(m.Info.Players),
			nullableString(m.Info.Description),
			now,
			m.TableID,
		)
		return err

	default:
		return fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
}
