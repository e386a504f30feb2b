package catalog

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

const recordColumns = "id, name, manufacturer, year, author, rom_name, table_type, players, description, " +
	"file_path, file_size, enabled, custom_launcher, play_count, favorite, rating, last_played, " +
	"total_play_time_seconds, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id            int64
		name          string
		manufacturer  sql.NullString
		year          sql.NullInt64
		author        sql.NullString
		romName       sql.NullString
		tableType     sql.NullString
		players       sql.NullInt64
		description   sql.NullString
		filePath      string
		fileSize      int64
		enabled       sql.NullInt64
		launcher      sql.NullString
		playCount     sql.NullInt64
		favorite      sql.NullInt64
		rating        sql.NullInt64
		lastPlayedRaw sql.NullString
		totalPlay     sql.NullInt64
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&name,
		&manufacturer,
		&year,
		&author,
		&romName,
		&tableType,
		&players,
		&description,
		&filePath,
		&fileSize,
		&enabled,
		&launcher,
		&playCount,
		&favorite,
		&rating,
		&lastPlayedRaw,
		&totalPlay,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:               id,
		Name:             name,
		Manufacturer:     manufacturer.String,
		Year:             int(year.Int64),
		Author:           author.String,
		ROMName:          romName.String,
		TableType:        tableType.String,
		Players:          int(players.Int64),
		Description:      description.String,
		FilePath:         filePath,
		FileSize:         fileSize,
		Enabled:          enabled.Int64 != 0,
		CustomLauncher:   launcher.String,
		PlayCount:        int(playCount.Int64),
		Favorite:         favorite.Int64 != 0,
		Rating:           int(rating.Int64),
		TotalPlaySeconds: totalPlay.Int64,
	}

	if lastPlayedRaw.Valid {
		if played, err := parseTimeString(lastPlayedRaw.String); err == nil {
			record.LastPlayed = &played
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func scanMediaReference(scanner interface{ Scan(dest ...any) error }) (*MediaReference, error) {
	var (
		id         int64
		tableID    int64
		category   string
		kind       string
		path       string
		origin     string
		createdRaw sql.NullString
	)

	if err := scanner.Scan(&id, &tableID, &category, &kind, &path, &origin, &createdRaw); err != nil {
		return nil, err
	}

	ref := &MediaReference{
		ID:       id,
		TableID:  tableID,
		Category: MediaCategory(category),
		Kind:     MediaKind(kind),
		Path:     path,
		Origin:   MediaOrigin(origin),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		ref.CreatedAt = created
	}
	return ref, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
