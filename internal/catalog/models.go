package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Record is one catalog row describing a pinball table file on disk.
//
// Identity lives in ID, never in FilePath: media references, play history,
// and user settings hang off the ID so files can move or be renamed without
// losing them.
type Record struct {
	ID           int64
	Name         string
	Manufacturer string
	Year         int
	Author       string
	ROMName      string
	TableType    string
	Players      int
	Description  string

	FilePath string
	FileSize int64
	Enabled  bool

	// User-owned fields. Reconciliation never writes these.
	CustomLauncher   string
	PlayCount        int
	Favorite         bool
	Rating           int
	LastPlayed       *time.Time
	TotalPlaySeconds int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanonicalTitle renders the record in "Name (Manufacturer Year)" form when
// the attributes are known, falling back to whatever subset exists.
func (r *Record) CanonicalTitle() string {
	name := strings.TrimSpace(r.Name)
	manufacturer := strings.TrimSpace(r.Manufacturer)
	switch {
	case manufacturer != "" && r.Year > 0:
		return fmt.Sprintf("%s (%s %d)", name, manufacturer, r.Year)
	case manufacturer != "":
		return fmt.Sprintf("%s (%s)", name, manufacturer)
	case r.Year > 0:
		return fmt.Sprintf("%s (%d)", name, r.Year)
	default:
		return name
	}
}

// MediaCategory names a media slot on the frontend layout.
type MediaCategory string

const (
	CategoryTable        MediaCategory = "table"
	CategoryBackglass    MediaCategory = "backglass"
	CategoryDMD          MediaCategory = "dmd"
	CategoryFullDMD      MediaCategory = "fulldmd"
	CategoryRealDMD      MediaCategory = "real_dmd"
	CategoryRealDMDColor MediaCategory = "real_dmd_color"
	CategoryTopper       MediaCategory = "topper"
	CategoryWheel        MediaCategory = "wheel"
	CategoryLaunchAudio  MediaCategory = "launch_audio"
	CategoryTableAudio   MediaCategory = "table_audio"
)

// MediaKind is the broad asset type of a media file.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// MediaOrigin records where an asset came from.
type MediaOrigin string

const (
	OriginFTP  MediaOrigin = "ftp"
	OriginPack MediaOrigin = "pack"
)

// MediaReference associates a stored media file with a record.
type MediaReference struct {
	ID        int64
	TableID   int64
	Category  MediaCategory
	Kind      MediaKind
	Path      string
	Origin    MediaOrigin
	CreatedAt time.Time
}

// PlaySession is one recorded play of a table.
type PlaySession struct {
	ID              int64
	TableID         int64
	StartedAt       time.Time
	DurationSeconds int64
}

// TableInfo carries the descriptive fields a metadata refresh may rewrite.
// User-owned fields are deliberately absent.
type TableInfo struct {
	Name         string
	Manufacturer string
	Year         int
	Author       string
	ROMName      string
	TableType    string
	Players      int
	Description  string
}

// Stats aggregates catalog state for status output.
type Stats struct {
	Total            int                   `json:"total"`
	Enabled          int                   `json:"enabled"`
	Disabled         int                   `json:"disabled"`
	Favorites        int                   `json:"favorites"`
	TotalPlays       int                   `json:"total_plays"`
	TotalPlaySeconds int64                 `json:"total_play_seconds"`
	MediaByOrigin    map[MediaOrigin]int   `json:"media_by_origin"`
	MediaByCategory  map[MediaCategory]int `json:"media_by_category"`
}

// DatabaseHealth reports diagnostic information about the catalog database.
type DatabaseHealth struct {
	DBPath           string `json:"db_path"`
	DatabaseExists   bool   `json:"database_exists"`
	DatabaseReadable bool   `json:"database_readable"`
	IntegrityCheck   bool   `json:"integrity_check"`
	TotalRecords     int    `json:"total_records"`
	Error            string `json:"error,omitempty"`
}
