// Package media maps catalog media categories onto the on-disk layout under
// the media root and names asset files canonically after their records.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/textutil"
)

var kindExtensions = map[catalog.MediaKind][]string{
	catalog.KindImage: {".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff"},
	catalog.KindVideo: {".mp4", ".avi", ".mov", ".wmv", ".mkv", ".webm", ".f4v", ".flv"},
	catalog.KindAudio: {".mp3", ".wav", ".ogg", ".m4a", ".flac"},
}

// directb2s backglass files render as images even though they are XML.
const backglassExtension = ".directb2s"

var categoryDirs = map[catalog.MediaCategory]map[catalog.MediaKind]string{
	catalog.CategoryTable:        {catalog.KindImage: "images/table", catalog.KindVideo: "videos/table"},
	catalog.CategoryBackglass:    {catalog.KindImage: "images/backglass", catalog.KindVideo: "videos/backglass"},
	catalog.CategoryDMD:          {catalog.KindImage: "images/dmd", catalog.KindVideo: "videos/dmd"},
	catalog.CategoryFullDMD:      {catalog.KindVideo: "videos/fulldmd"},
	catalog.CategoryRealDMD:      {catalog.KindImage: "images/real_dmd", catalog.KindVideo: "videos/real_dmd"},
	catalog.CategoryRealDMDColor: {catalog.KindImage: "images/real_dmd_color", catalog.KindVideo: "videos/real_dmd_color"},
	catalog.CategoryTopper:       {catalog.KindImage: "images/topper", catalog.KindVideo: "videos/topper"},
	catalog.CategoryWheel:        {catalog.KindImage: "images/wheel"},
	catalog.CategoryLaunchAudio:  {catalog.KindAudio: "audio/launch"},
	catalog.CategoryTableAudio:   {catalog.KindAudio: "audio/table"},
}

var categoryOrder = []catalog.MediaCategory{
	catalog.CategoryTable,
	catalog.CategoryBackglass,
	catalog.CategoryDMD,
	catalog.CategoryFullDMD,
	catalog.CategoryRealDMD,
	catalog.CategoryRealDMDColor,
	catalog.CategoryTopper,
	catalog.CategoryWheel,
	catalog.CategoryLaunchAudio,
	catalog.CategoryTableAudio,
}

// Categories lists every media category in display order.
func Categories() []catalog.MediaCategory {
	out := make([]catalog.MediaCategory, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory resolves a user-supplied category name.
func ParseCategory(value string) (catalog.MediaCategory, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, category := range categoryOrder {
		if normalized == string(category) {
			return category, nil
		}
	}
	return "", fmt.Errorf("unknown media category %q", value)
}

// KindForExtension classifies a file extension. The extension may be given
// with or without its leading dot, in any case.
func KindForExtension(ext string) (catalog.MediaKind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(ext))
	if normalized == "" {
		return "", false
	}
	if !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}
	if normalized == backglassExtension {
		return catalog.KindImage, true
	}
	for kind, extensions := range kindExtensions {
		for _, known := range extensions {
			if normalized == known {
				return kind, true
			}
		}
	}
	return "", false
}

// CanonicalFileName names an asset after its record, sanitized for the
// filesystem, keeping the source extension.
func CanonicalFileName(record *catalog.Record, ext string) string {
	normalized := strings.ToLower(ext)
	if normalized != "" && !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}
	return textutil.SanitizeFileName(record.Name) + normalized
}

// Layout resolves category and kind pairs to directories under the media
// root.
type Layout struct {
	root string
}

// NewLayout returns a layout rooted at the configured media directory.
func NewLayout(mediaDir string) Layout {
	return Layout{root: mediaDir}
}

// Root returns the media root directory.
func (l Layout) Root() string {
	return l.root
}

// Dir returns the directory holding a category's assets of one kind.
// Pairings the layout does not carry (a wheel video, say) are errors.
func (l Layout) Dir(category catalog.MediaCategory, kind catalog.MediaKind) (string, error) {
	kinds, ok := categoryDirs[category]
	if !ok {
		return "", fmt.Errorf("unknown media category %q", category)
	}
	sub, ok := kinds[kind]
	if !ok {
		return "", fmt.Errorf("category %q has no %s assets", category, kind)
	}
	return filepath.Join(l.root, filepath.FromSlash(sub)), nil
}

// DestinationFor resolves where an incoming file for a record lands: the
// category directory for the file's kind, and the canonical file name.
func (l Layout) DestinationFor(record *catalog.Record, category catalog.MediaCategory, sourceName string) (string, string, error) {
	ext := filepath.Ext(sourceName)
	kind, ok := KindForExtension(ext)
	if !ok {
		return "", "", fmt.Errorf("unsupported media extension %q", ext)
	}
	dir, err := l.Dir(category, kind)
	if err != nil {
		return "", "", err
	}
	return dir, CanonicalFileName(record, ext), nil
}

// FindExisting looks for any asset already stored for the record in the
// category, across every kind directory and extension the category carries.
func (l Layout) FindExisting(record *catalog.Record, category catalog.MediaCategory) (string, bool) {
	kinds, ok := categoryDirs[category]
	if !ok {
		return "", false
	}
	for _, kind := range []catalog.MediaKind{catalog.KindImage, catalog.KindVideo, catalog.KindAudio} {
		sub, ok := kinds[kind]
		if !ok {
			continue
		}
		extensions := kindExtensions[kind]
		if category == catalog.CategoryBackglass && kind == catalog.KindImage {
			extensions = append(append([]string(nil), extensions...), backglassExtension)
		}
		for _, ext := range extensions {
			candidate := filepath.Join(l.root, filepath.FromSlash(sub), CanonicalFileName(record, ext))
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate, true
			}
		}
	}
	return "", false
}
