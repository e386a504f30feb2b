package metadata

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/keithbphillips/PinballUX/internal/textutil"
)

// Filename layouts, most specific first. The dash layout is only trusted when
// the left side is a known manufacturer, otherwise hyphenated table names
// ("Pin-Bot") would be split apart.
var (
	nameManufacturerYearPattern = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\s+(\d{4})\)`)
	manufacturerNameYearPattern = regexp.MustCompile(`^([^-]+?)\s*-\s*(.+?)\s*\((\d{4})\)`)
	nameParentheticalPattern    = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)`)
	yearPattern                 = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	bareYearPattern             = regexp.MustCompile(`^(19|20)\d{2}$`)
)

var knownManufacturers = []string{
	"Williams", "Bally", "Stern", "Gottlieb", "Data East",
	"Sega", "Midway", "Capcom", "Taito", "Zaccaria",
	"Alvin G", "Premier", "Hankin", "Chicago Coin",
	"Game Plan", "Playmatic", "Recel", "Spinball",
}

// Solid-state tables took over the market in 1977; earlier years are
// electromechanical.
const solidStateYear = 1977

// FilenameExtractor derives metadata from filename conventions alone. It
// never opens the file.
type FilenameExtractor struct{}

// NewFilenameExtractor returns the filename-heuristic extractor.
func NewFilenameExtractor() *FilenameExtractor {
	return &FilenameExtractor{}
}

// Extract parses the table filename into metadata.
func (e *FilenameExtractor) Extract(_ context.Context, path string) (Info, error) {
	stem := textutil.Stem(filepath.Base(path))
	// Underscores stand in for spaces in every layout.
	stem = strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))

	info := parseStem(stem)
	enhance(&info, stem)

	if strings.TrimSpace(info.Name) == "" {
		return Info{}, fmt.Errorf("no table name in %q", filepath.Base(path))
	}
	return info, nil
}

func parseStem(stem string) Info {
	var info Info

	if m := nameManufacturerYearPattern.FindStringSubmatch(stem); m != nil {
		info.Name = strings.TrimSpace(m[1])
		info.Manufacturer = strings.TrimSpace(m[2])
		info.Year = mustYear(m[3])
		return info
	}

	if m := manufacturerNameYearPattern.FindStringSubmatch(stem); m != nil {
		manufacturer := strings.TrimSpace(m[1])
		if isKnownManufacturer(manufacturer) {
			info.Manufacturer = manufacturer
			info.Name = strings.TrimSpace(m[2])
			info.Year = mustYear(m[3])
			return info
		}
	}

	if m := nameParentheticalPattern.FindStringSubmatch(stem); m != nil {
		info.Name = strings.TrimSpace(m[1])
		inner := strings.TrimSpace(m[2])
		if bareYearPattern.MatchString(inner) {
			info.Year = mustYear(inner)
		} else {
			info.Manufacturer = inner
		}
		return info
	}

	info.Name = fallbackName(stem)
	return info
}

// fallbackName cleans up a pattern-less stem: dots become spaces, runs of
// whitespace collapse, and all-lowercase names get title-cased.
func fallbackName(stem string) string {
	name := strings.ReplaceAll(stem, ".", " ")
	name = strings.Join(strings.Fields(name), " ")
	if name != "" && name == strings.ToLower(name) {
		name = cases.Title(language.Und).String(name)
	}
	return name
}

func enhance(info *Info, stem string) {
	if info.Year == 0 {
		if m := yearPattern.FindStringSubmatch(stem); m != nil {
			info.Year = mustYear(m[1])
		}
	}

	if info.Manufacturer == "" {
		lower := strings.ToLower(stem)
		for _, manufacturer := range knownManufacturers {
			if strings.Contains(lower, strings.ToLower(manufacturer)) {
				info.Manufacturer = manufacturer
				break
			}
		}
	}

	if info.Year > 0 {
		if info.Year < solidStateYear {
			info.TableType = "EM"
		} else {
			info.TableType = "SS"
		}
	}

	if info.Description == "" {
		var parts []string
		if info.Manufacturer != "" {
			parts = append(parts, info.Manufacturer)
		}
		if info.Year > 0 {
			parts = append(parts, strconv.Itoa(info.Year))
		}
		if info.TableType != "" {
			parts = append(parts, info.TableType)
		}
		if len(parts) > 0 {
			info.Description = "Pinball table by " + strings.Join(parts, " ")
		}
	}
}

func isKnownManufacturer(name string) bool {
	for _, manufacturer := range knownManufacturers {
		if strings.EqualFold(name, manufacturer) {
			return true
		}
	}
	return false
}

func mustYear(digits string) int {
	year, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return year
}
