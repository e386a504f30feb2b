// Package match scores scanned table files against catalog records. The
// score is a deterministic integer; the only real-valued input is the name
// similarity ratio, and it is consumed solely by discrete threshold checks.
package match

import (
	"math"
	"strings"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/metadata"
	"github.com/keithbphillips/PinballUX/internal/textutil"
)

// Axis weights. The name axis dominates so attribute coincidences alone can
// never rebind a file to an unrelated record.
const (
	nameExactScore    = 10
	nameContainsScore = 7
	nameWithinScore   = 5
	namePartialBase   = 5

	manufacturerScore = 3
	yearScore         = 2
	authorScore       = 2
	romScore          = 2

	sizeExactScore = 2
	sizeNearScore  = 1
)

// Params carries the scoring thresholds. Values come from configuration;
// there are no ambient defaults here.
type Params struct {
	// AcceptThreshold is the minimum total at which a pair counts as a match.
	AcceptThreshold int
	// PartialFloor is the name similarity at which a non-substring pair still
	// earns partial name credit.
	PartialFloor float64
	// SizeTolerance is the byte window inside which unequal sizes earn
	// partial size credit.
	SizeTolerance int64
}

// Accepts reports whether a breakdown clears the accept threshold.
func (p Params) Accepts(b Breakdown) bool {
	return b.Total() >= p.AcceptThreshold
}

// Breakdown is a per-axis record score. Zero axes earned no credit.
type Breakdown struct {
	Name         int
	Manufacturer int
	Year         int
	Author       int
	ROM          int
	Size         int

	// Similarity is the name ratio the name axis saw, kept for reports.
	Similarity float64
}

// Total sums every axis.
func (b Breakdown) Total() int {
	return b.Name + b.Manufacturer + b.Year + b.Author + b.ROM + b.Size
}

// Score rates one scanned file against one record. The name axis compares
// the file stem, not the extracted name, so a record matched through a
// renamed file earns partial rather than exact credit. The second return is
// false when the pair earns no name credit at all; such pairs are ineligible
// and must not reach assignment regardless of attribute agreement.
func Score(stem string, size int64, info metadata.Info, record *catalog.Record, params Params) (Breakdown, bool) {
	credit, similarity := nameCredit(stem, record.Name, params.PartialFloor)
	if credit == 0 {
		return Breakdown{Similarity: similarity}, false
	}

	b := Breakdown{Name: credit, Similarity: similarity}

	if attrEqual(info.Manufacturer, record.Manufacturer) {
		b.Manufacturer = manufacturerScore
	}
	if info.Year != 0 && info.Year == record.Year {
		b.Year = yearScore
	}
	if attrEqual(info.Author, record.Author) {
		b.Author = authorScore
	}
	if attrEqual(info.ROMName, record.ROMName) {
		b.ROM = romScore
	}

	if size > 0 && record.FileSize > 0 {
		diff := size - record.FileSize
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			b.Size = sizeExactScore
		case diff <= params.SizeTolerance:
			b.Size = sizeNearScore
		}
	}

	return b, true
}

func nameCredit(stem, recordName string, floor float64) (int, float64) {
	normStem := textutil.NormalizeName(stem)
	normName := textutil.NormalizeName(recordName)
	if normStem == "" || normName == "" {
		return 0, 0
	}

	similarity := textutil.SimilarityRatio(normStem, normName)
	switch {
	case normStem == normName:
		return nameExactScore, similarity
	case strings.Contains(normStem, normName):
		return nameContainsScore, similarity
	case strings.Contains(normName, normStem):
		return nameWithinScore, similarity
	case similarity >= floor:
		// Partial credit scales with similarity: 6 near the floor, 7 close
		// to a full match.
		return namePartialBase + int(math.Round(2*similarity)), similarity
	default:
		return 0, similarity
	}
}

func attrEqual(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
