package remote

import (
	"context"
	"log/slog"
	"strings"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/logging"
	"github.com/keithbphillips/PinballUX/internal/media"
	"github.com/keithbphillips/PinballUX/internal/textutil"
)

// Candidate is one remote file accepted for a record.
type Candidate struct {
	// Category is the listing that holds the file; a dmd request can
	// surface candidates from any configured alias category.
	Category   catalog.MediaCategory `json:"category"`
	Name       string                `json:"name"`
	Similarity float64               `json:"similarity"`
}

// Matcher finds remote files likely belonging to one record. Acceptance is
// purely name-stem similarity against the configured floor; the extension
// never participates, which is what lets a remote .f4v stand in for a
// local .mp4 of the same stem.
type Matcher struct {
	lister *CachedLister
	cfg    *config.Config
	logger *slog.Logger
}

// NewMatcher wires a matcher over a cached lister.
func NewMatcher(lister *CachedLister, cfg *config.Config, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Matcher{
		lister: lister,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "remote"),
	}
}

// FindCandidates compares the record name against every listed stem of the
// requested categories. Requesting the dmd category probes the configured
// alias chain in order, and matches from different aliases stay distinct.
// An empty category list means every category.
func (m *Matcher) FindCandidates(ctx context.Context, record *catalog.Record, categories []catalog.MediaCategory, refresh bool) ([]Candidate, error) {
	if len(categories) == 0 {
		categories = media.Categories()
	}
	probes := m.expand(categories)
	threshold := m.cfg.Matching.RemoteSimilarity

	var out []Candidate
	for _, category := range probes {
		names, _, err := m.lister.List(ctx, category, refresh)
		if err != nil {
			return nil, err
		}
		matched := 0
		for _, name := range names {
			similarity := bestSimilarity(record.Name, name, category)
			if similarity >= threshold {
				out = append(out, Candidate{Category: category, Name: name, Similarity: similarity})
				matched++
			}
		}
		m.logger.Debug("category probed",
			logging.String(logging.FieldTable, record.Name),
			logging.String(logging.FieldCategory, string(category)),
			logging.Int(logging.FieldCount, matched),
		)
	}
	return out, nil
}

// expand resolves the dmd alias chain, keeping the first occurrence of
// every probed category.
func (m *Matcher) expand(categories []catalog.MediaCategory) []catalog.MediaCategory {
	var probes []catalog.MediaCategory
	seen := make(map[catalog.MediaCategory]bool)
	add := func(category catalog.MediaCategory) {
		if !seen[category] {
			seen[category] = true
			probes = append(probes, category)
		}
	}
	for _, category := range categories {
		if category != catalog.CategoryDMD {
			add(category)
			continue
		}
		for _, alias := range m.cfg.Remote.DMDAliases {
			parsed, err := media.ParseCategory(alias)
			if err != nil {
				m.logger.Warn("unknown dmd alias in configuration", logging.String("alias", alias))
				continue
			}
			add(parsed)
		}
	}
	return probes
}

// bestSimilarity compares the record name to the stem raw and, when the
// stem carries a trailing category token ("BanzaiRun_DMD"), with that
// token stripped. The best ratio wins.
func bestSimilarity(recordName, fileName string, category catalog.MediaCategory) float64 {
	stem := textutil.Stem(fileName)
	best := textutil.SimilarityRatio(recordName, stem)
	for _, token := range aliasTokens(category) {
		trimmed := textutil.TrimAliasSuffix(stem, token)
		if trimmed == stem {
			continue
		}
		if sim := textutil.SimilarityRatio(recordName, trimmed); sim > best {
			best = sim
		}
	}
	return best
}

func aliasTokens(category catalog.MediaCategory) []string {
	token := string(category)
	compact := strings.ReplaceAll(token, "_", "")
	if compact == token {
		return []string{token}
	}
	return []string{token, compact}
}
