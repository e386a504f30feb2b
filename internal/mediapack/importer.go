// Package mediapack imports media files from community table packs.
//
// A pack is a zip archive (or an extracted tree) whose canonical root
// directory holds category subdirectories like "Backglass Images" or
// "Table Videos". Every file in a recognized subdirectory is proposed
// against the best-matching catalog record; an injected decision function
// confirms or skips each proposal, so the importer never auto-commits.
package mediapack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/fileutil"
	"github.com/keithbphillips/PinballUX/internal/logging"
	"github.com/keithbphillips/PinballUX/internal/media"
	"github.com/keithbphillips/PinballUX/internal/services"
	"github.com/keithbphillips/PinballUX/internal/textutil"
)

// Decision is an operator's verdict on one proposal.
type Decision int

const (
	// DecisionConfirm imports the proposed file for the matched record.
	DecisionConfirm Decision = iota
	// DecisionSkip leaves the file alone and moves to the next one.
	DecisionSkip
	// DecisionSkipAll abandons the rest of the run; remaining entries are
	// never scored.
	DecisionSkipAll
)

// Proposal pairs a pack entry with the best-matching enabled record.
// Similarity is advisory; no floor is applied before asking.
type Proposal struct {
	Entry      Entry
	Category   catalog.MediaCategory
	Record     *catalog.Record
	Similarity float64
}

// DecisionFunc decides one proposal. An error aborts the run.
type DecisionFunc func(Proposal) (Decision, error)

// Report summarizes one import run.
type Report struct {
	SessionID    string   `json:"session_id"`
	Proposed     int      `json:"proposed"`
	Confirmed    int      `json:"confirmed"`
	Skipped      int      `json:"skipped"`
	Unscored     int      `json:"unscored"`
	Unrecognized []string `json:"unrecognized,omitempty"`
}

// Importer proposes and imports media-pack files.
type Importer struct {
	cfg    *config.Config
	store  *catalog.Store
	layout media.Layout
	logger *slog.Logger
}

// NewImporter wires an importer over the catalog store and media layout.
func NewImporter(cfg *config.Config, store *catalog.Store, layout media.Layout, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Importer{
		cfg:    cfg,
		store:  store,
		layout: layout,
		logger: logging.NewComponentLogger(logger, "mediapack"),
	}
}

type queued struct {
	category catalog.MediaCategory
	entry    Entry
}

// Run walks the pack entries and imports whatever the decision function
// confirms. Entries are scored lazily, one proposal at a time, so a
// skip-all decision leaves the remainder untouched and uncounted except
// as unscored. Only a catalog-storage failure aborts the run; per-file
// extraction errors are logged and counted as skipped.
func (imp *Importer) Run(ctx context.Context, entries []Entry, decide DecisionFunc) (*Report, error) {
	report := &Report{SessionID: uuid.NewString()}
	logger := imp.logger.With(logging.String(logging.FieldRunID, report.SessionID))

	records, err := imp.store.ListEnabled(ctx)
	if err != nil {
		return report, services.Wrap(services.ErrStorage, "mediapack", "import", "list enabled tables", err)
	}
	if len(records) == 0 {
		return report, services.Wrap(services.ErrValidation, "mediapack", "import",
			"catalog has no enabled tables to match against", nil)
	}

	root, ok := findArchiveRoot(entries, imp.cfg.Importer.ArchiveRoot)
	if !ok {
		return report, services.Wrap(services.ErrValidation, "mediapack", "import",
			fmt.Sprintf("no %q directory found in pack", imp.cfg.Importer.ArchiveRoot), nil)
	}
	logger.Info("media pack opened",
		logging.String(logging.FieldPath, root),
		logging.Int(logging.FieldCount, len(entries)),
	)

	queue, unrecognized := imp.buildQueue(entries, root)
	report.Unrecognized = unrecognized

	for i, item := range queue {
		if err := ctx.Err(); err != nil {
			report.Unscored = len(queue) - i
			return report, err
		}

		record, similarity := bestMatch(item.entry, records)
		proposal := Proposal{
			Entry:      item.entry,
			Category:   item.category,
			Record:     record,
			Similarity: similarity,
		}
		report.Proposed++

		decision, err := decide(proposal)
		if err != nil {
			report.Unscored = len(queue) - i - 1
			return report, err
		}
		switch decision {
		case DecisionConfirm:
			finalPath, err := imp.confirm(ctx, item, record)
			if errors.Is(err, services.ErrStorage) {
				report.Unscored = len(queue) - i - 1
				return report, err
			}
			if err != nil {
				logger.Warn("import failed",
					logging.String(logging.FieldPath, item.entry.RelativePath),
					logging.Error(err),
				)
				report.Skipped++
				continue
			}
			report.Confirmed++
			logger.Info("media imported",
				logging.String(logging.FieldTable, record.Name),
				logging.String(logging.FieldCategory, string(item.category)),
				logging.String(logging.FieldPath, finalPath),
			)
		case DecisionSkip:
			report.Skipped++
		case DecisionSkipAll:
			report.Skipped++
			report.Unscored = len(queue) - i - 1
			logger.Info("remaining entries skipped",
				logging.Int(logging.FieldCount, report.Unscored),
			)
			return report, nil
		default:
			report.Unscored = len(queue) - i - 1
			return report, services.Wrap(services.ErrValidation, "mediapack", "import",
				fmt.Sprintf("unknown decision %d", decision), nil)
		}
	}

	logger.Info("media pack import complete",
		logging.Int("proposed", report.Proposed),
		logging.Int("confirmed", report.Confirmed),
		logging.Int("skipped", report.Skipped),
	)
	return report, nil
}

// findArchiveRoot locates the canonical pack directory. Any directory
// segment containing the configured root name counts, at any depth, so
// "Media Pack/Visual Pinball/..." and "visual pinball/..." both resolve.
func findArchiveRoot(entries []Entry, rootName string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(rootName))
	if want == "" {
		return "", false
	}
	for _, entry := range entries {
		segments := strings.Split(path.Clean(entry.RelativePath), "/")
		for i := 0; i < len(segments)-1; i++ {
			if strings.Contains(strings.ToLower(segments[i]), want) {
				return path.Join(segments[:i+1]...), true
			}
		}
	}
	return "", false
}

// buildQueue groups the pack's media files under the archive root by
// category, in display order. Directories holding media files that match
// no alias are reported back rather than guessed at.
func (imp *Importer) buildQueue(entries []Entry, root string) ([]queued, []string) {
	prefix := root + "/"
	grouped := make(map[catalog.MediaCategory][]Entry)
	unknown := make(map[string]bool)

	for _, entry := range entries {
		cleaned := path.Clean(entry.RelativePath)
		if !strings.HasPrefix(cleaned, prefix) {
			continue
		}
		rest := strings.TrimPrefix(cleaned, prefix)
		dir := path.Dir(rest)
		if dir == "." {
			continue
		}
		if _, ok := media.KindForExtension(path.Ext(rest)); !ok {
			continue
		}
		category, ok := imp.classify(dir)
		if !ok {
			unknown[dir] = true
			continue
		}
		grouped[category] = append(grouped[category], entry)
	}

	var queue []queued
	for _, category := range media.Categories() {
		for _, entry := range grouped[category] {
			queue = append(queue, queued{category: category, entry: entry})
		}
	}

	var unrecognized []string
	for dir := range unknown {
		unrecognized = append(unrecognized, dir)
	}
	sort.Strings(unrecognized)
	return queue, unrecognized
}

// classify resolves a category subdirectory name. A directory is
// recognized when it carries both a kind marker (image/video/audio) and
// one of the configured category aliases.
func (imp *Importer) classify(dir string) (catalog.MediaCategory, bool) {
	lowered := strings.ToLower(dir)
	if !strings.Contains(lowered, "image") &&
		!strings.Contains(lowered, "video") &&
		!strings.Contains(lowered, "audio") {
		return "", false
	}
	for _, category := range media.Categories() {
		for _, pattern := range imp.cfg.Importer.Aliases[string(category)] {
			if strings.Contains(lowered, strings.ToLower(pattern)) {
				return category, true
			}
		}
	}
	return "", false
}

// bestMatch scores an entry's stem against every enabled record, on both
// the bare name and the "Name (Manufacturer Year)" title, and returns the
// single best. There is no floor: the operator sees the confidence and
// decides.
func bestMatch(entry Entry, records []*catalog.Record) (*catalog.Record, float64) {
	stem := textutil.Stem(path.Base(entry.RelativePath))
	var best *catalog.Record
	bestSim := -1.0
	for _, record := range records {
		sim := textutil.SimilarityRatio(stem, record.Name)
		if title := record.CanonicalTitle(); title != record.Name {
			if s := textutil.SimilarityRatio(stem, title); s > sim {
				sim = s
			}
		}
		if sim > bestSim {
			best = record
			bestSim = sim
		}
	}
	return best, bestSim
}

// confirm streams the entry into the media layout under the record's
// canonical name and registers the reference in one batch. Storage
// failures come back wrapped as ErrStorage; anything else is a file-level
// problem the caller may treat as recoverable.
func (imp *Importer) confirm(ctx context.Context, item queued, record *catalog.Record) (string, error) {
	name := path.Base(item.entry.RelativePath)
	dir, fileName, err := imp.layout.DestinationFor(record, item.category, name)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "mediapack", "import",
			fmt.Sprintf("place %s", name), err)
	}

	stream, err := item.entry.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", item.entry.RelativePath, err)
	}
	finalPath, err := fileutil.WriteStreamAtomic(dir, fileName, &contextReader{ctx: ctx, r: stream}, item.entry.Size)
	stream.Close()
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", item.entry.RelativePath, err)
	}

	kind, _ := media.KindForExtension(path.Ext(name))
	ref := &catalog.MediaReference{
		TableID:  record.ID,
		Category: item.category,
		Kind:     kind,
		Path:     finalPath,
		Origin:   catalog.OriginPack,
	}
	batch := catalog.NewBatch(record.Name).AddMediaReference(ref)
	if err := imp.store.Apply(ctx, batch); err != nil {
		return "", services.Wrap(services.ErrStorage, "mediapack", "import",
			fmt.Sprintf("register %s", fileName), err)
	}
	return finalPath, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
