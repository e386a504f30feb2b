package reconcile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/logging"
	"github.com/keithbphillips/PinballUX/internal/metadata"
	"github.com/keithbphillips/PinballUX/internal/services"
)

// RescanReport summarizes a metadata refresh pass.
type RescanReport struct {
	RunID    string        `json:"run_id"`
	DryRun   bool          `json:"dry_run"`
	Duration time.Duration `json:"duration"`

	Total   int `json:"total"`
	Updated int `json:"updated"`
	Missing int `json:"missing"`
	Errors  int `json:"errors"`
}

// RefreshMetadata re-derives descriptive fields from each enabled record's
// file name and rewrites records whose derived fields changed. Play
// history, favorites, ratings, and custom launchers are never touched.
func (r *Reconciler) RefreshMetadata(ctx context.Context, dryRun bool) (*RescanReport, error) {
	release, err := r.acquire("rescan")
	if err != nil {
		return nil, err
	}
	defer release()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))

	start := time.Now()
	report := &RescanReport{RunID: runID, DryRun: dryRun}

	records, err := r.store.ListEnabled(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "reconcile", "rescan", "load catalog records", err)
	}
	report.Total = len(records)

	extractor := metadata.NewFilenameExtractor()
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		if _, err := os.Stat(record.FilePath); err != nil {
			report.Missing++
			logger.Warn("table file missing",
				logging.String(logging.FieldTable, record.Name),
				logging.String(logging.FieldPath, record.FilePath),
			)
			continue
		}

		info, err := extractor.Extract(ctx, record.FilePath)
		if err != nil {
			report.Errors++
			logger.Warn("metadata extraction failed",
				logging.String(logging.FieldPath, record.FilePath),
				logging.Error(err),
			)
			continue
		}

		merged := mergeInfo(record, info)
		if merged == currentInfo(record) {
			continue
		}
		report.Updated++
		if dryRun {
			continue
		}

		batch := catalog.NewBatch(record.Name).UpdateInfo(record.ID, merged)
		if err := r.store.Apply(ctx, batch); err != nil {
			report.Duration = time.Since(start)
			return report, services.Wrap(services.ErrStorage, "reconcile", "rescan", fmt.Sprintf("update %s", record.Name), err)
		}
	}

	report.Duration = time.Since(start)
	logger.Info("metadata refresh complete",
		logging.Int("total", report.Total),
		logging.Int("updated", report.Updated),
		logging.Int("missing", report.Missing),
		logging.Int("errors", report.Errors),
		logging.Bool("dry_run", dryRun),
	)
	return report, nil
}

// mergeInfo lays freshly derived fields over the record's current ones.
// Derived values win where present; blank derivations keep what the record
// already has.
func mergeInfo(record *catalog.Record, info metadata.Info) catalog.TableInfo {
	merged := currentInfo(record)
	if info.Name != "" {
		merged.Name = info.Name
	}
	if info.Manufacturer != "" {
		merged.Manufacturer = info.Manufacturer
	}
	if info.Year != 0 {
		merged.Year = info.Year
	}
	if info.Author != "" {
		merged.Author = info.Author
	}
	if info.ROMName != "" {
		merged.ROMName = info.ROMName
	}
	if info.TableType != "" {
		merged.TableType = info.TableType
	}
	if info.Players != 0 {
		merged.Players = info.Players
	}
	if info.Description != "" {
		merged.Description = info.Description
	}
	return merged
}

func currentInfo(record *catalog.Record) catalog.TableInfo {
	return catalog.TableInfo{
		Name:         record.Name,
		Manufacturer: record.Manufacturer,
		Year:         record.Year,
		Author:       record.Author,
		ROMName:      record.ROMName,
		TableType:    record.TableType,
		Players:      record.Players,
		Description:  record.Description,
	}
}
