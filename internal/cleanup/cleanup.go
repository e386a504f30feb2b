// Package cleanup decides what happens to catalog records whose files are
// gone: soft-disable by default, hard-remove on request. It also classifies
// every record's file for validation reports.
package cleanup

import (
	"context"
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/keithbphillips/PinballUX/internal/catalog"
)

// Resolve turns unassigned records into per-record mutation batches. Soft
// cleanup skips records that are already disabled, so a pass over an
// unchanged tree emits nothing.
func Resolve(orphans []*catalog.Record, hardRemove bool) []*catalog.Batch {
	var batches []*catalog.Batch
	for _, record := range orphans {
		if hardRemove {
			batch := catalog.NewBatch(record.Name)
			batch.Remove(record.ID)
			batches = append(batches, batch)
			continue
		}
		if !record.Enabled {
			continue
		}
		batch := catalog.NewBatch(record.Name)
		batch.Disable(record.ID)
		batches = append(batches, batch)
	}
	return batches
}

// Validation classifies every record's file.
type Validation struct {
	Valid        []*catalog.Record
	Missing      []*catalog.Record
	Inaccessible []*catalog.Record
}

// Validate stats each record's file path. A plain not-found is missing;
// any other failure, including a denied read probe, is inaccessible.
func Validate(ctx context.Context, records []*catalog.Record) (Validation, error) {
	var report Validation
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return Validation{}, err
		}

		info, err := os.Stat(record.FilePath)
		switch {
		case err == nil:
			if !info.Mode().IsRegular() || unix.Access(record.FilePath, unix.R_OK) != nil {
				report.Inaccessible = append(report.Inaccessible, record)
				continue
			}
			report.Valid = append(report.Valid, record)
		case errors.Is(err, syscall.ENOENT):
			report.Missing = append(report.Missing, record)
		default:
			report.Inaccessible = append(report.Inaccessible, record)
		}
	}
	return report, nil
}
