package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keithbphillips/PinballUX/internal/cleanup"
	"github.com/keithbphillips/PinballUX/internal/logging"
	"github.com/keithbphillips/PinballUX/internal/services"
)

// PruneOptions controls a standalone cleanup pass.
type PruneOptions struct {
	DryRun bool
	// HardRemove deletes records whose files are gone instead of
	// soft-disabling them.
	HardRemove bool
}

// PruneReport summarizes a standalone cleanup pass.
type PruneReport struct {
	RunID    string        `json:"run_id"`
	DryRun   bool          `json:"dry_run"`
	Duration time.Duration `json:"duration"`

	Checked      int `json:"checked"`
	Missing      int `json:"missing"`
	Inaccessible int `json:"inaccessible"`
	Disabled     int `json:"disabled"`
	Removed      int `json:"removed"`

	BatchesApplied int `json:"batches_applied"`
}

// Prune validates every enabled record's file and applies orphan handling
// to those whose files are gone. Inaccessible files are reported but left
// alone; a permission problem is not proof the table vanished.
func (r *Reconciler) Prune(ctx context.Context, opts PruneOptions) (*PruneReport, error) {
	release, err := r.acquire("prune")
	if err != nil {
		return nil, err
	}
	defer release()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))

	start := time.Now()
	report := &PruneReport{RunID: runID, DryRun: opts.DryRun}

	records, err := r.store.ListEnabled(ctx)
	if err != nil {
		return report, services.Wrap(services.ErrStorage, "reconcile", "prune", "load enabled records", err)
	}
	report.Checked = len(records)

	validation, err := cleanup.Validate(ctx, records)
	if err != nil {
		report.Duration = time.Since(start)
		return report, err
	}
	report.Missing = len(validation.Missing)
	report.Inaccessible = len(validation.Inaccessible)
	for _, record := range validation.Inaccessible {
		logger.Warn("table file inaccessible",
			logging.String(logging.FieldTable, record.Name),
			logging.String(logging.FieldPath, record.FilePath),
		)
	}

	batches := cleanup.Resolve(validation.Missing, opts.HardRemove)
	if opts.HardRemove {
		report.Removed = len(batches)
	} else {
		report.Disabled = len(batches)
	}

	if opts.DryRun {
		report.Duration = time.Since(start)
		logger.Info("dry run complete",
			logging.Int("checked", report.Checked),
			logging.Int("missing", report.Missing),
			logging.Int("inaccessible", report.Inaccessible),
		)
		return report, nil
	}

	for _, batch := range batches {
		if err := r.store.Apply(ctx, batch); err != nil {
			report.Duration = time.Since(start)
			return report, services.Wrap(services.ErrStorage, "reconcile", "prune", fmt.Sprintf("apply changes for %s", batch.Label), err)
		}
		report.BatchesApplied++
	}

	report.Duration = time.Since(start)
	logger.Info("cleanup complete",
		logging.Int("checked", report.Checked),
		logging.Int("missing", report.Missing),
		logging.Int("inaccessible", report.Inaccessible),
		logging.Int("disabled", report.Disabled),
		logging.Int("removed", report.Removed),
		logging.Duration(logging.FieldDuration, report.Duration),
	)
	return report, nil
}
