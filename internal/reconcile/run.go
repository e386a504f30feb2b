// Package reconcile drives the scan-match-mutate cycle that keeps the
// catalog aligned with the tables directory.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/cleanup"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/logging"
	"github.com/keithbphillips/PinballUX/internal/match"
	"github.com/keithbphillips/PinballUX/internal/metadata"
	"github.com/keithbphillips/PinballUX/internal/scanner"
	"github.com/keithbphillips/PinballUX/internal/services"
)

// Options controls one reconciliation run.
type Options struct {
	// DryRun computes and reports the full plan without writing anything.
	DryRun bool
	// HardRemove deletes orphaned records and their media references
	// instead of soft-disabling them.
	HardRemove bool
}

// Report summarizes one reconciliation run. The counters describe the
// computed plan; BatchesApplied says how much of it was committed when a
// run ends early.
type Report struct {
	RunID    string        `json:"run_id"`
	DryRun   bool          `json:"dry_run"`
	Duration time.Duration `json:"duration"`

	Scanned     int `json:"scanned"`
	Unreadable  int `json:"unreadable"`
	SkippedDirs int `json:"skipped_dirs"`

	Matched     int `json:"matched"`
	PathUpdates int `json:"path_updates"`
	Resurrected int `json:"resurrected"`
	Created     int `json:"created"`
	Orphaned    int `json:"orphaned"`
	Disabled    int `json:"disabled"`
	Removed     int `json:"removed"`

	BatchesApplied int `json:"batches_applied"`
}

// Reconciler runs scans and applies the resulting catalog changes. A
// reconciler is safe for concurrent use; overlapping runs are rejected, not
// queued.
type Reconciler struct {
	cfg    *config.Config
	store  *catalog.Store
	scan   *scanner.Scanner
	logger *slog.Logger
	lock   *flock.Flock
	busy   atomic.Bool
}

// New wires a reconciler over the shared store. A nil logger disables
// logging.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{
		cfg:    cfg,
		store:  store,
		scan:   scanner.New(cfg, metadata.NewFilenameExtractor(), logger),
		logger: logging.NewComponentLogger(logger, "reconcile"),
		lock:   flock.New(cfg.LockPath()),
	}
}

// acquire takes the in-process and cross-process run guards. The returned
// release must be called once the run is over.
func (r *Reconciler) acquire(op string) (func(), error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, services.Wrap(services.ErrBusy, "reconcile", op, "another run is in progress", nil)
	}
	ok, err := r.lock.TryLock()
	if err != nil {
		r.busy.Store(false)
		return nil, services.Wrap(services.ErrStorage, "reconcile", op, "acquire catalog lock", err)
	}
	if !ok {
		r.busy.Store(false)
		return nil, services.Wrap(services.ErrBusy, "reconcile", op, "catalog is locked by another process", nil)
	}
	return func() {
		if err := r.lock.Unlock(); err != nil {
			r.logger.Warn("failed to release catalog lock", logging.Error(err))
		}
		r.busy.Store(false)
	}, nil
}

// Run executes one full reconciliation pass: scan the tables directory,
// match candidates against the catalog, then apply path updates, creations,
// and orphan handling one batch per record.
func (r *Reconciler) Run(ctx context.Context, opts Options) (*Report, error) {
	release, err := r.acquire("run")
	if err != nil {
		return nil, err
	}
	defer release()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))

	start := time.Now()
	report := &Report{RunID: runID, DryRun: opts.DryRun}

	logger.Info("reconciliation started",
		logging.String(logging.FieldPath, r.cfg.Paths.TablesDir),
		logging.Bool("dry_run", opts.DryRun),
	)

	scanResult, err := r.scan.Scan(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "reconcile", "scan", "scan tables directory", err)
	}
	report.Scanned = len(scanResult.Candidates)
	report.Unreadable = len(scanResult.Unreadable)
	report.SkippedDirs = len(scanResult.SkippedDirs)

	records, err := r.store.List(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "reconcile", "load", "load catalog records", err)
	}

	plan := BuildPlan(scanResult.Candidates, records, r.matchParams())

	report.Matched = len(plan.Assignments)
	for _, a := range plan.Assignments {
		if a.PathChanged {
			report.PathUpdates++
		}
		if a.Resurrected {
			report.Resurrected++
		}
	}
	report.Created = len(plan.Creations)
	report.Orphaned = len(plan.Orphans)

	orphanBatches := cleanup.Resolve(plan.Orphans, opts.HardRemove)
	if opts.HardRemove {
		report.Removed = len(orphanBatches)
	} else {
		report.Disabled = len(orphanBatches)
	}

	// Path rebinds go first so a creation can never trip over a path a
	// moved record is about to vacate.
	var batches []*catalog.Batch
	for _, a := range plan.Assignments {
		if batch := a.Batch(); !batch.Empty() {
			batches = append(batches, batch)
		}
	}
	for _, c := range plan.Creations {
		batches = append(batches, c.Batch())
	}
	batches = append(batches, orphanBatches...)

	if opts.DryRun {
		report.Duration = time.Since(start)
		logger.Info("dry run complete",
			logging.Int("scanned", report.Scanned),
			logging.Int("matched", report.Matched),
			logging.Int("created", report.Created),
			logging.Int("orphaned", report.Orphaned),
			logging.Int("batches", len(batches)),
		)
		return report, nil
	}

	for _, batch := range batches {
		if err := r.store.Apply(ctx, batch); err != nil {
			report.Duration = time.Since(start)
			return report, services.Wrap(services.ErrStorage, "reconcile", "apply", fmt.Sprintf("apply changes for %s", batch.Label), err)
		}
		report.BatchesApplied++
		logger.Debug("batch applied",
			logging.String(logging.FieldTable, batch.Label),
			logging.Int(logging.FieldCount, len(batch.Mutations)),
		)
	}

	report.Duration = time.Since(start)
	logger.Info("reconciliation complete",
		logging.Int("scanned", report.Scanned),
		logging.Int("matched", report.Matched),
		logging.Int("path_updates", report.PathUpdates),
		logging.Int("resurrected", report.Resurrected),
		logging.Int("created", report.Created),
		logging.Int("orphaned", report.Orphaned),
		logging.Duration(logging.FieldDuration, report.Duration),
	)
	return report, nil
}

func (r *Reconciler) matchParams() match.Params {
	return match.Params{
		AcceptThreshold: r.cfg.Matching.AcceptThreshold,
		PartialFloor:    r.cfg.Matching.PartialFloor,
		SizeTolerance:   r.cfg.Matching.SizeToleranceBytes,
	}
}
