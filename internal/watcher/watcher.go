// Package watcher turns tables-directory changes into reconciliation passes.
//
// Filesystem events are debounced: each event resets a quiet-period timer,
// and only when the directory has settled does a pass run. A pass that
// collides with one already in flight is logged and dropped; the next
// change will try again.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/logging"
	"github.com/keithbphillips/PinballUX/internal/reconcile"
	"github.com/keithbphillips/PinballUX/internal/services"
)

// Runner executes one reconciliation pass. *reconcile.Reconciler satisfies it.
type Runner interface {
	Run(ctx context.Context, opts reconcile.Options) (*reconcile.Report, error)
}

// Watcher debounces filesystem activity into reconciliation passes.
type Watcher struct {
	cfg      *config.Config
	runner   Runner
	logger   *slog.Logger
	debounce time.Duration
}

// New builds a watcher over the configured tables directory. A positive
// debounce overrides the configured watch.debounce_seconds.
func New(cfg *config.Config, runner Runner, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if debounce <= 0 {
		debounce = time.Duration(cfg.Watch.DebounceSeconds) * time.Second
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Watcher{
		cfg:      cfg,
		runner:   runner,
		logger:   logging.NewComponentLogger(logger, "watcher"),
		debounce: debounce,
	}
}

// Watch blocks until the context ends, running a reconciliation pass after
// each quiet period of activity under the tables directory. Directories
// created while watching join the watch.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "watcher", "watch", "create filesystem watcher", err)
	}
	defer fsw.Close()

	if err := addTree(fsw, w.cfg.Paths.TablesDir); err != nil {
		return services.Wrap(services.ErrValidation, "watcher", "watch",
			"watch tables directory", err)
	}

	w.logger.Info("watching tables directory",
		logging.String(logging.FieldPath, w.cfg.Paths.TablesDir),
		logging.Duration("debounce", w.debounce),
	)

	var timer *time.Timer
	var quiet <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&^fsnotify.Chmod == 0 {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := fsw.Add(event.Name); addErr != nil {
						w.logger.Warn("cannot watch new directory",
							logging.String(logging.FieldPath, event.Name),
							logging.Error(addErr),
						)
					}
				}
			}
			w.logger.Debug("change detected",
				logging.String(logging.FieldPath, event.Name),
				logging.String(logging.FieldOperation, event.Op.String()),
			)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				quiet = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logging.Error(watchErr))
		case <-quiet:
			timer = nil
			quiet = nil
			w.runPass(ctx)
		}
	}
}

func (w *Watcher) runPass(ctx context.Context) {
	report, err := w.runner.Run(ctx, reconcile.Options{})
	switch {
	case errors.Is(err, services.ErrBusy):
		w.logger.Info("reconciliation already running, waiting for next change")
	case errors.Is(err, context.Canceled):
		w.logger.Info("watcher stopping, pass cancelled")
	case err != nil:
		w.logger.Error("reconciliation failed", logging.Error(err))
	default:
		w.logger.Info("reconciliation complete",
			logging.Int("matched", report.Matched),
			logging.Int("created", report.Created),
			logging.Int("orphaned", report.Orphaned),
		)
	}
}

func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(p)
		}
		return nil
	})
}
