package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/reconcile"
	"github.com/keithbphillips/PinballUX/internal/services"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var remove bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Disable or remove catalog records whose files are gone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}

				opts := reconcile.PruneOptions{DryRun: dryRun, HardRemove: remove}
				if !cmd.Flags().Changed("remove") {
					opts.HardRemove = cfg.Cleanup.HardRemove
				}

				report, err := reconcile.New(cfg, store, logger).Prune(cmd.Context(), opts)
				if err != nil {
					if errors.Is(err, services.ErrBusy) {
						return errors.New("a catalog pass is already running; try again once it finishes")
					}
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				printPruneReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Delete affected records instead of disabling them")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report affected records without writing changes")
	return cmd
}

func printPruneReport(out io.Writer, report *reconcile.PruneReport) {
	mode := "complete"
	if report.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(out, "Cleanup %s in %s\n", mode, report.Duration.Round(time.Millisecond))

	rows := [][]string{
		{"Records checked", strconv.Itoa(report.Checked)},
		{"Files missing", strconv.Itoa(report.Missing)},
		{"Inaccessible", strconv.Itoa(report.Inaccessible)},
		{"Disabled", strconv.Itoa(report.Disabled)},
		{"Removed", strconv.Itoa(report.Removed)},
		{"Batches applied", strconv.Itoa(report.BatchesApplied)},
	}
	fmt.Fprintln(out, renderTable([]string{"Result", "Count"}, rows, 1))
}
