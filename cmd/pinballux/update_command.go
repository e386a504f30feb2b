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

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var hardRemove bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Scan the table directory and reconcile the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if err := gatePreflight(cmd, cfg); err != nil {
					return err
				}
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}

				opts := reconcile.Options{DryRun: dryRun, HardRemove: hardRemove}
				if !cmd.Flags().Changed("hard-remove") {
					opts.HardRemove = cfg.Cleanup.HardRemove
				}

				report, err := reconcile.New(cfg, store, logger).Run(cmd.Context(), opts)
				if err != nil {
					if errors.Is(err, services.ErrBusy) {
						return errors.New("a catalog pass is already running; try again once it finishes")
					}
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				printUpdateReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the plan without writing catalog changes")
	cmd.Flags().BoolVar(&hardRemove, "hard-remove", false, "Delete orphaned records instead of disabling them")
	return cmd
}

func printUpdateReport(out io.Writer, report *reconcile.Report) {
	mode := "complete"
	if report.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(out, "Reconciliation %s in %s\n", mode, report.Duration.Round(time.Millisecond))

	rows := [][]string{
		{"Files scanned", strconv.Itoa(report.Scanned)},
		{"Unreadable", strconv.Itoa(report.Unreadable)},
		{"Matched", strconv.Itoa(report.Matched)},
		{"Paths updated", strconv.Itoa(report.PathUpdates)},
		{"Resurrected", strconv.Itoa(report.Resurrected)},
		{"Created", strconv.Itoa(report.Created)},
		{"Orphaned", strconv.Itoa(report.Orphaned)},
		{"Disabled", strconv.Itoa(report.Disabled)},
		{"Removed", strconv.Itoa(report.Removed)},
		{"Batches applied", strconv.Itoa(report.BatchesApplied)},
	}
	fmt.Fprintln(out, renderTable([]string{"Result", "Count"}, rows, 1))
}
