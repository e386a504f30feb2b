package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/reconcile"
	"github.com/keithbphillips/PinballUX/internal/services"
)

func newRescanCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rescan",
		Short: "Refresh descriptive metadata from each table file",
		Long: `Re-derive name, manufacturer, year, and the other descriptive fields from
every enabled table file and rewrite records whose fields changed. Play
history, favorites, ratings, and custom launchers are never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}

				report, err := reconcile.New(cfg, store, logger).RefreshMetadata(cmd.Context(), dryRun)
				if err != nil {
					if errors.Is(err, services.ErrBusy) {
						return errors.New("a catalog pass is already running; try again once it finishes")
					}
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				out := cmd.OutOrStdout()
				mode := "complete"
				if report.DryRun {
					mode = "dry-run"
				}
				fmt.Fprintf(out, "Rescan %s in %s: %d tables, %d updated, %d missing, %d errors\n",
					mode, report.Duration.Round(time.Millisecond),
					report.Total, report.Updated, report.Missing, report.Errors)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changed fields without writing them")
	return cmd
}
