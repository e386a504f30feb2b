package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/reconcile"
	"github.com/keithbphillips/PinballUX/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var debounceSeconds int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the table directory and reconcile on changes",
		Long: `Run until interrupted, reconciling the catalog after each quiet period
that follows a change under the table directory. Orphans are soft-disabled,
never removed, during watch passes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if err := gatePreflight(cmd, cfg); err != nil {
					return err
				}
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}

				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				var debounce time.Duration
				if cmd.Flags().Changed("debounce") {
					debounce = time.Duration(debounceSeconds) * time.Second
				}

				rec := reconcile.New(cfg, store, logger)
				return watcher.New(cfg, rec, debounce, logger).Watch(signalCtx)
			})
		},
	}

	cmd.Flags().IntVar(&debounceSeconds, "debounce", 0, "Seconds of quiet before a change triggers a pass (default from config)")
	return cmd
}
