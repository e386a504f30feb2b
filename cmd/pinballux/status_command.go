package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/media"
	"github.com/keithbphillips/PinballUX/internal/preflight"
)

type statusReport struct {
	Stats     catalog.Stats          `json:"stats"`
	Health    catalog.DatabaseHealth `json:"health"`
	Preflight []preflight.Result     `json:"preflight"`
	Lock      preflight.LockProbe    `json:"lock"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog statistics and environment checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				health, err := store.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}

				report := statusReport{
					Stats:     stats,
					Health:    health,
					Preflight: preflight.RunAll(cfg),
					Lock:      preflight.ProbeLock(cfg.LockPath()),
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				printStatus(cmd, report)
				return nil
			})
		},
	}
}

func printStatus(cmd *cobra.Command, report statusReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Catalog", colorize) {
		fmt.Fprintln(out, line)
	}
	playTime := time.Duration(report.Stats.TotalPlaySeconds) * time.Second
	rows := [][]string{
		{"Tables", strconv.Itoa(report.Stats.Total)},
		{"Enabled", strconv.Itoa(report.Stats.Enabled)},
		{"Disabled", strconv.Itoa(report.Stats.Disabled)},
		{"Favorites", strconv.Itoa(report.Stats.Favorites)},
		{"Plays", humanize.Comma(int64(report.Stats.TotalPlays))},
		{"Play time", playTime.String()},
		{"Database", databaseLine(report.Health)},
	}
	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, 1))

	for _, line := range renderSectionHeader("Media", colorize) {
		fmt.Fprintln(out, line)
	}
	mediaRows := make([][]string, 0, 10)
	for _, category := range media.Categories() {
		mediaRows = append(mediaRows, []string{string(category), strconv.Itoa(report.Stats.MediaByCategory[category])})
	}
	fmt.Fprintln(out, renderTable([]string{"Category", "Files"}, mediaRows, 1))
	fmt.Fprintf(out, "From archive: %d, from packs: %d\n\n",
		report.Stats.MediaByOrigin[catalog.OriginFTP],
		report.Stats.MediaByOrigin[catalog.OriginPack])

	for _, line := range renderSectionHeader("Checks", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, res := range report.Preflight {
		kind := statusOK
		if !res.Passed {
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(res.Name, kind, res.Detail, colorize))
	}
	lockKind := statusOK
	if report.Lock.Held {
		lockKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Reconciliation", lockKind, report.Lock.Detail(), colorize))
}

func databaseLine(health catalog.DatabaseHealth) string {
	if !health.DatabaseExists {
		return "not created yet"
	}
	size := "unknown size"
	if info, err := os.Stat(health.DBPath); err == nil {
		size = humanize.IBytes(uint64(info.Size()))
	}
	integrity := "integrity ok"
	if !health.IntegrityCheck {
		integrity = "integrity check failed"
	}
	return fmt.Sprintf("%s, %s", size, integrity)
}
