package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/preflight"
)

// gatePreflight runs the environment checks and refuses to continue when any
// fail, printing the failing rows to stderr.
func gatePreflight(cmd *cobra.Command, cfg *config.Config) error {
	results := preflight.RunAll(cfg)
	if !preflight.Failed(results) {
		return nil
	}
	out := cmd.ErrOrStderr()
	colorize := shouldColorize(out)
	for _, res := range results {
		if res.Passed {
			continue
		}
		fmt.Fprintln(out, renderStatusLine(res.Name, statusError, res.Detail, colorize))
	}
	return errors.New("preflight checks failed; fix the paths above or adjust the configuration")
}
