package preflight

import (
	"github.com/keithbphillips/PinballUX/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every applicable preflight check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckTablesDir(cfg.Paths.TablesDir),
		CheckMediaDir(cfg.Paths.MediaDir),
		CheckDatabase(cfg.Paths.DatabasePath),
	}

	// Remote is optional; the row is informational when unconfigured.
	results = append(results, CheckRemoteFromConfig(cfg))

	return results
}

// Failed reports whether any check in the set did not pass.
func Failed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return true
		}
	}
	return false
}
