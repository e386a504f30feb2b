package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/keithbphillips/PinballUX/internal/testsupport"
)

func TestStatusRendersSections(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Catalog ==")
	requireContains(t, out, "== Media ==")
	requireContains(t, out, "== Checks ==")
	requireContains(t, out, "Reconciliation")
}

func TestStatusJSONCountsRecords(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)
	tablePath := filepath.Join(env.cfg.Paths.TablesDir, "Xenon.vpx")
	testsupport.WriteFile(t, tablePath, 1024)
	testsupport.SeedRecord(t, store, "Xenon", tablePath, 1024)
	store.Close()

	out, _, err := runCLI(t, env.configPath, "status", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Stats.Total != 1 || report.Stats.Enabled != 1 {
		t.Fatalf("unexpected stats: %+v", report.Stats)
	}
	if len(report.Preflight) != 4 {
		t.Fatalf("expected 4 preflight rows, got %d", len(report.Preflight))
	}
	if report.Lock.Held {
		t.Fatal("no pass should be running")
	}
	if !report.Health.IntegrityCheck {
		t.Fatalf("integrity check failed: %+v", report.Health)
	}
}
