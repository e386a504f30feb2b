package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/keithbphillips/PinballUX/internal/reconcile"
	"github.com/keithbphillips/PinballUX/internal/testsupport"
)

func TestUpdateCreatesThenMatches(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.TablesDir, "Firepower (Williams 1980).vpx"), 4096)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.TablesDir, "Banzai Run.vpx"), 2048)

	out, _, err := runCLI(t, env.configPath, "update", "--json")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	var first reconcile.Report
	if err := json.Unmarshal([]byte(out), &first); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if first.Scanned != 2 || first.Created != 2 {
		t.Fatalf("unexpected first report: %+v", first)
	}

	out, _, err = runCLI(t, env.configPath, "update", "--json")
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	var second reconcile.Report
	if err := json.Unmarshal([]byte(out), &second); err != nil {
		t.Fatalf("decode second report: %v\n%s", err, out)
	}
	if second.Created != 0 || second.Matched != 2 || second.BatchesApplied != 0 {
		t.Fatalf("second run should be a no-op: %+v", second)
	}
}

func TestUpdateRendersSummaryTable(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.TablesDir, "Xenon.vpx"), 1024)

	out, _, err := runCLI(t, env.configPath, "update")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	requireContains(t, out, "Reconciliation complete")
	requireContains(t, out, "Files scanned")
	requireContains(t, out, "Created")
}

func TestRescanReportsTotals(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)
	tablePath := filepath.Join(env.cfg.Paths.TablesDir, "Xenon.vpx")
	testsupport.WriteFile(t, tablePath, 1024)
	testsupport.SeedRecord(t, store, "Xenon", tablePath, 1024)
	store.Close()

	out, _, err := runCLI(t, env.configPath, "rescan", "--json")
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	var report reconcile.RescanReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Total != 1 || report.Errors != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
