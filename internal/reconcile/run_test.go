package reconcile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/reconcile"
	"github.com/keithbphillips/PinballUX/internal/services"
	"github.com/keithbphillips/PinballUX/internal/testsupport"
)

func newReconciler(t *testing.T) (*config.Config, *catalog.Store, *reconcile.Reconciler) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return cfg, store, reconcile.New(cfg, store, nil)
}

func TestRunCreatesThenSettles(t *testing.T) {
	cfg, store, rec := newReconciler(t)
	ctx := context.Background()

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.TablesDir, "Medieval Madness (Williams 1997).vpx"), 2048)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.TablesDir, "Firepower.vpx"), 1024)

	report, err := rec.Run(ctx, reconcile.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Scanned != 2 || report.Created != 2 || report.Matched != 0 {
		t.Fatalf("first run: %+v", report)
	}
	if report.BatchesApplied != 2 {
		t.Fatalf("expected two committed batches, got %d", report.BatchesApplied)
	}
	if report.RunID == "" {
		t.Fatal("report missing run ID")
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected two records, got %d", len(records))
	}
	if records[0].Name != "Firepower" || records[1].Name != "Medieval Madness" {
		t.Fatalf("unexpected records: %q, %q", records[0].Name, records[1].Name)
	}
	if records[1].Manufacturer != "Williams" || records[1].Year != 1997 {
		t.Fatalf("creation dropped derived metadata: %+v", records[1])
	}

	second, err := rec.Run(ctx, reconcile.Options{})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Matched != 2 || second.Created != 0 || second.Orphaned != 0 {
		t.Fatalf("second run should settle cleanly: %+v", second)
	}
	if second.BatchesApplied != 0 {
		t.Fatalf("settled catalog still produced %d batches", second.BatchesApplied)
	}
	if second.RunID == report.RunID {
		t.Fatal("runs should carry distinct IDs")
	}
}

func TestRunRenameKeepsUserState(t *testing.T) {
	cfg, store, rec := newReconciler(t)
	ctx := context.Background()

	oldPath := filepath.Join(cfg.Paths.TablesDir, "Banzai Run.vpx")
	testsupport.WriteFile(t, oldPath, 4096)
	if _, err := rec.Run(ctx, reconcile.Options{}); err != nil {
		t.Fatalf("seed Run: %v", err)
	}

	record, err := store.GetByPath(ctx, oldPath)
	if err != nil || record == nil {
		t.Fatalf("GetByPath: %v, %v", record, err)
	}
	if err := store.SetFavorite(ctx, record.ID, true); err != nil {
		t.Fatalf("SetFavorite: %v", err)
	}
	if err := store.RecordPlay(ctx, record.ID, time.Now(), 90*time.Second); err != nil {
		t.Fatalf("RecordPlay: %v", err)
	}

	newPath := filepath.Join(cfg.Paths.TablesDir, "BanzaiRun.vpx")
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatalf("rename: %v", err)
	}

	report, err := rec.Run(ctx, reconcile.Options{})
	if err != nil {
		t.Fatalf("Run after rename: %v", err)
	}
	if report.Matched != 1 || report.PathUpdates != 1 || report.Created != 0 || report.Orphaned != 0 {
		t.Fatalf("rename misclassified: %+v", report)
	}

	moved, err := store.GetByID(ctx, record.ID)
	if err != nil || moved == nil {
		t.Fatalf("GetByID: %v, %v", moved, err)
	}
	if moved.FilePath != newPath {
		t.Fatalf("file path = %q, want %q", moved.FilePath, newPath)
	}
	if moved.Name != "Banzai Run" {
		t.Fatalf("rename must not rewrite the name, got %q", moved.Name)
	}
	if !moved.Favorite || moved.PlayCount != 1 {
		t.Fatalf("user state lost across rename: %+v", moved)
	}
}

func TestRunOrphanLifecycle(t *testing.T) {
	cfg, store, rec := newReconciler(t)
	ctx := context.Background()

	path := filepath.Join(cfg.Paths.TablesDir, "Firepower.vpx")
	testsupport.WriteFile(t, path, 1024)
	if _, err := rec.Run(ctx, reconcile.Options{}); err != nil {
		t.Fatalf("seed Run: %v", err)
	}
	record, err := store.GetByPath(ctx, path)
	if err != nil || record == nil {
		t.Fatalf("GetByPath: %v, %v", record, err)
	}
	if _, err := store.AddMediaReference(ctx, &catalog.MediaReference{
		TableID:  record.ID,
		Category: catalog.CategoryBackglass,
		Kind:     catalog.KindImage,
		Path:     filepath.Join(cfg.Paths.MediaDir, "images", "backglass", "Firepower.png"),
		Origin:   catalog.OriginFTP,
	}); err != nil {
		t.Fatalf("AddMediaReference: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	first, err := rec.Run(ctx, reconcile.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if first.Orphaned != 1 || first.Disabled != 1 || first.Removed != 0 {
		t.Fatalf("orphan pass: %+v", first)
	}
	got, err := store.GetByID(ctx, record.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v, %v", got, err)
	}
	if got.Enabled {
		t.Fatal("orphan should be soft-disabled")
	}

	second, err := rec.Run(ctx, reconcile.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if second.Orphaned != 1 || second.Disabled != 0 || second.BatchesApplied != 0 {
		t.Fatalf("already-disabled orphan should be left alone: %+v", second)
	}

	testsupport.WriteFile(t, path, 1024)
	third, err := rec.Run(ctx, reconcile.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if third.Matched != 1 || third.Resurrected != 1 || third.Created != 0 {
		t.Fatalf("returning file should resurrect its record: %+v", third)
	}
	got, err = store.GetByID(ctx, record.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v, %v", got, err)
	}
	if !got.Enabled {
		t.Fatal("record should be enabled again")
	}
	media, err := store.MediaForTable(ctx, record.ID)
	if err != nil {
		t.Fatalf("MediaForTable: %v", err)
	}
	if len(media) != 1 {
		t.Fatalf("media lost across disable/resurrect cycle: %+v", media)
	}
}

func TestRunHardRemove(t *testing.T) {
	cfg, store, rec := newReconciler(t)
	ctx := context.Background()

	path := filepath.Join(cfg.Paths.TablesDir, "Firepower.vpx")
	testsupport.WriteFile(t, path, 1024)
	if _, err := rec.Run(ctx, reconcile.Options{}); err != nil {
		t.Fatalf("seed Run: %v", err)
	}
	record, err := store.GetByPath(ctx, path)
	if err != nil || record == nil {
		t.Fatalf("GetByPath: %v, %v", record, err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	report, err := rec.Run(ctx, reconcile.Options{HardRemove: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Removed != 1 || report.Disabled != 0 {
		t.Fatalf("hard remove pass: %+v", report)
	}
	got, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("record should be gone, got %+v", got)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	cfg, store, rec := newReconciler(t)
	ctx := context.Background()

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.TablesDir, "Firepower.vpx"), 1024)

	report, err := rec.Run(ctx, reconcile.Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.DryRun || report.Created != 1 || report.BatchesApplied != 0 {
		t.Fatalf("dry run report: %+v", report)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("dry run wrote %d records", len(records))
	}
}

func TestRunRejectsConcurrentRuns(t *testing.T) {
	cfg, _, rec := newReconciler(t)
	ctx := context.Background()

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: %v, %v", locked, err)
	}

	if _, err := rec.Run(ctx, reconcile.Options{}); !errors.Is(err, services.ErrBusy) {
		t.Fatalf("expected busy rejection, got %v", err)
	}

	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, err := rec.Run(ctx, reconcile.Options{}); err != nil {
		t.Fatalf("run after release: %v", err)
	}
}

func TestRefreshMetadataDerivesFields(t *testing.T) {
	cfg, store, rec := newReconciler(t)
	ctx := context.Background()

	path := filepath.Join(cfg.Paths.TablesDir, "Medieval Madness (Williams 1997).vpx")
	testsupport.WriteFile(t, path, 2048)
	seed, err := store.Create(ctx, &catalog.Record{Name: "medieval madness", FilePath: path, FileSize: 2048, Enabled: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.SetFavorite(ctx, seed.ID, true); err != nil {
		t.Fatalf("SetFavorite: %v", err)
	}

	report, err := rec.RefreshMetadata(ctx, false)
	if err != nil {
		t.Fatalf("RefreshMetadata: %v", err)
	}
	if report.Total != 1 || report.Updated != 1 || report.Missing != 0 || report.Errors != 0 {
		t.Fatalf("refresh report: %+v", report)
	}

	got, err := store.GetByID(ctx, seed.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v, %v", got, err)
	}
	if got.Name != "Medieval Madness" || got.Manufacturer != "Williams" || got.Year != 1997 || got.TableType != "SS" {
		t.Fatalf("derived fields not applied: %+v", got)
	}
	if got.Description != "Pinball table by Williams 1997 SS" {
		t.Fatalf("description = %q", got.Description)
	}
	if !got.Favorite {
		t.Fatal("refresh must not touch user state")
	}

	second, err := rec.RefreshMetadata(ctx, false)
	if err != nil {
		t.Fatalf("second RefreshMetadata: %v", err)
	}
	if second.Updated != 0 {
		t.Fatalf("settled refresh still updated %d records", second.Updated)
	}
}

func TestRefreshMetadataCountsMissingFiles(t *testing.T) {
	cfg, store, rec := newReconciler(t)
	ctx := context.Background()

	gone := filepath.Join(cfg.Paths.TablesDir, "Gone.vpx")
	if _, err := store.Create(ctx, &catalog.Record{Name: "Gone", FilePath: gone, FileSize: 10, Enabled: true}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	report, err := rec.RefreshMetadata(ctx, true)
	if err != nil {
		t.Fatalf("RefreshMetadata: %v", err)
	}
	if report.Missing != 1 || report.Updated != 0 {
		t.Fatalf("missing-file report: %+v", report)
	}
}
