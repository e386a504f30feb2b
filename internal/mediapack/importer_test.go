package mediapack_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/media"
	"github.com/keithbphillips/PinballUX/internal/mediapack"
	"github.com/keithbphillips/PinballUX/internal/services"
	"github.com/keithbphillips/PinballUX/internal/testsupport"
)

func newImporter(t *testing.T) (*config.Config, *catalog.Store, *mediapack.Importer) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	layout := media.NewLayout(cfg.Paths.MediaDir)
	return cfg, store, mediapack.NewImporter(cfg, store, layout, nil)
}

// buildZip assembles an in-memory archive with deterministic entry order.
func buildZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(files[name])); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip open: %v", err)
	}
	return reader
}

type scriptedDecider struct {
	decisions []mediapack.Decision
	proposals []mediapack.Proposal
}

func (s *scriptedDecider) decide(p mediapack.Proposal) (mediapack.Decision, error) {
	s.proposals = append(s.proposals, p)
	if len(s.proposals) > len(s.decisions) {
		return 0, fmt.Errorf("unexpected proposal for %s", p.Entry.RelativePath)
	}
	return s.decisions[len(s.proposals)-1], nil
}

func TestRunImportsConfirmedFile(t *testing.T) {
	cfg, store, importer := newImporter(t)
	ctx := context.Background()
	record := testsupport.SeedRecord(t, store, "Firepower",
		filepath.Join(cfg.Paths.TablesDir, "Firepower.vpx"), 1024)

	archive := buildZip(t, map[string]string{
		"Media Pack/Visual Pinball/Backglass Images/firepower bg.png": "backglass-bytes",
	})
	decider := &scriptedDecider{decisions: []mediapack.Decision{mediapack.DecisionConfirm}}

	report, err := importer.Run(ctx, mediapack.ZipEntries(archive), decider.decide)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Proposed != 1 || report.Confirmed != 1 || report.Skipped != 0 || report.Unscored != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.SessionID == "" {
		t.Fatal("report has no session id")
	}

	wantPath := filepath.Join(cfg.Paths.MediaDir, "images", "backglass", "Firepower.png")
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read imported file: %v", err)
	}
	if string(data) != "backglass-bytes" {
		t.Fatalf("imported content %q", data)
	}

	refs, err := store.MediaForTable(ctx, record.ID)
	if err != nil {
		t.Fatalf("MediaForTable: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("got %d media references, want 1", len(refs))
	}
	ref := refs[0]
	if ref.Category != catalog.CategoryBackglass || ref.Kind != catalog.KindImage ||
		ref.Origin != catalog.OriginPack || ref.Path != wantPath {
		t.Fatalf("unexpected reference: %+v", ref)
	}
}

func TestRunSkipAllLeavesRemainderUnscored(t *testing.T) {
	cfg, store, importer := newImporter(t)
	ctx := context.Background()
	for _, name := range []string{"Attack From Mars", "Banzai Run", "Firepower"} {
		testsupport.SeedRecord(t, store, name,
			filepath.Join(cfg.Paths.TablesDir, name+".vpx"), 1024)
	}

	archive := buildZip(t, map[string]string{
		"Visual Pinball/Backglass Images/Attack From Mars.png": "a",
		"Visual Pinball/Backglass Images/Banzai Run.png":       "b",
		"Visual Pinball/Backglass Images/Firepower.png":        "c",
	})
	decider := &scriptedDecider{decisions: []mediapack.Decision{
		mediapack.DecisionConfirm,
		mediapack.DecisionSkipAll,
	}}

	report, err := importer.Run(ctx, mediapack.ZipEntries(archive), decider.decide)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Proposed != 2 || report.Confirmed != 1 || report.Skipped != 1 || report.Unscored != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(decider.proposals) != 2 {
		t.Fatalf("decision function saw %d proposals, want 2", len(decider.proposals))
	}
	if decider.proposals[0].Record.Name != "Attack From Mars" ||
		decider.proposals[1].Record.Name != "Banzai Run" {
		t.Fatalf("unexpected proposal order: %+v", decider.proposals)
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.MediaDir, "images", "backglass", "Firepower.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unscored entry was written: %v", err)
	}
}

func TestRunFailsWithoutArchiveRoot(t *testing.T) {
	cfg, store, importer := newImporter(t)
	ctx := context.Background()
	record := testsupport.SeedRecord(t, store, "Firepower",
		filepath.Join(cfg.Paths.TablesDir, "Firepower.vpx"), 1024)

	archive := buildZip(t, map[string]string{
		"Random Pack/Backglass Images/Firepower.png": "stray",
	})
	decider := &scriptedDecider{}

	_, err := importer.Run(ctx, mediapack.ZipEntries(archive), decider.decide)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if len(decider.proposals) != 0 {
		t.Fatalf("proposals made without a recognized root: %+v", decider.proposals)
	}
	if refs, _ := store.MediaForTable(ctx, record.ID); len(refs) != 0 {
		t.Fatalf("failed import registered media: %+v", refs)
	}
}

func TestRunScoresCanonicalTitle(t *testing.T) {
	cfg, store, importer := newImporter(t)
	ctx := context.Background()
	if _, err := store.Create(ctx, &catalog.Record{
		Name:         "Firepower",
		Manufacturer: "Williams",
		Year:         1980,
		FilePath:     filepath.Join(cfg.Paths.TablesDir, "Firepower.vpx"),
		FileSize:     1024,
		Enabled:      true,
	}); err != nil {
		t.Fatalf("store.Create: %v", err)
	}

	archive := buildZip(t, map[string]string{
		"Visual Pinball/Wheel Images/Firepower (Williams 1980).png": "wheel",
	})
	decider := &scriptedDecider{decisions: []mediapack.Decision{mediapack.DecisionSkip}}

	report, err := importer.Run(ctx, mediapack.ZipEntries(archive), decider.decide)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Proposed != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(decider.proposals) != 1 || decider.proposals[0].Similarity != 1.0 {
		t.Fatalf("titled stem did not score 1.0: %+v", decider.proposals)
	}
}

func TestRunReportsUnrecognizedDirectories(t *testing.T) {
	cfg, store, importer := newImporter(t)
	ctx := context.Background()
	testsupport.SeedRecord(t, store, "Firepower",
		filepath.Join(cfg.Paths.TablesDir, "Firepower.vpx"), 1024)

	archive := buildZip(t, map[string]string{
		"Visual Pinball/Mystery Images/Firepower.png":   "odd",
		"Visual Pinball/Backglass Images/Firepower.png": "known",
	})
	decider := &scriptedDecider{decisions: []mediapack.Decision{mediapack.DecisionSkip}}

	report, err := importer.Run(ctx, mediapack.ZipEntries(archive), decider.decide)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Proposed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Unrecognized) != 1 || report.Unrecognized[0] != "Mystery Images" {
		t.Fatalf("unexpected unrecognized list: %v", report.Unrecognized)
	}
}

func TestDirEntriesImportsExtractedTree(t *testing.T) {
	cfg, store, importer := newImporter(t)
	ctx := context.Background()
	record := testsupport.SeedRecord(t, store, "Firepower",
		filepath.Join(cfg.Paths.TablesDir, "Firepower.vpx"), 1024)

	root := filepath.Join(t.TempDir(), "Visual Pinball")
	wheelDir := filepath.Join(root, "Wheel Images")
	if err := os.MkdirAll(wheelDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(wheelDir, "Firepower.png"), []byte("wheel"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := mediapack.DirEntries(root)
	if err != nil {
		t.Fatalf("DirEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].RelativePath != "Visual Pinball/Wheel Images/Firepower.png" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	decider := &scriptedDecider{decisions: []mediapack.Decision{mediapack.DecisionConfirm}}
	report, err := importer.Run(ctx, entries, decider.decide)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Confirmed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	wantPath := filepath.Join(cfg.Paths.MediaDir, "images", "wheel", "Firepower.png")
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("imported wheel image missing: %v", err)
	}
	refs, err := store.MediaForTable(ctx, record.ID)
	if err != nil {
		t.Fatalf("MediaForTable: %v", err)
	}
	if len(refs) != 1 || refs[0].Origin != catalog.OriginPack {
		t.Fatalf("unexpected references: %+v", refs)
	}
}
