package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keithbphillips/PinballUX/internal/testsupport"
)

type packFile struct {
	name    string
	content string
}

func buildPackZip(t *testing.T, dir string, files []packFile) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, file := range files {
		w, err := zw.Create(file.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", file.name, err)
		}
		if _, err := w.Write([]byte(file.content)); err != nil {
			t.Fatalf("zip write %s: %v", file.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	path := filepath.Join(dir, "pack.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
	return path
}

func TestImportYesConfirmsProposals(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)
	tablePath := filepath.Join(env.cfg.Paths.TablesDir, "Firepower.vpx")
	testsupport.WriteFile(t, tablePath, 4096)
	testsupport.SeedRecord(t, store, "Firepower", tablePath, 4096)
	store.Close()

	zipPath := buildPackZip(t, env.baseDir, []packFile{
		{"Media Pack/Visual Pinball/Backglass Images/firepower.png", "png-bytes"},
	})

	out, _, err := runCLI(t, env.configPath, "import", "--yes", zipPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Import: 1 proposed, 1 imported, 0 skipped, 0 not examined")

	finalPath := filepath.Join(env.cfg.Paths.MediaDir, "images", "backglass", "Firepower.png")
	if _, err := os.Stat(finalPath); err != nil {
		t.Fatalf("expected imported media at %s: %v", finalPath, err)
	}
}

func TestImportPromptDrivesDecisions(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)
	for _, name := range []string{"Attack From Mars", "Banzai Run"} {
		tablePath := filepath.Join(env.cfg.Paths.TablesDir, name+".vpx")
		testsupport.WriteFile(t, tablePath, 2048)
		testsupport.SeedRecord(t, store, name, tablePath, 2048)
	}
	store.Close()

	zipPath := buildPackZip(t, env.baseDir, []packFile{
		{"Media Pack/Visual Pinball/Wheel Images/Attack From Mars.png", "a"},
		{"Media Pack/Visual Pinball/Wheel Images/Banzai Run.png", "b"},
	})

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader("n\ny\n"))
	cmd.SetArgs([]string{"--config", env.configPath, "import", zipPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, stdout.String(), "Import: 2 proposed, 1 imported, 1 skipped, 0 not examined")

	if _, err := os.Stat(filepath.Join(env.cfg.Paths.MediaDir, "images", "wheel", "Banzai Run.png")); err != nil {
		t.Fatalf("confirmed file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.MediaDir, "images", "wheel", "Attack From Mars.png")); !os.IsNotExist(err) {
		t.Fatalf("skipped file should not exist, stat err: %v", err)
	}
}

func TestImportDryRunWritesNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)
	tablePath := filepath.Join(env.cfg.Paths.TablesDir, "Firepower.vpx")
	testsupport.WriteFile(t, tablePath, 4096)
	testsupport.SeedRecord(t, store, "Firepower", tablePath, 4096)
	store.Close()

	zipPath := buildPackZip(t, env.baseDir, []packFile{
		{"Media Pack/Visual Pinball/Backglass Images/firepower.png", "png-bytes"},
	})

	out, _, err := runCLI(t, env.configPath, "import", "--dry-run", zipPath)
	if err != nil {
		t.Fatalf("import --dry-run: %v", err)
	}
	requireContains(t, out, "[dry-run]")
	requireContains(t, out, "Import: 1 proposed, 0 imported, 1 skipped, 0 not examined")

	if _, err := os.Stat(filepath.Join(env.cfg.Paths.MediaDir, "images", "backglass", "Firepower.png")); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote media, stat err: %v", err)
	}
}
