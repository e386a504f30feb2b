package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keithbphillips/PinballUX/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Matching.AcceptThreshold != 5 {
		t.Fatalf("accept_threshold = %d, want 5", cfg.Matching.AcceptThreshold)
	}
	if cfg.Matching.RemoteSimilarity != 0.90 {
		t.Fatalf("remote_similarity = %v, want 0.90", cfg.Matching.RemoteSimilarity)
	}
	if len(cfg.Remote.DMDAliases) == 0 || cfg.Remote.DMDAliases[0] != "dmd" {
		t.Fatalf("dmd_aliases = %v, want to start with dmd", cfg.Remote.DMDAliases)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Scanner.ExtractWorkers != 4 {
		t.Fatalf("extract_workers = %d, want default 4", cfg.Scanner.ExtractWorkers)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`tables_dir = "` + filepath.Join(dir, "tables") + `"`,
		`media_dir = "` + filepath.Join(dir, "media") + `"`,
		`database_path = "` + filepath.Join(dir, "catalog.db") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"",
		"[scanner]",
		`extensions = ["VPX", ".Vpt"]`,
		"",
		"[matching]",
		"accept_threshold = 7",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if got := cfg.Scanner.Extensions; len(got) != 2 || got[0] != ".vpx" || got[1] != ".vpt" {
		t.Fatalf("extensions normalized to %v", got)
	}
	if cfg.Matching.AcceptThreshold != 7 {
		t.Fatalf("accept_threshold = %d, want 7", cfg.Matching.AcceptThreshold)
	}
	if cfg.Matching.PartialFloor != 0.7 {
		t.Fatalf("partial_floor = %v, want default 0.7", cfg.Matching.PartialFloor)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "zero threshold", mutate: func(c *config.Config) { c.Matching.AcceptThreshold = -1 }},
		{name: "floor above one", mutate: func(c *config.Config) { c.Matching.PartialFloor = 1.5 }},
		{name: "bad port", mutate: func(c *config.Config) { c.Remote.Port = 70000 }},
		{name: "no extensions", mutate: func(c *config.Config) { c.Scanner.Extensions = nil }},
		{name: "bad log format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }},
		{name: "empty category dirs", mutate: func(c *config.Config) { c.Remote.Categories = map[string][]string{"dmd": {}} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TablesDir = filepath.Join(dir, "tables")
	cfg.Paths.MediaDir = filepath.Join(dir, "media")
	cfg.Paths.DatabasePath = filepath.Join(dir, "db", "catalog.db")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, p := range []string{cfg.Paths.MediaDir, cfg.Paths.LogDir, filepath.Join(dir, "db"), cfg.Paths.TablesDir} {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", p, err)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Importer.ArchiveRoot != "Visual Pinball" {
		t.Fatalf("archive_root = %q", cfg.Importer.ArchiveRoot)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := config.ExpandPath("~/tables")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "tables") {
		t.Fatalf("ExpandPath = %q", got)
	}
}
