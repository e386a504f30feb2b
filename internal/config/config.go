package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database location configuration.
type Paths struct {
	TablesDir    string `toml:"tables_dir"`
	MediaDir     string `toml:"media_dir"`
	DatabasePath string `toml:"database_path"`
	LogDir       string `toml:"log_dir"`
}

// Matching contains the scoring thresholds used by reconciliation and the
// remote matcher. These are explicit configuration, never ambient state, so
// tests can vary them per call.
type Matching struct {
	// AcceptThreshold is the minimum record score at which a scanned file is
	// treated as an existing record rather than a new one.
	AcceptThreshold int `toml:"accept_threshold"`
	// PartialFloor is the name similarity at which a non-substring pair still
	// earns partial name credit.
	PartialFloor float64 `toml:"partial_floor"`
	// RemoteSimilarity is the stem similarity required to accept a remote
	// file as belonging to a record.
	RemoteSimilarity float64 `toml:"remote_similarity"`
	// SizeToleranceBytes is the window inside which differing file sizes
	// still earn partial size credit.
	SizeToleranceBytes int64 `toml:"size_tolerance_bytes"`
}

// Scanner contains filesystem scan configuration.
type Scanner struct {
	Extensions     []string `toml:"extensions"`
	ExtractWorkers int      `toml:"extract_workers"`
	MaxDepth       int      `toml:"max_depth"`
}

// Remote contains the archive connection settings and the category alias
// tables. Passwords are plain configuration values; keep the file private or
// use the PINBALLUX_FTP_PASSWORD environment variable.
type Remote struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	BasePath       string `toml:"base_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CacheTTLHours  int    `toml:"cache_ttl_hours"`
	// Categories maps a media category to the remote directory names that
	// hold its files. New directory variants are configuration, not code.
	Categories map[string][]string `toml:"categories"`
	// DMDAliases is the ordered list of categories probed when DMD media is
	// requested; different packagers use different conventions.
	DMDAliases []string `toml:"dmd_aliases"`
}

// Importer contains media-pack import configuration.
type Importer struct {
	// ArchiveRoot is the directory name searched for (case-insensitively, at
	// any depth) inside a media pack.
	ArchiveRoot string `toml:"archive_root"`
	// Aliases maps a media category to the subdirectory name patterns that
	// identify it inside the archive.
	Aliases map[string][]string `toml:"aliases"`
}

// Cleanup contains orphan handling configuration.
type Cleanup struct {
	// HardRemove deletes orphaned records and their media references instead
	// of soft-disabling them.
	HardRemove bool `toml:"hard_remove"`
}

// Watch contains auto-rescan configuration.
type Watch struct {
	DebounceSeconds int `toml:"debounce_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the catalog engine.
//
// Configuration sections by subsystem:
//   - Paths: table tree, media tree, catalog database, logs
//   - Matching: scoring thresholds shared by reconciliation and remote match
//   - Scanner: extensions, extraction workers, walk depth cap
//   - Remote: archive connection plus category alias tables
//   - Importer: media-pack root name and subdirectory aliases
//   - Cleanup: soft-disable vs hard-remove of orphans
//   - Watch: auto-rescan debounce
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Matching Matching `toml:"matching"`
	Scanner  Scanner  `toml:"scanner"`
	Remote   Remote   `toml:"remote"`
	Importer Importer `toml:"importer"`
	Cleanup  Cleanup  `toml:"cleanup"`
	Watch    Watch    `toml:"watch"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pinballux/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pinballux.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the engine writes to. The tables
// directory is created on a best-effort basis so commands can run while
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	dbDir := filepath.Dir(c.Paths.DatabasePath)
	for _, dir := range []string{c.Paths.MediaDir, c.Paths.LogDir, dbDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.TablesDir) != "" {
		_ = os.MkdirAll(c.Paths.TablesDir, 0o755)
	}
	return nil
}

// LockPath returns the file lock guarding reconciliation passes across
// processes.
func (c *Config) LockPath() string {
	return c.Paths.DatabasePath + ".lock"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
