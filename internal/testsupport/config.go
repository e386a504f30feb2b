package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/keithbphillips/PinballUX/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.TablesDir = filepath.Join(base, "tables")
	cfgVal.Paths.MediaDir = filepath.Join(base, "media")
	cfgVal.Paths.DatabasePath = filepath.Join(base, "catalog.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAcceptThreshold overrides the reconciliation accept threshold.
func WithAcceptThreshold(threshold int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.AcceptThreshold = threshold
	}
}

// WithExtensions overrides the scanned extension set.
func WithExtensions(exts ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scanner.Extensions = exts
	}
}

// WithHardRemove switches cleanup from soft-disable to hard-remove.
func WithHardRemove() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cleanup.HardRemove = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.TablesDir)
}
