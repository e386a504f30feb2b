package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.TablesDir) == "" {
		return errors.New("paths.tables_dir must be set")
	}
	if strings.TrimSpace(c.Paths.MediaDir) == "" {
		return errors.New("paths.media_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		return errors.New("paths.database_path must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.AcceptThreshold < 1 {
		return errors.New("matching.accept_threshold must be at least 1")
	}
	if c.Matching.PartialFloor < 0 || c.Matching.PartialFloor > 1 {
		return errors.New("matching.partial_floor must be between 0 and 1")
	}
	if c.Matching.RemoteSimilarity < 0 || c.Matching.RemoteSimilarity > 1 {
		return errors.New("matching.remote_similarity must be between 0 and 1")
	}
	if c.Matching.SizeToleranceBytes < 0 {
		return errors.New("matching.size_tolerance_bytes must not be negative")
	}
	return nil
}

func (c *Config) validateScanner() error {
	if len(c.Scanner.Extensions) == 0 {
		return errors.New("scanner.extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validateRemote() error {
	if c.Remote.Port < 1 || c.Remote.Port > 65535 {
		return fmt.Errorf("remote.port %d out of range", c.Remote.Port)
	}
	if len(c.Remote.DMDAliases) == 0 {
		return errors.New("remote.dmd_aliases must list at least one category")
	}
	for category, dirs := range c.Remote.Categories {
		if strings.TrimSpace(category) == "" {
			return errors.New("remote.categories contains an empty category name")
		}
		if len(dirs) == 0 {
			return fmt.Errorf("remote.categories.%s must list at least one directory", category)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
