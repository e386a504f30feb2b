package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatching()
	c.normalizeScanner()
	c.normalizeRemote()
	c.normalizeImporter()
	c.normalizeWatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.TablesDir, err = expandPath(c.Paths.TablesDir); err != nil {
		return fmt.Errorf("paths.tables_dir: %w", err)
	}
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatching() {
	if c.Matching.AcceptThreshold == 0 {
		c.Matching.AcceptThreshold = defaultAcceptThreshold
	}
	if c.Matching.PartialFloor == 0 {
		c.Matching.PartialFloor = defaultPartialFloor
	}
	if c.Matching.RemoteSimilarity == 0 {
		c.Matching.RemoteSimilarity = defaultRemoteSimilarity
	}
	if c.Matching.SizeToleranceBytes == 0 {
		c.Matching.SizeToleranceBytes = defaultSizeToleranceBytes
	}
}

func (c *Config) normalizeScanner() {
	if len(c.Scanner.Extensions) == 0 {
		c.Scanner.Extensions = defaultExtensions()
	}
	normalized := make([]string, 0, len(c.Scanner.Extensions))
	for _, ext := range c.Scanner.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	c.Scanner.Extensions = normalized
	if c.Scanner.ExtractWorkers <= 0 {
		c.Scanner.ExtractWorkers = defaultExtractWorkers
	}
	if c.Scanner.MaxDepth <= 0 {
		c.Scanner.MaxDepth = defaultMaxDepth
	}
}

func (c *Config) normalizeRemote() {
	c.Remote.Host = strings.TrimSpace(c.Remote.Host)
	c.Remote.User = strings.TrimSpace(c.Remote.User)
	if c.Remote.User == "" {
		c.Remote.User = defaultRemoteUser
	}
	if c.Remote.Password == "" {
		if value, ok := os.LookupEnv("PINBALLUX_FTP_PASSWORD"); ok {
			c.Remote.Password = value
		}
	}
	if c.Remote.Port == 0 {
		c.Remote.Port = defaultRemotePort
	}
	c.Remote.BasePath = strings.TrimSpace(c.Remote.BasePath)
	if c.Remote.BasePath == "" {
		c.Remote.BasePath = defaultRemoteBasePath
	}
	if c.Remote.TimeoutSeconds <= 0 {
		c.Remote.TimeoutSeconds = defaultRemoteTimeout
	}
	if c.Remote.CacheTTLHours <= 0 {
		c.Remote.CacheTTLHours = defaultCacheTTLHours
	}
	if len(c.Remote.Categories) == 0 {
		c.Remote.Categories = defaultRemoteCategories()
	}
	if len(c.Remote.DMDAliases) == 0 {
		c.Remote.DMDAliases = defaultDMDAliases()
	}
}

func (c *Config) normalizeImporter() {
	c.Importer.ArchiveRoot = strings.TrimSpace(c.Importer.ArchiveRoot)
	if c.Importer.ArchiveRoot == "" {
		c.Importer.ArchiveRoot = defaultArchiveRoot
	}
	if len(c.Importer.Aliases) == 0 {
		c.Importer.Aliases = defaultImporterAliases()
	}
}

func (c *Config) normalizeWatch() {
	if c.Watch.DebounceSeconds <= 0 {
		c.Watch.DebounceSeconds = defaultWatchDebounce
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
