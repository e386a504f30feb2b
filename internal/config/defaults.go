package config

const (
	defaultTablesDir          = "~/.local/share/pinballux/tables"
	defaultMediaDir           = "~/.local/share/pinballux/media"
	defaultDatabasePath       = "~/.local/share/pinballux/catalog.db"
	defaultLogDir             = "~/.local/share/pinballux/logs"
	defaultAcceptThreshold    = 5
	defaultPartialFloor       = 0.7
	defaultRemoteSimilarity   = 0.90
	defaultSizeToleranceBytes = 1 << 20
	defaultExtractWorkers     = 4
	defaultMaxDepth           = 16
	defaultRemotePort         = 21
	defaultRemoteUser         = "anonymous"
	defaultRemoteBasePath     = "/-PinballX-/Media/Visual Pinball"
	defaultRemoteTimeout      = 30
	defaultCacheTTLHours      = 24
	defaultArchiveRoot        = "Visual Pinball"
	defaultWatchDebounce      = 2
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

func defaultExtensions() []string {
	return []string{".vpx", ".vpt"}
}

func defaultDMDAliases() []string {
	return []string{"dmd", "fulldmd", "real_dmd", "real_dmd_color"}
}

func defaultRemoteCategories() map[string][]string {
	return map[string][]string{
		"table":          {"Table Videos", "Table Images", "table video"},
		"backglass":      {"Backglass Videos", "Backglass Images"},
		"dmd":            {"DMD Color Videos", "DMD Videos", "DMD Images"},
		"fulldmd":        {"FullDMD Videos"},
		"real_dmd":       {"Real DMD Videos", "Real DMD Images"},
		"real_dmd_color": {"Real DMD Color Videos", "Real DMD Color Images"},
		"topper":         {"Topper Videos", "Topper Images"},
		"wheel":          {"Wheel Images"},
		"launch_audio":   {"Launch Audio"},
		"table_audio":    {"Table Audio"},
	}
}

func defaultImporterAliases() map[string][]string {
	return map[string][]string{
		"backglass": {"backglass", "back glass", "bg"},
		"table":     {"table", "playfield", "pf"},
		"wheel":     {"wheel", "logo"},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TablesDir:    defaultTablesDir,
			MediaDir:     defaultMediaDir,
			DatabasePath: defaultDatabasePath,
			LogDir:       defaultLogDir,
		},
		Matching: Matching{
			AcceptThreshold:    defaultAcceptThreshold,
			PartialFloor:       defaultPartialFloor,
			RemoteSimilarity:   defaultRemoteSimilarity,
			SizeToleranceBytes: defaultSizeToleranceBytes,
		},
		Scanner: Scanner{
			Extensions:     defaultExtensions(),
			ExtractWorkers: defaultExtractWorkers,
			MaxDepth:       defaultMaxDepth,
		},
		Remote: Remote{
			Port:           defaultRemotePort,
			User:           defaultRemoteUser,
			BasePath:       defaultRemoteBasePath,
			TimeoutSeconds: defaultRemoteTimeout,
			CacheTTLHours:  defaultCacheTTLHours,
			Categories:     defaultRemoteCategories(),
			DMDAliases:     defaultDMDAliases(),
		},
		Importer: Importer{
			ArchiveRoot: defaultArchiveRoot,
			Aliases:     defaultImporterAliases(),
		},
		Watch: Watch{
			DebounceSeconds: defaultWatchDebounce,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
