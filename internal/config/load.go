package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/todolist/internal/store"
	"github.com/nibzard/todolist/internal/utils"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.todolist/todolist.toml or OS-specific config dir)
// 3. Project config file (todolist.toml or .todolist.toml in current directory)
// 4. .env file
// 5. Environment variables
// 6. CLI flags
//
// Flags are parsed from args with fs; the remaining arguments are available
// from fs.Args() afterwards.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := load(fs, args, nil)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}
	return load(fs, args, sources)
}

// load is the shared implementation. Source tracking is skipped when
// sources is nil.
func load(fs *flag.FlagSet, args []string, sources map[string]ConfigSource) (*ConfigWithSources, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Pull .env into the process environment
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	// 5. Override from environment
	loadFromEnv(cfg, sources)

	// 6. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 7. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{Config: cfg, Sources: sources}, nil
}

// loadConfigFile decodes a TOML file over cfg. Keys present in the file are
// recorded in sources; keys the config does not know become warnings.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	cfg.Files = append(cfg.Files, path)

	if sources != nil {
		for _, field := range configFields() {
			if md.IsDefined(field) {
				sources[field] = source
			}
		}
	}

	undecoded := md.Undecoded()
	keys := make([]string, 0, len(undecoded))
	for _, key := range undecoded {
		keys = append(keys, key.String())
	}
	sort.Strings(keys)
	for _, key := range keys {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: unknown key %q", path, key))
	}
	return nil
}

// finalizeConfig computes derived values and normalizes paths.
func finalizeConfig(cfg *Config) error {
	// Expand ~ and environment variables in paths
	cfg.DataFile = expandPath(cfg.DataFile)
	cfg.SchemaFile = expandPath(cfg.SchemaFile)
	cfg.ExportDir = expandPath(cfg.ExportDir)
	cfg.LogFile = expandPath(cfg.LogFile)

	if cfg.DataFile == "" {
		return fmt.Errorf("data_file must not be empty")
	}
	if !filepath.IsAbs(cfg.DataFile) {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.DataFile = filepath.Join(wd, cfg.DataFile)
	}

	cfg.Categories = utils.UniqueLabels(cfg.Categories)
	if cfg.Categories == nil {
		cfg.Categories = store.DefaultCategories()
	}
	cfg.DefaultCategory = utils.NormalizeLabel(cfg.DefaultCategory)
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = store.DefaultCategory
	}
	return nil
}
