/*
Package config manages TOML config for wordhist.

A missing config file is created with defaults. A file that does not fit the
schema is recovered section by section; anything unreadable falls back to the
builtin defaults.

	[history]
	case_sensitive = false
	min_word_len = 2
	max_word_len = 64
	seed_files = ["~/.bash_history"]

	[server]
	default_limit = 10
	max_limit = 64
	min_prefix = 1
	max_prefix = 60
	cache_size = 256

	[cli]
	default_limit = 10
	complete_trigger = "?"
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/wordhist/internal/utils"
	"github.com/charmbracelet/log"
)

// FileName is the default config file name inside the config dir.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	History HistoryConfig `toml:"history"`
	Server  ServerConfig  `toml:"server"`
	CLI     CliConfig     `toml:"cli"`
}

// HistoryConfig controls how words are indexed.
type HistoryConfig struct {
	CaseSensitive bool     `toml:"case_sensitive"`
	MinWordLen    int      `toml:"min_word_len"`
	MaxWordLen    int      `toml:"max_word_len"`
	SeedFiles     []string `toml:"seed_files"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
	MinPrefix    int `toml:"min_prefix"`
	MaxPrefix    int `toml:"max_prefix"`
	CacheSize    int `toml:"cache_size"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int    `toml:"default_limit"`
	CompleteTrigger string `toml:"complete_trigger"`
}

// WordFilter builds the word filter described by the history section.
func (h HistoryConfig) WordFilter() utils.WordFilter {
	return utils.WordFilter{MinLen: h.MinWordLen, MaxLen: h.MaxWordLen}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			CaseSensitive: false,
			MinWordLen:    2,
			MaxWordLen:    64,
			SeedFiles:     []string{},
		},
		Server: ServerConfig{
			DefaultLimit: 10,
			MaxLimit:     64,
			MinPrefix:    1,
			MaxPrefix:    60,
			CacheSize:    256,
		},
		CLI: CliConfig{
			DefaultLimit:    10,
			CompleteTrigger: "?",
		},
	}
}

// GetDefaultConfigPath returns the config file path in the platform config
// dir, or a writable fallback location when that dir cannot be used
func GetDefaultConfigPath() (string, error) {
	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Debugf("No path resolver: %v", err)
		configDir, dirErr := os.UserConfigDir()
		if dirErr != nil {
			return "", fmt.Errorf("failed to find a config location: %w", errors.Join(err, dirErr))
		}
		return filepath.Join(configDir, "wordhist", FileName), nil
	}
	return pathResolver.GetConfigPath(FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from the -config flag
// 2. Default path: [config dir]/wordhist/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at %s: %v. Using built-in defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.normalize()
	return config, nil
}

// tryPartialParse keeps whatever sections and keys still have the right type
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "history"); ok {
		extractHistoryConfig(section, &config.History)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.normalize()
	return config, nil
}

func extractHistoryConfig(data map[string]any, history *HistoryConfig) {
	if val, ok := utils.ExtractBool(data, "case_sensitive"); ok {
		history.CaseSensitive = val
	}
	if val, ok := utils.ExtractInt64(data, "min_word_len"); ok {
		history.MinWordLen = val
	}
	if val, ok := utils.ExtractInt64(data, "max_word_len"); ok {
		history.MaxWordLen = val
	}
	if val, ok := utils.ExtractStrings(data, "seed_files"); ok {
		history.SeedFiles = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		server.CacheSize = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractString(data, "complete_trigger"); ok {
		cli.CompleteTrigger = val
	}
}

// normalize replaces values that cannot work with their defaults
func (c *Config) normalize() {
	defaults := DefaultConfig()
	if c.Server.MaxLimit < 1 {
		log.Warnf("Invalid server.max_limit %d, using %d", c.Server.MaxLimit, defaults.Server.MaxLimit)
		c.Server.MaxLimit = defaults.Server.MaxLimit
	}
	if c.Server.DefaultLimit < 1 || c.Server.DefaultLimit > c.Server.MaxLimit {
		c.Server.DefaultLimit = min(defaults.Server.DefaultLimit, c.Server.MaxLimit)
	}
	if c.Server.MinPrefix < 0 {
		c.Server.MinPrefix = 0
	}
	if c.Server.MaxPrefix < c.Server.MinPrefix {
		log.Warnf("server.max_prefix %d below min_prefix %d, using %d", c.Server.MaxPrefix, c.Server.MinPrefix, defaults.Server.MaxPrefix)
		c.Server.MaxPrefix = max(defaults.Server.MaxPrefix, c.Server.MinPrefix)
	}
	if c.CLI.DefaultLimit < 1 {
		c.CLI.DefaultLimit = defaults.CLI.DefaultLimit
	}
	if c.CLI.CompleteTrigger == "" {
		c.CLI.CompleteTrigger = defaults.CLI.CompleteTrigger
	}
	if c.History.MinWordLen < 0 {
		c.History.MinWordLen = 0
	}
	if c.History.SeedFiles == nil {
		c.History.SeedFiles = []string{}
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// RebuildConfigFile force creates a new config file with defaults at path
func RebuildConfigFile(configPath string) error {
	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), configPath)
}

// RebuildConfigWithPriority rewrites the custom config path if given, the
// default path otherwise, and returns the path it wrote.
func RebuildConfigWithPriority(customConfigPath string) (string, error) {
	configPath := customConfigPath
	if configPath == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("failed to determine config path: %w", err)
		}
		configPath = defaultPath
	}
	if err := RebuildConfigFile(configPath); err != nil {
		return "", fmt.Errorf("failed to rebuild config at %s: %w", configPath, err)
	}
	log.Debugf("Rebuilt config file: %s", configPath)
	return configPath, nil
}
