// Package config loads monitor settings from an optional YAML file plus
// environment overrides, then fills defaults. Command flags are applied
// on top by the caller before Validate.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/penwyp/go-claude-usage/internal/core/constants"
)

// Config holds every tunable of the ingestion loop.
type Config struct {
	DataDirs            []string      `yaml:"data_dirs" env:"CLAUDE_USAGE_DATA_DIRS" env-separator:":"`
	CacheDir            string        `yaml:"cache_dir" env:"CLAUDE_USAGE_CACHE_DIR"`
	LogFile             string        `yaml:"log_file" env:"CLAUDE_USAGE_LOG_FILE"`
	LogLevel            string        `yaml:"log_level" env:"CLAUDE_USAGE_LOG_LEVEL"`
	Timezone            string        `yaml:"timezone" env:"CLAUDE_USAGE_TIMEZONE"`
	PollInterval        time.Duration `yaml:"poll_interval" env:"CLAUDE_USAGE_POLL_INTERVAL"`
	GapThreshold        time.Duration `yaml:"gap_threshold" env:"CLAUDE_USAGE_GAP_THRESHOLD"`
	TokenLimit          int           `yaml:"token_limit" env:"CLAUDE_USAGE_TOKEN_LIMIT"`
	DisableCache        bool          `yaml:"disable_cache" env:"CLAUDE_USAGE_DISABLE_CACHE"`
	DisableToolTracking bool          `yaml:"disable_tool_tracking" env:"CLAUDE_USAGE_DISABLE_TOOL_TRACKING"`
	ProjectNamePrefixes []string      `yaml:"project_name_prefixes" env:"CLAUDE_USAGE_PROJECT_NAME_PREFIXES" env-separator:","`
}

// Load reads configuration from path when given, otherwise from the
// environment alone, and applies defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills missing values with defaults and expands home-relative
// paths.
func (c *Config) Validate() error {
	if len(c.DataDirs) == 0 {
		c.DataDirs = []string{"~/.claude/projects", "~/.config/claude/projects"}
	}
	if c.CacheDir == "" {
		c.CacheDir = "~/.go-claude-usage/cache"
	}
	if c.LogFile == "" {
		c.LogFile = "~/.go-claude-usage/logs/app.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = constants.DefaultPollInterval
	}
	if c.GapThreshold <= 0 {
		c.GapThreshold = constants.DefaultGapThreshold
	}
	if len(c.ProjectNamePrefixes) == 0 {
		c.ProjectNamePrefixes = []string{"-Users-", "-home-"}
	}

	for i, dir := range c.DataDirs {
		c.DataDirs[i] = ExpandPath(dir)
	}
	c.CacheDir = ExpandPath(c.CacheDir)
	c.LogFile = ExpandPath(c.LogFile)

	return nil
}

// TrackTools reports whether tool call extraction is on.
func (c *Config) TrackTools() bool {
	return !c.DisableToolTracking
}

// ExpandPath resolves a leading ~/ against the home directory and makes
// the path absolute.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
