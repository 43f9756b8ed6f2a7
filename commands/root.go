package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-claude-usage/internal/config"
	"github.com/penwyp/go-claude-usage/internal/util"
)

var (
	// Logging related
	debug bool

	// Configuration sources
	configFile string
	dataDirs   []string
	cacheDir   string
	logFile    string

	// Output related
	outputFormat string
	timezone     string

	// Aggregation related
	tokenLimit   int
	gapThreshold time.Duration
	unifiedStart string
	noCache      bool
	noTools      bool
	reset        bool

	rootCmd = &cobra.Command{
		Use:   "go-claude-usage [flags]",
		Short: "Claude Code usage aggregation tool",
		Long: `go-claude-usage ingests the JSONL session logs Claude Code writes, folds
them into rolling five-hour billing windows, and reports token usage
against the shared quota.

The root command runs one ingestion pass and renders a report; see the
monitor subcommand for continuous operation.

Examples:
  go-claude-usage                                  # One-shot report with default settings
  go-claude-usage --dir /path/to/claude/projects   # Read logs from a specific directory
  go-claude-usage --output json                    # Machine-readable report
  go-claude-usage --token-limit 880000             # Show usage against a quota
  go-claude-usage monitor                          # Live view, refreshed continuously
  go-claude-usage clear-cache                      # Drop the persisted read cursors`,
		RunE: runSnapshot,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()

	// Input data configuration
	pf.StringVar(&configFile, "config", "",
		"Configuration file path (YAML)")
	pf.StringSliceVar(&dataDirs, "dir", nil,
		"Claude project directory to scan (repeatable)")
	pf.StringVar(&cacheDir, "cache-dir", "",
		"Directory for the persisted read cursors")
	pf.StringVar(&logFile, "log-file", "",
		"Log file path")

	// Output configuration
	pf.StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, csv, summary)")
	pf.StringVar(&timezone, "timezone", "",
		"Timezone setting (e.g., Asia/Shanghai, UTC)")

	// Aggregation configuration
	pf.IntVar(&tokenLimit, "token-limit", 0,
		"Shared quota in adjusted tokens (0 = no limit)")
	pf.DurationVar(&gapThreshold, "gap-threshold", 0,
		"Idle time after which a billing window goes inactive")
	pf.StringVar(&unifiedStart, "unified-start", "",
		"Pin the unified window start (RFC3339 timestamp)")
	pf.BoolVar(&noCache, "no-cache", false,
		"Disable cursor persistence; every run reads files from the start")
	pf.BoolVar(&noTools, "no-tools", false,
		"Disable tool call tracking")
	pf.BoolVarP(&reset, "reset", "r", false,
		"Clear the cursor cache before running")

	// System and debugging
	pf.BoolVar(&debug, "debug", false,
		"Enable debug mode")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig merges the configuration file, environment variables, and any
// flags the user set explicitly, then fills defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.DataDirs = dataDirs
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = cacheDir
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("timezone") {
		cfg.Timezone = timezone
	}
	if flags.Changed("token-limit") {
		cfg.TokenLimit = tokenLimit
	}
	if flags.Changed("gap-threshold") {
		cfg.GapThreshold = gapThreshold
	}
	if flags.Changed("no-cache") {
		cfg.DisableCache = noCache
	}
	if flags.Changed("no-tools") {
		cfg.DisableToolTracking = noTools
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initRuntime brings up logging and the time provider from a validated
// config.
func initRuntime(cfg *config.Config) error {
	if err := ensureDir(filepath.Dir(cfg.LogFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	util.InitLogger(cfg.LogLevel, cfg.LogFile, debug)

	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return err
	}
	return nil
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
