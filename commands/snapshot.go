package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-claude-usage/internal/application/monitor"
	"github.com/penwyp/go-claude-usage/internal/core/normalize"
	"github.com/penwyp/go-claude-usage/internal/core/pricing"
	"github.com/penwyp/go-claude-usage/internal/presentation/formatter"
	"github.com/penwyp/go-claude-usage/internal/util"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Run one ingestion pass and render a usage report",
	Long: `Scans the data directories once, folds every record on disk into the
billing windows, and renders the resulting snapshot.

This is the same one-shot pass the bare root command runs; the explicit
subcommand exists for scripts that want the intent spelled out.`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initRuntime(cfg); err != nil {
		return err
	}

	if reset {
		if err := clearCursorCache(cfg); err != nil {
			return fmt.Errorf("failed to clear cursor cache: %w", err)
		}
		util.LogInfo("Cursor cache cleared")
	}

	f, err := buildFormatter(outputFormat)
	if err != nil {
		return err
	}

	m, err := monitor.NewMonitor(cfg)
	if err != nil {
		return err
	}
	// The aggregate only lives for this invocation, so read everything.
	m.InvalidateCursors()
	if err := applyUnifiedStart(m); err != nil {
		return err
	}

	snap := m.RunOnce()
	report := formatter.BuildReport(cmd.Context(), snap, pricing.NewStaticProvider())
	return f.Format(cmd.OutOrStdout(), report)
}

// applyUnifiedStart pins the unified window anchor when --unified-start was
// given.
func applyUnifiedStart(m *monitor.Monitor) error {
	if unifiedStart == "" {
		return nil
	}
	ts, err := normalize.ParseTimestamp(unifiedStart)
	if err != nil {
		return fmt.Errorf("invalid --unified-start: %w", err)
	}
	m.PinUnifiedStart(ts)
	return nil
}

func buildFormatter(name string) (formatter.Formatter, error) {
	switch strings.ToLower(name) {
	case "table":
		return formatter.NewTableFormatter(), nil
	case "json":
		return formatter.NewJSONFormatter(), nil
	case "csv":
		return formatter.NewCSVFormatter(), nil
	case "summary":
		return formatter.NewSummaryFormatter(), nil
	}
	return nil, fmt.Errorf("unknown output format %q (expected table, json, csv, or summary)", name)
}
