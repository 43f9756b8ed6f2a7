package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-claude-usage/internal/config"
	"github.com/penwyp/go-claude-usage/internal/data/cursor"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Remove the persisted read cursors",
	Long: `Removes the cursor cache so the next run re-reads every log file from
the start. Totals stay correct because the deduplication ledger drops
replayed records.`,
	RunE: runClearCache,
}

func init() {
	rootCmd.AddCommand(clearCacheCmd)
}

func runClearCache(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initRuntime(cfg); err != nil {
		return err
	}

	if err := clearCursorCache(cfg); err != nil {
		return fmt.Errorf("failed to clear cursor cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cursor cache cleared")
	return nil
}

func clearCursorCache(cfg *config.Config) error {
	cache, err := cursor.NewCache(cfg.CacheDir, cfg.DisableCache, cfg.TrackTools())
	if err != nil {
		return err
	}
	return cache.Clear()
}
