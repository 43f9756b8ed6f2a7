package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/penwyp/go-claude-usage/internal/application/monitor"
	"github.com/penwyp/go-claude-usage/internal/core/pricing"
	"github.com/penwyp/go-claude-usage/internal/presentation/formatter"
	"github.com/penwyp/go-claude-usage/internal/util"
)

var (
	monitorInterval time.Duration
	monitorRefresh  time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Continuously ingest usage logs and show the live window",
	Long: `Polls the data directories on a fixed interval, folds newly appended
records into the billing windows, and re-renders the current snapshot
until interrupted.

A filesystem watcher shortens the wait after log writes when available.
On a terminal the screen is redrawn in place; piped output gets one
report per refresh. The unified window, quota usage, and ingestion
counters update live.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0,
		"Poll interval between ingestion cycles (default 10s, or config)")
	monitorCmd.Flags().DurationVar(&monitorRefresh, "refresh", 5*time.Second,
		"Display refresh interval")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if monitorInterval > 0 {
		cfg.PollInterval = monitorInterval
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

	// The live view defaults to the summary; an explicit --output wins.
	format := "summary"
	if cmd.Flags().Changed("output") {
		format = outputFormat
	}
	f, err := buildFormatter(format)
	if err != nil {
		return err
	}

	m, err := monitor.NewMonitor(cfg)
	if err != nil {
		return err
	}
	// First cycle rebuilds the whole window from disk; later cycles tail
	// incrementally from the refreshed cursors.
	m.InvalidateCursors()
	if err := applyUnifiedStart(m); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
	}()

	out := cmd.OutOrStdout()
	interactive := isTerminal(out)

	render := func() {
		snap := m.Snapshot()
		report := formatter.BuildReport(ctx, snap, pricing.NewStaticProvider())
		if interactive {
			fmt.Fprint(out, util.ClearScreen+util.MoveCursorHome)
		}
		if err := f.Format(out, report); err != nil {
			util.LogWarnf("Render failed: %v", err)
		}
	}

	ticker := time.NewTicker(monitorRefresh)
	defer ticker.Stop()
	render()

	for {
		select {
		case err := <-done:
			return err
		case <-ticker.C:
			render()
		}
	}
}

// isTerminal reports whether the writer is an interactive terminal. Piped
// output skips the screen-clear sequences.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
