// stockdeck - a terminal client for tracking stocks
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xinguang/stockdeck/pkg/config"
	"github.com/xinguang/stockdeck/pkg/logging"
	"github.com/xinguang/stockdeck/pkg/source"
	"github.com/xinguang/stockdeck/pkg/store"
	"github.com/xinguang/stockdeck/pkg/tracker"
	"github.com/xinguang/stockdeck/pkg/tui"
	"github.com/xinguang/stockdeck/pkg/ui"
)

var (
	version = "0.1.0"
	cfgPath string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stockdeck",
		Short: "Track stocks in your terminal",
		Long: `stockdeck shows your tracked stocks, refreshes them from a remote
data source, and falls back to a locally cached copy when the remote
cannot be reached.`,
		RunE: runTUI,
	}

	// Flags
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file (defaults to ~/.stockdeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Subcommands
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(refreshCmd())
	rootCmd.AddCommand(showCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stockdeck version %s\n", version)
		},
	}
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the stock list once and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, cleanup, err := setup(true)
			if err != nil {
				return err
			}
			defer cleanup()

			printer := ui.NewPrinter()
			<-tr.Refresh(context.Background())

			st := tr.Status()
			switch st.Phase {
			case tracker.PhaseSucceeded:
				printer.Success("fetched %d stocks in %s", len(st.Symbols), st.Elapsed.Round(time.Millisecond))
				printer.StockTable(tr.Stocks())
			case tracker.PhaseFailed:
				printer.Error("fetch failed: %s", st.Message)
				printer.Dimf("showing cached data (updated %s)", tr.LastUpdateDisplay())
				printer.StockTable(tr.Stocks())
				os.Exit(1)
			}
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cached stock list without fetching",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, cleanup, err := setup(true)
			if err != nil {
				return err
			}
			defer cleanup()

			printer := ui.NewPrinter()
			profile := tr.Profile()
			printer.Title("%s", profile.Name)
			printer.Dimf("updated %s", tr.LastUpdateDisplay())
			printer.StockTable(tr.Stocks())
			return nil
		},
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal; logs go to the rotated file only.
	tr, cleanup, err := setup(false)
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.Run(tr)
}

// setup wires config, logger, store, source, and tracker. console selects
// whether logs may be written to stderr (headless commands) or must stay in
// the log file (TUI mode).
func setup(console bool) (*tracker.Tracker, func(), error) {
	path := cfgPath
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return nil, nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logFile := cfg.Log.File
	if !console && logFile == "" {
		logFile, err = config.GetLogPath()
		if err != nil {
			return nil, nil, err
		}
	}
	logger := logging.New(level, logFile, console)

	storePath, err := cfg.StorePath()
	if err != nil {
		return nil, nil, err
	}
	var st store.Store
	switch cfg.Store.Backend {
	case "sqlite":
		st, err = store.NewSQLiteStore(storePath)
	default:
		st, err = store.NewFileStore(storePath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store ready",
		zap.String("backend", cfg.Store.Backend),
		zap.String("path", storePath))

	src := source.NewMockSource(source.MockConfig{
		Symbols:     cfg.Source.Symbols,
		MinDelay:    cfg.MinDelay(),
		MaxDelay:    cfg.MaxDelay(),
		FailureRate: cfg.Source.FailureRate,
		Seed:        cfg.Source.Seed,
	})

	tr := tracker.New(src, st, logger, cfg.Profile.Name)

	cleanup := func() {
		st.Close()
		logger.Sync()
	}
	return tr, cleanup, nil
}
