// ABOUTME: Root Cobra command and global flags for the postboard CLI.
// ABOUTME: Sets up lifecycle hooks for logging, config loading, and store initialization.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/2389-research/postboard/internal/config"
	"github.com/2389-research/postboard/internal/storage"
)

var globalConfig *config.Config
var globalStore storage.PostStore
var logger = slog.Default()

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "postboard",
	Short: "Chat-bot driven post board",
	Long: `
██████╗  ██████╗ ███████╗████████╗██████╗  ██████╗  █████╗ ██████╗ ██████╗
██╔══██╗██╔═══██╗██╔════╝╚══██╔══╝██╔══██╗██╔═══██╗██╔══██╗██╔══██╗██╔══██╗
██████╔╝██║   ██║███████╗   ██║   ██████╔╝██║   ██║███████║██████╔╝██║  ██║
██╔═══╝ ██║   ██║╚════██║   ██║   ██╔══██╗██║   ██║██╔══██║██╔══██╗██║  ██║
██║     ╚██████╔╝███████║   ██║   ██████╔╝╚██████╔╝██║  ██║██║  ██║██████╔╝
╚═╝      ╚═════╝ ╚══════╝   ╚═╝   ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝

Podcast and information sharing board.
A chat bot adds, edits and deletes posts; the web page shows them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogger(); err != nil {
			return err
		}

		if err := config.LoadEnv(); err != nil {
			return err
		}

		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "setup" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		dataFile, err := cfg.GetDataFile()
		if err != nil {
			return fmt.Errorf("failed to resolve data file: %w", err)
		}
		store, err := storage.Open(cfg.GetBackend(), dataFile, logger)
		if err != nil {
			return fmt.Errorf("failed to open post store: %w", err)
		}
		globalStore = store

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalStore != nil {
			_ = globalStore.Close()
			globalStore = nil
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// setupLogger installs a text slog handler on stderr at the requested level.
func setupLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}
