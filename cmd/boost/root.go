package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/config"
	"github.com/0xcro3dile/boost-go/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	serverAddr string

	version = "dev"

	// Set by PersistentPreRunE.
	cfg      *config.Config
	logger   *zap.Logger
	logLevel zap.AtomicLevel
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "boost",
	Short: "Ask an assistant about whatever is under your cursor",
	Long: `boost captures context from the application under the mouse pointer
(window title, page or file contents, selected text) and streams a chat
completion about it.

Run "boost serve" once, then bind "boost show" to a keyboard shortcut.

Quick Start:
  boost serve                     # Start the daemon
  boost show                      # Capture context and open a session
  boost ask "what does this do?"  # Ask about the captured context
  boost capture                   # Print what would be captured, as YAML`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, logLevel, err = logging.New(level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		if serverAddr == "" {
			serverAddr = cfg.Listen
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", "", "Address of the boost server (defaults to the configured listen address)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
