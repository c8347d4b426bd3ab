package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture the window under the cursor locally and print it as YAML",
	Long: `Runs one capture in this process without a daemon, waits for the page
or file content and prints the resulting snapshot. Useful to check which
permissions are missing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := newApp(cfg, nil, logger)

		cursor, err := a.displays.CursorPosition(ctx)
		if err != nil {
			return fmt.Errorf("reading cursor: %w", err)
		}
		highlighted, err := a.selection.SelectedText(ctx)
		if err != nil {
			logger.Debug("Reading selected text failed", zap.Error(err))
		}

		a.capture.Capture(ctx, cursor, highlighted)
		a.capture.Wait()
		return yaml.NewEncoder(cmd.OutOrStdout()).Encode(a.capture.Snapshot())
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the bundle identifiers that get full content extraction",
	Long: `Prints one bundle identifier per line. Windows of other applications
are captured with their title only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg, nil, logger)
		for _, id := range a.registry.BundleIDs() {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(captureCmd, providersCmd)
}
