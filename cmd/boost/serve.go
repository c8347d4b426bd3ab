package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/0xcro3dile/boost-go/internal/adapters/filewatcher"
	"github.com/0xcro3dile/boost-go/internal/config"
	boosthttp "github.com/0xcro3dile/boost-go/internal/infrastructure/http"
)

var noPersist bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the boost daemon",
	Long: `Starts the loopback control server and keeps the conversation in memory.
The config file is watched and model, system prompt and log level changes
are applied without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&noPersist, "no-persist", false, "Keep settings in memory instead of the settings database")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openSettings(cfg, !noPersist)
	if err != nil {
		return err
	}
	defer store.Close()

	effective, err := withSettings(ctx, cfg, store)
	if err != nil {
		return err
	}

	a := newApp(effective, store, logger)
	server := boosthttp.NewServer(a.panel, store, effective.Listen, logger)
	server.OnSettingChanged(func(ctx context.Context, key, value string) {
		a.applySetting(key, value)
	})

	logger.Info("Boost daemon starting",
		zap.String("provider", a.streamer.Name()),
		zap.String("model", effective.LLM.Model),
		zap.String("config", configPath))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})

	if _, err := os.Stat(filepath.Dir(configPath)); err == nil {
		watcher, err := filewatcher.NewFSNotifyWatcher([]string{configPath}, logger)
		if err != nil {
			return err
		}
		defer watcher.Stop()

		g.Go(func() error {
			return config.Watch(gctx, configPath, watcher, logger, func(c *config.Config) {
				if lvl, err := zapcore.ParseLevel(c.Logging.Level); err == nil && !verbose {
					logLevel.SetLevel(lvl)
				}
				reloaded, err := withSettings(gctx, c, store)
				if err != nil {
					logger.Warn("Reading settings failed", zap.Error(err))
					reloaded = c
				}
				a.applyConfig(reloaded)
			})
		})
	} else {
		logger.Debug("Config directory missing, not watching", zap.String("path", configPath))
	}

	err = g.Wait()
	a.conversation.Cancel()
	a.capture.Wait()
	logger.Info("Boost daemon stopped")
	return err
}
