// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vorte-dev/vorte/internal/config"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

func newStartCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the bot",
		Long:  "Load configuration, wire the command engine, and serve the bridge socket and HTTP API until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStart(cmd, v)
		},
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")

	return cmd
}

func runStart(cmd *cobra.Command, v *viper.Viper) error {
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		v.Set("networking.listen", listen)
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log, v.GetBool("verbose"))
	slog.SetDefault(logger)
	config.WarnInsecurePermissions(cfg.Source)

	dataDir, err := resolveDataDir(cfg)
	if err != nil {
		return err
	}

	bot, err := WireBot(cfg, dataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := bot.Close(); err != nil {
			slog.Warn("shutdown cleanup failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("vorte starting",
		"version", version,
		"listen", cfg.Networking.Listen,
		"config", cfg.Source,
		"data_dir", dataDir,
		"storage", cfg.Storage.Backend,
		"owners", len(cfg.Bot.Owners),
	)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Vorte listening on %s (bridge at ws://%s/ws)\n",
		cfg.Networking.Listen, cfg.Networking.Listen); err != nil {
		return err
	}

	if err := bot.Run(ctx); err != nil {
		return vorteerr.Wrap(err, vorteerr.CodeServerStartFailure, "running bot")
	}
	slog.Info("vorte stopped")
	return nil
}

// resolveDataDir returns the configured data directory or ~/.vorte.
func resolveDataDir(cfg *config.Config) (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	return config.DefaultDataDir()
}
