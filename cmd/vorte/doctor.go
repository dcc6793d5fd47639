// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vorte-dev/vorte/internal/config"
	"github.com/vorte-dev/vorte/internal/server"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

func newDoctorCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check the configuration, owners, storage, media keys, disk space, and whether the bot is reachable.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, v)
		},
	}

	cmd.Flags().String("address", "", "bot address to check (defaults to networking.listen)")

	return cmd
}

func runDoctor(cmd *cobra.Command, v *viper.Viper) error {
	w := cmd.OutOrStdout()
	addr, _ := cmd.Flags().GetString("address")
	if addr == "" {
		addr = v.GetString("networking.listen")
	}

	cfg, cfgErr := config.FromViper(v)
	dataDir := v.GetString("data_dir")
	if dataDir == "" {
		dataDir, _ = config.DefaultDataDir()
	}

	checks := []struct {
		name string
		fn   func() string
	}{
		{"Binary", checkBinary},
		{"Platform", checkPlatform},
		{"Config", func() string { return checkConfig(v, cfgErr) }},
		{"Owners", func() string { return checkOwners(cfg) }},
		{"Storage", func() string { return checkStorage(cfg, dataDir) }},
		{"Media", func() string { return checkMedia(cfg) }},
		{"Bot", func() string { return checkBot(cmd.Context(), addr) }},
		{"Disk Space", func() string { return checkDiskSpace(dataDir) }},
	}

	for _, c := range checks {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", c.name+":", c.fn()); err != nil {
			return err
		}
	}

	return nil
}

func checkBinary() string {
	return fmt.Sprintf("vorte %s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}

func checkPlatform() string {
	return fmt.Sprintf("%s/%s, Go %s", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func checkConfig(v *viper.Viper, err error) string {
	if err != nil {
		return fmt.Sprintf("invalid: %s", err)
	}
	cfgFile := v.ConfigFileUsed()
	if cfgFile == "" {
		return "using defaults (no config file found)"
	}
	if config.InsecurePermissions(cfgFile) {
		return fmt.Sprintf("loaded from %s (warning: readable by other users, chmod 600)", cfgFile)
	}
	return fmt.Sprintf("loaded from %s", cfgFile)
}

func checkOwners(cfg *config.Config) string {
	if cfg == nil {
		return "unknown (config invalid)"
	}
	if len(cfg.Bot.Owners) == 0 {
		return "none configured; owner commands are disabled"
	}
	return fmt.Sprintf("%d configured, primary %s", len(cfg.Bot.Owners), cfg.Bot.Owners[0].Number)
}

func checkStorage(cfg *config.Config, dataDir string) string {
	if cfg == nil {
		return "unknown (config invalid)"
	}
	if cfg.Storage.Backend != "sqlite" {
		return fmt.Sprintf("%s (counters reset on restart)", cfg.Storage.Backend)
	}
	dbPath := filepath.Join(dataDir, "stats.db")
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("sqlite, %s will be created on start", dbPath)
		}
		return fmt.Sprintf("sqlite, error: %s", err)
	}
	return fmt.Sprintf("sqlite at %s (%s)", dbPath, formatBytes(uint64(info.Size())))
}

func checkMedia(cfg *config.Config) string {
	if cfg == nil {
		return "unknown (config invalid)"
	}
	if cfg.Media.YouTubeAPIKey == "" {
		return "song/yt disabled (media.youtube_api_key not set)"
	}
	return fmt.Sprintf("song/yt enabled via %s", cfg.Media.YouTubeEndpoint)
}

func checkBot(ctx context.Context, addr string) string {
	var body server.StatusBody
	if err := newBotClient(addr).getJSON(ctx, "/api/v1/status", &body); err != nil {
		if vorteerr.HasCode(err, vorteerr.CodeCLIGatewayNotRunning) {
			return fmt.Sprintf("not running at %s (run 'vorte start')", addr)
		}
		return fmt.Sprintf("error: %s", err)
	}
	bridge := "no bridge connected"
	if body.BridgeConnected {
		bridge = "bridge connected"
	}
	return fmt.Sprintf("%s at %s, %s", body.Status, addr, bridge)
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b uint64) string {
	const (
		gb = 1024 * 1024 * 1024
		mb = 1024 * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	default:
		return fmt.Sprintf("%d bytes", b)
	}
}
