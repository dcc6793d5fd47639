// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vorte-dev/vorte/internal/config"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// NewRootCmd creates the root vorte command with all subcommands registered.
// Each root owns its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "vorte",
		Short:         "Vorte, a group chat bot with games",
		Long:          "Vorte answers prefixed chat commands, runs per-conversation games, and talks to a messaging bridge over a websocket.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd, v)
		},
	}

	// Global flags; these map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("data-dir", "", "path to data directory")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newStartCmd(v),
		newStatusCmd(v),
		newDoctorCmd(v),
		newVersionCmd(),
	)

	return root
}

// initViper sets up v with defaults, .env, env bindings, flag bindings, and
// the config file so the standard precedence (flag > env > file > defaults)
// is handled uniformly.
func initViper(cmd *cobra.Command, v *viper.Viper) error {
	if err := config.LoadDotEnv(""); err != nil {
		return err
	}

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return vorteerr.Errorf(vorteerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		if err := config.Discover(v); err != nil {
			return err
		}
		// No config found anywhere: write a commented default for next time.
		if v.ConfigFileUsed() == "" {
			if path, err := config.DefaultConfigPath(); err == nil && config.BootstrapConfig(path) {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return vorteerr.Errorf(vorteerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	flags := cmd.Root().PersistentFlags()
	if f := flags.Lookup("data-dir"); f.Changed {
		v.Set("data_dir", f.Value.String())
	}
	if err := v.BindPFlag("verbose", flags.Lookup("verbose")); err != nil {
		return vorteerr.Errorf(vorteerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}
