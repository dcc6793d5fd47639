// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vorte-dev/vorte/internal/server"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

func newStatusCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show bot status",
		Long:  "Query the running bot's status endpoint and display its counters.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, v)
		},
	}

	cmd.Flags().String("address", "", "bot address to check (defaults to networking.listen)")

	return cmd
}

func runStatus(cmd *cobra.Command, v *viper.Viper) error {
	addr, _ := cmd.Flags().GetString("address")
	if addr == "" {
		addr = v.GetString("networking.listen")
	}
	out := cmd.OutOrStdout()

	var body server.StatusBody
	if err := newBotClient(addr).getJSON(cmd.Context(), "/api/v1/status", &body); err != nil {
		if vorteerr.HasCode(err, vorteerr.CodeCLIGatewayNotRunning) {
			_, _ = fmt.Fprintf(out, "Vorte at %s is not running (connection refused)\n", addr)
			return nil
		}
		_, _ = fmt.Fprintf(out, "Vorte at %s: %s\n", addr, err)
		return nil
	}

	bridge := "disconnected"
	if body.BridgeConnected {
		bridge = "connected"
	}
	_, err := fmt.Fprintf(out,
		"Vorte at %s: %s\n  Bot:             %s (%s)\n  Uptime:          %s\n  Bridge:          %s\n  Active games:    %d\n  Conversations:   %d\n  Messages:        %d\n",
		addr, body.Status,
		body.BotName, body.Version,
		(time.Duration(body.UptimeSeconds) * time.Second).String(),
		bridge,
		body.ActiveSessions,
		body.Conversations,
		body.Messages,
	)
	return err
}
