// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func (r *Router) infoCommands() []*Command {
	return []*Command{
		{
			Name:     "ping",
			Category: CategoryControl,
			Summary:  "Check bot latency",
			Handler:  r.handlePing,
		},
		{
			Name:     "menu",
			Aliases:  []string{"help"},
			Category: CategoryControl,
			Summary:  "Show this menu",
			Handler:  r.handleMenu,
		},
		{
			Name:     "owner",
			Category: CategoryControl,
			Summary:  "Show bot owner",
			Handler:  r.handleOwner,
		},
		{
			Name:     "stats",
			Category: CategoryControl,
			Summary:  "Show bot statistics",
			Handler:  r.handleStats,
		},
	}
}

func (r *Router) handlePing(ctx context.Context, req *Request) error {
	start := r.now()
	if err := r.reply(ctx, req, "Pinging..."); err != nil {
		return err
	}
	latency := r.now().Sub(start)
	return r.reply(ctx, req, fmt.Sprintf("🏓 Pong! Latency: %dms", latency.Milliseconds()))
}

func (r *Router) handleMenu(ctx context.Context, req *Request) error {
	return r.reply(ctx, req, r.registry.Menu(r.BotName(), r.cfg.Prefix))
}

func (r *Router) handleOwner(ctx context.Context, req *Request) error {
	owners := r.owners.List()
	if len(owners) == 0 {
		return r.reply(ctx, req, "👑 *Bot Owners*\n\nNo owners configured.")
	}

	lines := make([]string, len(owners))
	for i, o := range owners {
		lines[i] = fmt.Sprintf("%d. %s - %s", i+1, o.Number, o.Label)
	}
	return r.reply(ctx, req, "👑 *Bot Owners*\n\n"+strings.Join(lines, "\n"))
}

// Snapshot is a point-in-time view of the bot's activity.
type Snapshot struct {
	BotName        string
	Uptime         time.Duration
	ActiveSessions int
	Conversations  int
	Messages       int64
}

// Snapshot reports the counters shown by the stats command.
func (r *Router) Snapshot(ctx context.Context) (Snapshot, error) {
	totals, err := r.stats.Totals(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	games, err := r.sessions.Count(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		BotName:        r.BotName(),
		Uptime:         r.now().Sub(r.started),
		ActiveSessions: games,
		Conversations:  totals.Conversations,
		Messages:       totals.Messages,
	}, nil
}

func (r *Router) handleStats(ctx context.Context, req *Request) error {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("📊 *Bot Statistics*\n• Active chats: %d\n• Total messages: %d\n• Active games: %d\n• Uptime: %s",
		snap.Conversations, snap.Messages, snap.ActiveSessions, formatUptime(snap.Uptime))
	return r.reply(ctx, req, text)
}

func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
