// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vorte-dev/vorte/internal/channel"
	"github.com/vorte-dev/vorte/internal/store"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

func (r *Router) ownerCommands() []*Command {
	return []*Command{
		{
			Name:     "setnamebot",
			Category: CategoryControl,
			Usage:    "<name>",
			Summary:  "Change bot name",
			Args:     RequiredText,
			Access:   OwnerOnly,
			Failure:  "❌ Failed to change name.",
			Handler:  r.handleSetName,
		},
		{
			Name:     "setbio",
			Category: CategoryControl,
			Usage:    "<text>",
			Summary:  "Change bot bio",
			Args:     RequiredText,
			Access:   OwnerOnly,
			Failure:  "❌ Failed to update bio.",
			Handler:  r.handleSetBio,
		},
		{
			Name:     "broadcast",
			Category: CategoryOwner,
			Usage:    "<msg>",
			Summary:  "Broadcast message",
			Args:     RequiredText,
			Access:   PrimaryOwnerOnly,
			Handler:  r.handleBroadcast,
		},
	}
}

func (r *Router) handleSetName(ctx context.Context, req *Request) error {
	actions, err := r.requireActions(req.Command.Name)
	if err != nil {
		return err
	}
	if err := actions.SetDisplayName(ctx, req.ArgString); err != nil {
		return vorteerr.Wrap(err, vorteerr.CodeChannelUpstreamFailure, "setting display name")
	}
	r.setBotName(req.ArgString)
	return r.reply(ctx, req, "✅ Bot name changed to: "+req.ArgString)
}

func (r *Router) handleSetBio(ctx context.Context, req *Request) error {
	actions, err := r.requireActions(req.Command.Name)
	if err != nil {
		return err
	}
	if err := actions.SetStatus(ctx, req.ArgString); err != nil {
		return vorteerr.Wrap(err, vorteerr.CodeChannelUpstreamFailure, "setting status")
	}
	return r.reply(ctx, req, "✅ Bio updated to: "+req.ArgString)
}

// handleBroadcast sends the argument to the most recently active known
// conversations, pausing between sends.
func (r *Router) handleBroadcast(ctx context.Context, req *Request) error {
	if err := r.reply(ctx, req, "📢 Starting broadcast to all chats..."); err != nil {
		return err
	}

	targets, err := r.stats.Conversations(ctx, store.ListOpts{Limit: r.cfg.BroadcastLimit})
	if err != nil {
		return err
	}

	text := fmt.Sprintf("📢 *Broadcast from %s*\n\n%s", r.BotName(), req.ArgString)
	sent, failed := 0, 0
	for i, t := range targets {
		if i > 0 {
			if err := r.pause(ctx); err != nil {
				return err
			}
		}
		err := r.sendOutbound(ctx, channel.Outbound{ConversationID: t.ConversationID, Text: text})
		if err != nil {
			failed++
			slog.Warn("broadcast send failed",
				"conversation_id", t.ConversationID,
				"error", err)
			continue
		}
		sent++
	}

	slog.Info("broadcast completed", "sent", sent, "failed", failed)
	return r.reply(ctx, req, fmt.Sprintf("✅ Broadcast completed!\n• Sent: %d\n• Failed: %d", sent, failed))
}

func (r *Router) pause(ctx context.Context) error {
	if r.cfg.BroadcastPacing <= 0 {
		return nil
	}
	t := time.NewTimer(r.cfg.BroadcastPacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
