// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/vorte-dev/vorte/internal/channel"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

func (r *Router) groupCommands() []*Command {
	return []*Command{
		{
			Name:      "tagall",
			Aliases:   []string{"everyone"},
			Category:  CategoryGroup,
			Summary:   "Mention all members",
			Access:    OwnerOnly,
			GroupOnly: true,
			BotAdmin:  true,
			Denied:    "❌ Admin only command.",
			Failure:   "❌ Failed to tag everyone.",
			Handler:   r.handleTagAll,
		},
		r.participantCommand("promote", "Promote user to admin", channel.ActionPromote,
			"✅ Promoted %d user(s)", "❌ Failed to promote user(s)."),
		r.participantCommand("demote", "Demote admin", channel.ActionDemote,
			"⚠️ Demoted %d user(s)", "❌ Failed to demote user(s)."),
		r.participantCommand("kick", "Remove user", channel.ActionRemove,
			"👢 Removed %d user(s)", "❌ Failed to remove user(s)."),
		{
			Name:      "leave",
			Category:  CategoryGroup,
			Summary:   "Bot leaves group",
			Access:    OwnerOnly,
			GroupOnly: true,
			Failure:   "❌ Failed to leave group.",
			Handler:   r.handleLeave,
		},
	}
}

// participantCommand builds a membership command acting on the mentioned
// participants. Senders must be owners or group admins, and the bot must
// be a group admin.
func (r *Router) participantCommand(name, summary string, action channel.ParticipantAction, done, failure string) *Command {
	return &Command{
		Name:      name,
		Category:  CategoryGroup,
		Usage:     "@user",
		Summary:   summary,
		Args:      RequiredMention,
		Access:    GroupAdmin,
		GroupOnly: true,
		BotAdmin:  true,
		Denied:    "❌ Admin only command.",
		Failure:   failure,
		Handler: func(ctx context.Context, req *Request) error {
			actions, err := r.requireActions(name)
			if err != nil {
				return err
			}
			ids := req.Message.MentionedIDs
			if err := actions.UpdateParticipants(ctx, req.Message.ConversationID, ids, action); err != nil {
				return vorteerr.Wrap(err, vorteerr.CodeChannelUpstreamFailure, "updating participants",
					vorteerr.FieldConversationID(req.Message.ConversationID),
					vorteerr.FieldValue("action", string(action)))
			}
			return r.reply(ctx, req, fmt.Sprintf(done, len(ids)), ids...)
		},
	}
}

func (r *Router) handleTagAll(ctx context.Context, req *Request) error {
	md, err := r.groupMetadata(ctx, req)
	if err != nil {
		return err
	}

	ids := md.IDs()
	var b strings.Builder
	b.WriteString("📣 *Tagging Everyone*\n\n")
	for _, id := range ids {
		b.WriteString(mention(id) + "\n")
	}
	return r.reply(ctx, req, b.String(), ids...)
}

func (r *Router) handleLeave(ctx context.Context, req *Request) error {
	actions, err := r.requireActions(req.Command.Name)
	if err != nil {
		return err
	}
	if err := r.reply(ctx, req, "👋 Leaving group..."); err != nil {
		return err
	}
	if err := actions.LeaveGroup(ctx, req.Message.ConversationID); err != nil {
		return vorteerr.Wrap(err, vorteerr.CodeChannelUpstreamFailure, "leaving group",
			vorteerr.FieldConversationID(req.Message.ConversationID))
	}
	return nil
}
