// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package channel defines the normalized message shapes exchanged with a
// messaging transport and the capabilities the command core needs from it.
package channel

import (
	"context"
	"slices"
)

// MediaKind classifies attached or outgoing media.
type MediaKind string

const (
	MediaImage   MediaKind = "image"
	MediaVideo   MediaKind = "video"
	MediaSticker MediaKind = "sticker"
)

// MediaRef points at media held by the transport. The core downloads it
// through Actions.DownloadMedia when a command needs the bytes.
type MediaRef struct {
	ID       string    `json:"id"`
	Kind     MediaKind `json:"kind"`
	MimeType string    `json:"mime_type,omitempty"`
}

// Inbound is one message received from a conversation.
type Inbound struct {
	ConversationID string   `json:"conversation_id"`
	SenderID       string   `json:"sender_id"`
	Text           string   `json:"text"`
	MentionedIDs   []string `json:"mentioned_ids,omitempty"`
	IsGroup        bool     `json:"is_group,omitempty"`
	// Media is attached to the message itself; Quoted is attached to the
	// message being replied to.
	Media  *MediaRef `json:"media,omitempty"`
	Quoted *MediaRef `json:"quoted,omitempty"`
}

// OutboundMedia is media sent with a reply.
type OutboundMedia struct {
	Kind     MediaKind `json:"kind"`
	Data     []byte    `json:"data"`
	MimeType string    `json:"mime_type,omitempty"`
	Caption  string    `json:"caption,omitempty"`
}

// Outbound is one message to deliver to a conversation.
type Outbound struct {
	ConversationID string         `json:"conversation_id"`
	Text           string         `json:"text,omitempty"`
	MentionedIDs   []string       `json:"mentioned_ids,omitempty"`
	Media          *OutboundMedia `json:"media,omitempty"`
}

// Participant is a member of a group conversation.
type Participant struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"is_admin"`
}

// GroupMetadata describes a group conversation's membership.
type GroupMetadata struct {
	ConversationID string        `json:"conversation_id"`
	Subject        string        `json:"subject,omitempty"`
	Participants   []Participant `json:"participants"`
}

// IsAdmin reports whether id is an admin of the group.
func (g *GroupMetadata) IsAdmin(id string) bool {
	i := slices.IndexFunc(g.Participants, func(p Participant) bool { return p.ID == id })
	return i >= 0 && g.Participants[i].IsAdmin
}

// IDs returns the participant ids in roster order.
func (g *GroupMetadata) IDs() []string {
	ids := make([]string, len(g.Participants))
	for i, p := range g.Participants {
		ids[i] = p.ID
	}
	return ids
}

// Transport is the outbound side of a messaging client.
type Transport interface {
	Send(ctx context.Context, msg Outbound) error
	GroupMetadata(ctx context.Context, conversationID string) (*GroupMetadata, error)
	// BotID is the participant id of the bot's own account.
	BotID() string
}

// ParticipantAction is a group membership change.
type ParticipantAction string

const (
	ActionPromote ParticipantAction = "promote"
	ActionDemote  ParticipantAction = "demote"
	ActionRemove  ParticipantAction = "remove"
)

// Actions are optional transport capabilities used by group, profile, and
// media commands. Transports that lack them return
// CodeChannelActionUnsupported.
type Actions interface {
	UpdateParticipants(ctx context.Context, conversationID string, ids []string, action ParticipantAction) error
	LeaveGroup(ctx context.Context, conversationID string) error
	SetDisplayName(ctx context.Context, name string) error
	SetStatus(ctx context.Context, status string) error
	DownloadMedia(ctx context.Context, ref MediaRef) ([]byte, error)
}

// Handler consumes inbound messages.
type Handler interface {
	Handle(ctx context.Context, msg Inbound)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg Inbound)

func (f HandlerFunc) Handle(ctx context.Context, msg Inbound) { f(ctx, msg) }
