// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package wsgateway

import "github.com/vorte-dev/vorte/internal/channel"

// Frame types sent by the bridge.
const (
	FrameHello   = "hello"
	FrameMessage = "message"
	FrameJoin    = "join"
	FrameResult  = "result"
	FramePing    = "ping"
)

// Frame types sent by the gateway.
const (
	FrameSend   = "send"
	FrameAction = "action"
	FramePong   = "pong"
	FrameError  = "error"
)

// Actions carried by action frames. The bridge answers each with a result
// frame echoing the action's id.
const (
	ActionUpdateParticipants = "update_participants"
	ActionLeaveGroup         = "leave_group"
	ActionSetDisplayName     = "set_display_name"
	ActionSetStatus          = "set_status"
	ActionDownloadMedia      = "download_media"
	ActionGroupMetadata      = "group_metadata"
)

// Frame is the JSON envelope exchanged with the bridge. Which fields are set
// depends on Type.
type Frame struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	// hello
	BotID string `json:"bot_id,omitempty"`

	// message, send
	Inbound  *channel.Inbound  `json:"inbound,omitempty"`
	Outbound *channel.Outbound `json:"outbound,omitempty"`

	// join, and group_metadata results
	Group *channel.GroupMetadata `json:"group,omitempty"`

	// action
	Action         string                    `json:"action,omitempty"`
	ConversationID string                    `json:"conversation_id,omitempty"`
	Participants   []string                  `json:"participants,omitempty"`
	Change         channel.ParticipantAction `json:"change,omitempty"`
	Text           string                    `json:"text,omitempty"`
	Media          *channel.MediaRef         `json:"media,omitempty"`

	// result
	Data  []byte `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}
