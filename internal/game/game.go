// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package game holds what the game engines share: outcomes and the session
// errors every engine reports.
//
// Engines read a session, compute the next state on a copy, and persist it
// with exactly one Create, Replace, or Delete. They do not lock: callers
// serialise engine calls per conversation (see internal/lane).
package game

import (
	"github.com/vorte-dev/vorte/internal/session"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

const (
	CodeNoActiveSession vorteerr.Code = "game.session.not_found"
	CodeAlreadyActive   vorteerr.Code = "game.session.conflict"
)

// Outcome is the state of a game after a transition.
type Outcome int

const (
	InProgress Outcome = iota
	Won
	Lost
	Draw
)

func (o Outcome) String() string {
	switch o {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session was destroyed by the transition.
func (o Outcome) Terminal() bool {
	return o != InProgress
}

// NoActiveSession reports that the conversation has no session of kind.
func NoActiveSession(conversationID string, kind session.Kind) error {
	return vorteerr.New(CodeNoActiveSession, "no active "+string(kind)+" session",
		vorteerr.FieldConversationID(conversationID),
		vorteerr.FieldSessionKind(string(kind)))
}

// AlreadyActive reports that a session of kind is already running.
func AlreadyActive(conversationID string, kind session.Kind) error {
	return vorteerr.New(CodeAlreadyActive, string(kind)+" session already active",
		vorteerr.FieldConversationID(conversationID),
		vorteerr.FieldSessionKind(string(kind)))
}

// FromStore converts session store errors into game errors. Other errors are
// returned unchanged.
func FromStore(err error, conversationID string, kind session.Kind) error {
	switch {
	case err == nil:
		return nil
	case vorteerr.HasCode(err, vorteerr.CodeSessionGetNotFound):
		return NoActiveSession(conversationID, kind)
	case vorteerr.HasCode(err, vorteerr.CodeSessionCreateConflict):
		return AlreadyActive(conversationID, kind)
	default:
		return err
	}
}

// IsNoActiveSession reports whether err is a NoActiveSession error.
func IsNoActiveSession(err error) bool {
	return vorteerr.HasCode(err, CodeNoActiveSession)
}

// IsAlreadyActive reports whether err is an AlreadyActive error.
func IsAlreadyActive(err error) bool {
	return vorteerr.HasCode(err, CodeAlreadyActive)
}
