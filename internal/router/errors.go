// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vorte-dev/vorte/internal/channel"
	"github.com/vorte-dev/vorte/internal/game"
	"github.com/vorte-dev/vorte/internal/game/hangman"
	"github.com/vorte-dev/vorte/internal/game/quiz"
	"github.com/vorte-dev/vorte/internal/game/tictactoe"
	"github.com/vorte-dev/vorte/internal/metrics"
	"github.com/vorte-dev/vorte/internal/session"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// usageCodes are answered with the command's usage hint.
var usageCodes = map[vorteerr.Code]bool{
	vorteerr.CodeRouterUsageInvalid: true,
	tictactoe.CodeInvalidCell:       true,
	hangman.CodeInvalidLetter:       true,
	quiz.CodeEmptyAnswer:            true,
}

// rejectedCodes are bad user input answered with the command's failure text.
var rejectedCodes = map[vorteerr.Code]bool{
	vorteerr.CodeMathExpressionInvalid: true,
}

var conflictReplies = map[vorteerr.Code]string{
	tictactoe.CodeSelfChallenge: "You cannot challenge yourself.",
	tictactoe.CodeNotYourTurn:   "It's not your turn!",
	tictactoe.CodeCellTaken:     "Cell already taken!",
	hangman.CodeAlreadyGuessed:  "Letter already guessed!",
}

var noSessionReplies = map[session.Kind]string{
	session.KindTicTacToe: "No active game. Start with {prefix}ttt @user",
	session.KindHangman:   "No active game. Start with {prefix}hangmanstart",
	session.KindQuiz:      "No active quiz. Start with {prefix}quizstart",
}

var activeSessionReplies = map[session.Kind]string{
	session.KindTicTacToe: "⏳ A Tic Tac Toe game is already running in this chat. Finish it first!",
	session.KindHangman:   "⏳ A Hangman game is already running in this chat. Finish it first!",
	session.KindQuiz:      "⏳ A quiz is already running in this chat. Answer it first!",
}

// classify maps a command error onto a metrics outcome.
func classify(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case usageCodes[vorteerr.CodeOf(err)], rejectedCodes[vorteerr.CodeOf(err)]:
		return metrics.OutcomeUsage
	case vorteerr.IsUnauthorized(err), vorteerr.HasCode(err, vorteerr.CodeRouterGroupOnlyInvalid):
		return metrics.OutcomeDenied
	case vorteerr.IsSessionConflict(err) && !vorteerr.HasCode(err, vorteerr.CodeSessionStateInvalid):
		return metrics.OutcomeConflict
	case vorteerr.IsCollaboratorFailure(err):
		return metrics.OutcomeCollaborator
	default:
		return metrics.OutcomeFailed
	}
}

// fail logs err and answers the sender with the matching reply.
func (r *Router) fail(ctx context.Context, log *slog.Logger, req *Request, outcome string, err error) {
	var text string

	switch outcome {
	case metrics.OutcomeUsage:
		log.Debug("command usage error", "error", err)
		text = usageHint(req.Command, r.cfg.Prefix)
		if rejectedCodes[vorteerr.CodeOf(err)] {
			text = failureText(req.Command)
		}
	case metrics.OutcomeDenied:
		log.Info("command refused", "error", err)
		text = r.deniedText(req.Command, err)
	case metrics.OutcomeConflict:
		log.Debug("command session conflict", "error", err)
		text = r.conflictText(err)
	case metrics.OutcomeCollaborator:
		log.Warn("command collaborator failure", "error", err)
		text = failureText(req.Command)
	default:
		log.Error("command failed", "error", err)
		text = failureText(req.Command)
		if vorteerr.HasCode(err, vorteerr.CodeRouterHandlerFailure) || vorteerr.HasCode(err, vorteerr.CodeLaneWorkerFailure) {
			text = genericFailure
		}
	}

	r.send(ctx, log, channel.Outbound{
		ConversationID: req.Message.ConversationID,
		Text:           text,
	})
}

func (r *Router) deniedText(cmd *Command, err error) string {
	switch {
	case vorteerr.HasCode(err, vorteerr.CodeRouterGroupOnlyInvalid):
		return "❌ Group only command."
	case vorteerr.HasCode(err, vorteerr.CodeRouterBotAdminDenied):
		return "❌ Bot needs to be admin."
	case cmd.Denied != "":
		return cmd.Denied
	default:
		return "❌ Owner only command."
	}
}

func (r *Router) conflictText(err error) string {
	code := vorteerr.CodeOf(err)
	if text, ok := conflictReplies[code]; ok {
		return text
	}

	kind, _ := vorteerr.FieldsOf(err)["session_kind"].(string)
	var text string
	switch code {
	case game.CodeNoActiveSession:
		text = noSessionReplies[session.Kind(kind)]
	case game.CodeAlreadyActive:
		text = activeSessionReplies[session.Kind(kind)]
	}
	if text == "" {
		return genericFailure
	}
	return strings.ReplaceAll(text, "{prefix}", r.cfg.Prefix)
}

func failureText(cmd *Command) string {
	if cmd.Failure != "" {
		return cmd.Failure
	}
	return genericFailure
}
