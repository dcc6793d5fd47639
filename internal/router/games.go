// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vorte-dev/vorte/internal/game"
	"github.com/vorte-dev/vorte/internal/game/hangman"
	"github.com/vorte-dev/vorte/internal/game/tictactoe"
)

func (r *Router) gameCommands() []*Command {
	return []*Command{
		{
			Name:       "tictactoe",
			Aliases:    []string{"ttt"},
			Category:   CategoryGames,
			Usage:      "@user",
			Summary:    "Start Tic Tac Toe",
			Hint:       "Usage: {prefix}ttt @user (mention the user you challenge)",
			Args:       RequiredMention,
			Serialized: true,
			Handler:    r.handleTicTacToe,
		},
		{
			Name:       "tttmove",
			Category:   CategoryGames,
			Usage:      "<1-9>",
			Summary:    "Make move",
			Serialized: true,
			Handler:    r.handleTicTacToeMove,
		},
		{
			Name:       "hangmanstart",
			Category:   CategoryGames,
			Summary:    "Start Hangman",
			Serialized: true,
			Handler:    r.handleHangmanStart,
		},
		{
			Name:       "hangmanguess",
			Category:   CategoryGames,
			Usage:      "<letter>",
			Summary:    "Guess letter",
			Hint:       "Usage: {prefix}hangmanguess <single letter>",
			Serialized: true,
			Handler:    r.handleHangmanGuess,
		},
		{
			Name:       "quizstart",
			Category:   CategoryGames,
			Summary:    "Start quiz",
			Serialized: true,
			Handler:    r.handleQuizStart,
		},
		{
			Name:       "quizanswer",
			Category:   CategoryGames,
			Usage:      "<answer>",
			Summary:    "Answer quiz",
			Serialized: true,
			Handler:    r.handleQuizAnswer,
		},
	}
}

func mention(id string) string {
	return "@" + NormalizeID(id)
}

func (r *Router) handleTicTacToe(ctx context.Context, req *Request) error {
	res, err := r.tictactoe.Start(ctx, req.Message.ConversationID, req.Message.SenderID, req.Mention())
	if err != nil {
		return err
	}

	x, o := res.Players[0], res.Players[1]
	text := fmt.Sprintf("🎮 *Tic Tac Toe Started!*\n\nPlayer X: %s\nPlayer O: %s\n\nCurrent board:\n%s\n\nIt's X's turn! Use %stttmove <1-9>",
		mention(x), mention(o), tictactoe.Render(res.Board), r.cfg.Prefix)
	return r.reply(ctx, req, text, x, o)
}

func (r *Router) handleTicTacToeMove(ctx context.Context, req *Request) error {
	// A missing or non-numeric cell becomes 0 so the engine reports it after
	// checking that a game exists and it is the sender's turn.
	cell := 0
	if len(req.Args) > 0 {
		if n, err := strconv.Atoi(req.Args[0]); err == nil {
			cell = n
		}
	}

	res, err := r.tictactoe.Move(ctx, req.Message.ConversationID, req.Message.SenderID, cell)
	if err != nil {
		return err
	}

	board := tictactoe.Render(res.Board)
	switch res.Outcome {
	case game.Won:
		text := fmt.Sprintf("🎉 *Game Over!*\n\n%s\n\nWinner: %s (%s)", board, mention(res.Winner), res.WinnerMark)
		return r.reply(ctx, req, text, res.Winner)
	case game.Draw:
		return r.reply(ctx, req, "🤝 *Draw!*\n\n"+board)
	default:
		mark := tictactoe.X
		if res.Turn == res.Players[1] {
			mark = tictactoe.O
		}
		text := fmt.Sprintf("Next move:\n\n%s\n\nTurn: %s (%s)", board, mention(res.Turn), mark)
		return r.reply(ctx, req, text, res.Turn)
	}
}

func (r *Router) handleHangmanStart(ctx context.Context, req *Request) error {
	res, err := r.hangman.Start(ctx, req.Message.ConversationID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("🎯 *Hangman Started!*\n\nWord: %s\nTries left: %d\n\nGuess a letter with: %shangmanguess <letter>",
		hangman.Spaced(res.Revealed), res.TriesRemaining, r.cfg.Prefix)
	return r.reply(ctx, req, text)
}

func (r *Router) handleHangmanGuess(ctx context.Context, req *Request) error {
	res, err := r.hangman.Guess(ctx, req.Message.ConversationID, req.ArgString)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case game.Won:
		return r.reply(ctx, req, fmt.Sprintf("🎉 *You Won!*\n\nThe word was: *%s*\nTries left: %d",
			res.Secret, res.TriesRemaining))
	case game.Lost:
		return r.reply(ctx, req, fmt.Sprintf("💀 *Game Over!*\n\nThe word was: *%s*\n\nBetter luck next time!",
			res.Secret))
	default:
		guessed := make([]string, len(res.Guessed))
		for i, g := range res.Guessed {
			guessed[i] = string(g)
		}
		return r.reply(ctx, req, fmt.Sprintf("%s\n\nWord: %s\nTries left: %d\nGuessed: %s",
			hangman.Gallows(res.Stage), hangman.Spaced(res.Revealed), res.TriesRemaining, strings.Join(guessed, ", ")))
	}
}

func (r *Router) handleQuizStart(ctx context.Context, req *Request) error {
	q, err := r.quiz.Start(ctx, req.Message.ConversationID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("🧠 *Quiz Started!*\n\nQuestion: %s\n\nChoices: %s\n\nAnswer with: %squizanswer <answer>",
		q.Question, strings.Join(q.Choices, ", "), r.cfg.Prefix)
	return r.reply(ctx, req, text)
}

func (r *Router) handleQuizAnswer(ctx context.Context, req *Request) error {
	res, err := r.quiz.Answer(ctx, req.Message.ConversationID, req.ArgString)
	if err != nil {
		return err
	}

	if res.Correct {
		return r.reply(ctx, req, "✅ *Correct!* The answer is "+res.Answer)
	}
	return r.reply(ctx, req, "❌ *Wrong!* The correct answer is "+res.Answer)
}
