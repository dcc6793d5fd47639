// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package tictactoe implements two-player tic-tac-toe on a conversation
// session. The initiator plays X and moves first.
package tictactoe

import (
	"context"
	"strconv"
	"strings"

	"github.com/vorte-dev/vorte/internal/game"
	"github.com/vorte-dev/vorte/internal/session"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

const (
	CodeSelfChallenge vorteerr.Code = "game.tictactoe.self_challenge"
	CodeNotYourTurn   vorteerr.Code = "game.tictactoe.not_your_turn"
	CodeInvalidCell   vorteerr.Code = "game.tictactoe.invalid_cell"
	CodeCellTaken     vorteerr.Code = "game.tictactoe.cell_taken"
)

// Mark is the content of one cell.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Board holds cells 1..9 at indexes 0..8, row by row.
type Board [9]Mark

// Full reports whether every cell is marked.
func (b Board) Full() bool {
	for _, m := range b {
		if m == Empty {
			return false
		}
	}
	return true
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Winner returns the mark holding three in a row, or Empty.
func (b Board) Winner() Mark {
	for _, l := range lines {
		if m := b[l[0]]; m != Empty && b[l[1]] == m && b[l[2]] == m {
			return m
		}
	}
	return Empty
}

// Render draws the board with cell numbers in empty cells.
func Render(b Board) string {
	var sb strings.Builder
	for r := range 3 {
		if r > 0 {
			sb.WriteString("\n---+---+---\n")
		}
		for c := range 3 {
			i := r*3 + c
			if c > 0 {
				sb.WriteString(" |")
			}
			sb.WriteByte(' ')
			if b[i] == Empty {
				sb.WriteString(strconv.Itoa(i + 1))
			} else {
				sb.WriteString(b[i].String())
			}
		}
	}
	return sb.String()
}

// State is the tic-tac-toe session payload.
type State struct {
	Board   Board
	Players [2]string
	Turn    string
}

func (s *State) Kind() session.Kind { return session.KindTicTacToe }

func (s *State) Clone() session.State {
	cp := *s
	return &cp
}

// MarkOf returns the mark played by participant, or Empty for outsiders.
func (s *State) MarkOf(participant string) Mark {
	switch participant {
	case s.Players[0]:
		return X
	case s.Players[1]:
		return O
	default:
		return Empty
	}
}

func (s *State) other(participant string) string {
	if participant == s.Players[0] {
		return s.Players[1]
	}
	return s.Players[0]
}

// Result describes the game after Start or Move.
type Result struct {
	Board      Board
	Players    [2]string
	Outcome    game.Outcome
	Winner     string
	WinnerMark Mark
	// Turn is the participant to move next; empty once the game is over.
	Turn string
}

// Engine runs tic-tac-toe games.
type Engine struct {
	store session.Store
}

// New returns an Engine that keeps its games in store.
func New(store session.Store) *Engine {
	return &Engine{store: store}
}

// Start opens a game between initiator (X) and opponent (O).
func (e *Engine) Start(ctx context.Context, conversationID, initiator, opponent string) (*Result, error) {
	if initiator == opponent {
		return nil, vorteerr.New(CodeSelfChallenge, "cannot challenge yourself",
			vorteerr.FieldConversationID(conversationID),
			vorteerr.FieldParticipantID(initiator))
	}

	st := &State{
		Players: [2]string{initiator, opponent},
		Turn:    initiator,
	}
	if _, err := e.store.Create(ctx, conversationID, st); err != nil {
		return nil, game.FromStore(err, conversationID, session.KindTicTacToe)
	}
	return &Result{Board: st.Board, Players: st.Players, Turn: st.Turn}, nil
}

// Move marks cell (1..9) for actor. Errors are checked in order: no game,
// not the actor's turn, cell out of range, cell taken.
func (e *Engine) Move(ctx context.Context, conversationID, actor string, cell int) (*Result, error) {
	sess, err := e.store.Get(ctx, conversationID, session.KindTicTacToe)
	if err != nil {
		return nil, game.FromStore(err, conversationID, session.KindTicTacToe)
	}
	st, ok := sess.State.(*State)
	if !ok {
		return nil, vorteerr.New(vorteerr.CodeSessionStateInvalid, "unexpected tictactoe state",
			vorteerr.FieldConversationID(conversationID))
	}

	if actor != st.Turn {
		return nil, vorteerr.New(CodeNotYourTurn, "not your turn",
			vorteerr.FieldConversationID(conversationID),
			vorteerr.FieldParticipantID(actor))
	}
	if cell < 1 || cell > 9 {
		return nil, vorteerr.Errorf(CodeInvalidCell, "cell %d is outside 1-9", cell)
	}
	if st.Board[cell-1] != Empty {
		return nil, vorteerr.Errorf(CodeCellTaken, "cell %d is already taken", cell)
	}

	mark := st.MarkOf(actor)
	st.Board[cell-1] = mark
	res := &Result{Board: st.Board, Players: st.Players}

	switch {
	case st.Board.Winner() != Empty:
		res.Outcome = game.Won
		res.Winner = actor
		res.WinnerMark = mark
	case st.Board.Full():
		res.Outcome = game.Draw
	}

	if res.Outcome.Terminal() {
		if err := e.store.Delete(ctx, conversationID, session.KindTicTacToe); err != nil {
			return nil, err
		}
		return res, nil
	}

	st.Turn = st.other(actor)
	if _, err := e.store.Replace(ctx, conversationID, st); err != nil {
		return nil, game.FromStore(err, conversationID, session.KindTicTacToe)
	}
	res.Turn = st.Turn
	return res, nil
}
