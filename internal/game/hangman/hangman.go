// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package hangman implements single-word hangman on a conversation session.
package hangman

import (
	"context"
	"strings"

	"github.com/vorte-dev/vorte/internal/game"
	"github.com/vorte-dev/vorte/internal/game/content"
	"github.com/vorte-dev/vorte/internal/session"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

const (
	CodeInvalidLetter  vorteerr.Code = "game.hangman.invalid_letter"
	CodeAlreadyGuessed vorteerr.Code = "game.hangman.already_guessed"
)

// MaxTries is the number of misses allowed before the game is lost.
const MaxTries = 6

// Blank marks an unrevealed slot.
const Blank = '_'

// State is the hangman session payload.
type State struct {
	Secret         string
	Revealed       []rune
	TriesRemaining int
	// Guessed holds letters in the order they were guessed.
	Guessed []rune
}

func (s *State) Kind() session.Kind { return session.KindHangman }

func (s *State) Clone() session.State {
	cp := *s
	cp.Revealed = append([]rune(nil), s.Revealed...)
	cp.Guessed = append([]rune(nil), s.Guessed...)
	return &cp
}

func (s *State) guessed(r rune) bool {
	for _, g := range s.Guessed {
		if g == r {
			return true
		}
	}
	return false
}

func (s *State) solved() bool {
	return string(s.Revealed) == s.Secret
}

// Result describes the game after Start or Guess.
type Result struct {
	Outcome        game.Outcome
	Revealed       string
	TriesRemaining int
	Guessed        []rune
	// Stage selects the gallows drawing, 0 (empty) to 6 (complete).
	Stage int
	// Secret is set once the game is over.
	Secret string
}

func resultOf(st *State, outcome game.Outcome) *Result {
	res := &Result{
		Outcome:        outcome,
		Revealed:       string(st.Revealed),
		TriesRemaining: st.TriesRemaining,
		Guessed:        append([]rune(nil), st.Guessed...),
		Stage:          MaxTries - st.TriesRemaining,
	}
	if outcome.Terminal() {
		res.Secret = st.Secret
	}
	return res
}

// Engine runs hangman games.
type Engine struct {
	store  session.Store
	words  []string
	picker content.Picker
}

// New returns an Engine drawing secrets uniformly from words.
func New(store session.Store, words []string, picker content.Picker) *Engine {
	return &Engine{store: store, words: words, picker: picker}
}

// Start opens a game with a randomly chosen word.
func (e *Engine) Start(ctx context.Context, conversationID string) (*Result, error) {
	secret := content.Pick(e.picker, e.words)
	st := &State{
		Secret:         secret,
		Revealed:       []rune(strings.Repeat(string(Blank), len([]rune(secret)))),
		TriesRemaining: MaxTries,
	}
	if _, err := e.store.Create(ctx, conversationID, st); err != nil {
		return nil, game.FromStore(err, conversationID, session.KindHangman)
	}
	return resultOf(st, game.InProgress), nil
}

// Guess applies one letter. The letter is lower-cased before checking.
func (e *Engine) Guess(ctx context.Context, conversationID, letter string) (*Result, error) {
	sess, err := e.store.Get(ctx, conversationID, session.KindHangman)
	if err != nil {
		return nil, game.FromStore(err, conversationID, session.KindHangman)
	}
	st, ok := sess.State.(*State)
	if !ok {
		return nil, vorteerr.New(vorteerr.CodeSessionStateInvalid, "unexpected hangman state",
			vorteerr.FieldConversationID(conversationID))
	}

	r, ok := parseLetter(letter)
	if !ok {
		return nil, vorteerr.Errorf(CodeInvalidLetter, "%q is not a single letter a-z", letter)
	}
	if st.guessed(r) {
		return nil, vorteerr.Errorf(CodeAlreadyGuessed, "letter %q already guessed", r)
	}

	st.Guessed = append(st.Guessed, r)
	hit := false
	for i, c := range []rune(st.Secret) {
		if c == r {
			st.Revealed[i] = r
			hit = true
		}
	}
	if !hit {
		st.TriesRemaining--
	}

	outcome := game.InProgress
	switch {
	case st.solved():
		outcome = game.Won
	case st.TriesRemaining <= 0:
		outcome = game.Lost
	}

	if outcome.Terminal() {
		if err := e.store.Delete(ctx, conversationID, session.KindHangman); err != nil {
			return nil, err
		}
		return resultOf(st, outcome), nil
	}

	if _, err := e.store.Replace(ctx, conversationID, st); err != nil {
		return nil, game.FromStore(err, conversationID, session.KindHangman)
	}
	return resultOf(st, outcome), nil
}

func parseLetter(s string) (rune, bool) {
	runes := []rune(strings.ToLower(s))
	if len(runes) != 1 || runes[0] < 'a' || runes[0] > 'z' {
		return 0, false
	}
	return runes[0], true
}

var gallows = [MaxTries + 1]string{
	"  ____\n  |  |\n     |\n     |\n     |\n     |\n_____|___",
	"  ____\n  |  |\n  O  |\n     |\n     |\n     |\n_____|___",
	"  ____\n  |  |\n  O  |\n  |  |\n     |\n     |\n_____|___",
	"  ____\n  |  |\n  O  |\n /|  |\n     |\n     |\n_____|___",
	"  ____\n  |  |\n  O  |\n /|\\ |\n     |\n     |\n_____|___",
	"  ____\n  |  |\n  O  |\n /|\\ |\n /   |\n     |\n_____|___",
	"  ____\n  |  |\n  O  |\n /|\\ |\n / \\ |\n     |\n_____|___",
}

// Gallows returns the drawing for stage, clamped to 0..6.
func Gallows(stage int) string {
	return gallows[max(0, min(stage, MaxTries))]
}

// Spaced renders revealed slots separated by spaces, e.g. "_ a _".
func Spaced(revealed string) string {
	runes := []rune(revealed)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}
