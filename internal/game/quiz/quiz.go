// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package quiz implements single-shot multiple-choice questions.
package quiz

import (
	"context"
	"strings"

	"github.com/vorte-dev/vorte/internal/game"
	"github.com/vorte-dev/vorte/internal/game/content"
	"github.com/vorte-dev/vorte/internal/session"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// CodeEmptyAnswer rejects a blank submission without ending the quiz.
const CodeEmptyAnswer vorteerr.Code = "game.quiz.empty_answer"

// State is the quiz session payload.
type State struct {
	Question string
	Choices  []string
	Answer   string
	Active   bool
}

func (s *State) Kind() session.Kind { return session.KindQuiz }

func (s *State) Clone() session.State {
	cp := *s
	cp.Choices = append([]string(nil), s.Choices...)
	return &cp
}

// Result reports the evaluation of an answer.
type Result struct {
	Correct bool
	Answer  string
}

// Engine runs quizzes.
type Engine struct {
	store  session.Store
	bank   []content.Question
	picker content.Picker
}

// New returns an Engine drawing questions uniformly from bank.
func New(store session.Store, bank []content.Question, picker content.Picker) *Engine {
	return &Engine{store: store, bank: bank, picker: picker}
}

// Start opens a quiz and returns the question asked.
func (e *Engine) Start(ctx context.Context, conversationID string) (*content.Question, error) {
	q := content.Pick(e.picker, e.bank)
	st := &State{
		Question: q.Question,
		Choices:  append([]string(nil), q.Choices...),
		Answer:   q.Answer,
		Active:   true,
	}
	if _, err := e.store.Create(ctx, conversationID, st); err != nil {
		return nil, game.FromStore(err, conversationID, session.KindQuiz)
	}
	return &q, nil
}

// Answer evaluates submitted, ignoring case and surrounding whitespace. The
// quiz ends after one attempt whether or not it was correct.
func (e *Engine) Answer(ctx context.Context, conversationID, submitted string) (*Result, error) {
	sess, err := e.store.Get(ctx, conversationID, session.KindQuiz)
	if err != nil {
		return nil, game.FromStore(err, conversationID, session.KindQuiz)
	}
	st, ok := sess.State.(*State)
	if !ok {
		return nil, vorteerr.New(vorteerr.CodeSessionStateInvalid, "unexpected quiz state",
			vorteerr.FieldConversationID(conversationID))
	}
	if !st.Active {
		return nil, game.NoActiveSession(conversationID, session.KindQuiz)
	}
	if strings.TrimSpace(submitted) == "" {
		return nil, vorteerr.New(CodeEmptyAnswer, "answer is empty",
			vorteerr.FieldConversationID(conversationID))
	}

	if err := e.store.Delete(ctx, conversationID, session.KindQuiz); err != nil {
		return nil, err
	}
	return &Result{
		Correct: strings.EqualFold(strings.TrimSpace(submitted), st.Answer),
		Answer:  st.Answer,
	}, nil
}
