// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package quiz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorte-dev/vorte/internal/game"
	"github.com/vorte-dev/vorte/internal/game/content"
	"github.com/vorte-dev/vorte/internal/game/quiz"
	"github.com/vorte-dev/vorte/internal/session"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

const chat = "chat-1"

func newEngine() *quiz.Engine {
	return quiz.New(session.NewMemoryStore(), content.Default().Questions, content.FixedPicker(0))
}

func TestStart(t *testing.T) {
	e := newEngine()

	q, err := e.Start(context.Background(), chat)
	require.NoError(t, err)
	assert.Equal(t, "What is the capital of France?", q.Question)
	assert.Equal(t, []string{"London", "Berlin", "Paris", "Madrid"}, q.Choices)

	_, err = e.Start(context.Background(), chat)
	assert.True(t, game.IsAlreadyActive(err))
}

func TestAnswerIsCaseAndSpaceInsensitive(t *testing.T) {
	for _, in := range []string{"Paris", " paris ", "PARIS", "\tpArIs\n"} {
		e := newEngine()
		_, err := e.Start(context.Background(), chat)
		require.NoError(t, err)

		res, err := e.Answer(context.Background(), chat, in)
		require.NoError(t, err)
		assert.True(t, res.Correct, "input %q", in)
		assert.Equal(t, "Paris", res.Answer)

		_, err = e.Answer(context.Background(), chat, in)
		assert.True(t, game.IsNoActiveSession(err), "quiz is single-shot")
	}
}

func TestWrongAnswerEndsQuiz(t *testing.T) {
	e := newEngine()
	_, err := e.Start(context.Background(), chat)
	require.NoError(t, err)

	res, err := e.Answer(context.Background(), chat, "Paris, France")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "Paris", res.Answer)

	_, err = e.Answer(context.Background(), chat, "Paris")
	require.Error(t, err)
	assert.True(t, vorteerr.IsSessionConflict(err))
}

func TestAnswerWithoutQuiz(t *testing.T) {
	_, err := newEngine().Answer(context.Background(), chat, "7")
	assert.True(t, game.IsNoActiveSession(err))

	_, err = newEngine().Answer(context.Background(), chat, "")
	assert.True(t, game.IsNoActiveSession(err), "missing quiz wins over empty answer")
}

func TestEmptyAnswerKeepsQuiz(t *testing.T) {
	e := newEngine()
	_, err := e.Start(context.Background(), chat)
	require.NoError(t, err)

	_, err = e.Answer(context.Background(), chat, "  ")
	assert.Equal(t, quiz.CodeEmptyAnswer, vorteerr.CodeOf(err))

	res, err := e.Answer(context.Background(), chat, "Paris")
	require.NoError(t, err)
	assert.True(t, res.Correct)
}

func TestQuizzesArePerConversation(t *testing.T) {
	e := newEngine()
	_, err := e.Start(context.Background(), "chat-a")
	require.NoError(t, err)
	_, err = e.Start(context.Background(), "chat-b")
	require.NoError(t, err)

	_, err = e.Answer(context.Background(), "chat-a", "london")
	require.NoError(t, err)

	res, err := e.Answer(context.Background(), "chat-b", "paris")
	require.NoError(t, err)
	assert.True(t, res.Correct)
}
