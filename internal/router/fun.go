// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router

import (
	"context"
	"fmt"

	"github.com/vorte-dev/vorte/internal/game/content"
)

func (r *Router) funCommands() []*Command {
	return []*Command{
		{Name: "joke", Category: CategoryFun, Summary: "Random joke", Handler: r.handleJoke},
		{Name: "quote", Category: CategoryFun, Summary: "Inspirational quote", Handler: r.handleQuote},
		{Name: "truth", Category: CategoryFun, Summary: "Truth question", Handler: r.handleTruth},
		{Name: "dare", Category: CategoryFun, Summary: "Dare challenge", Handler: r.handleDare},
		{Name: "dice", Category: CategoryFun, Summary: "Roll dice", Handler: r.handleDice},
		{Name: "coin", Category: CategoryFun, Summary: "Flip coin", Handler: r.handleCoin},
		{Name: "guess", Category: CategoryFun, Summary: "Guess number", Handler: r.handleGuess},
	}
}

func (r *Router) handleJoke(ctx context.Context, req *Request) error {
	return r.reply(ctx, req, "😂 "+content.Pick(r.picker, r.bank.Jokes))
}

func (r *Router) handleQuote(ctx context.Context, req *Request) error {
	return r.reply(ctx, req, `💬 "`+content.Pick(r.picker, r.bank.Quotes)+`"`)
}

func (r *Router) handleTruth(ctx context.Context, req *Request) error {
	return r.reply(ctx, req, "🤔 Truth: "+content.Pick(r.picker, r.bank.Truths))
}

func (r *Router) handleDare(ctx context.Context, req *Request) error {
	return r.reply(ctx, req, "😈 Dare: "+content.Pick(r.picker, r.bank.Dares))
}

func (r *Router) handleDice(ctx context.Context, req *Request) error {
	return r.reply(ctx, req, fmt.Sprintf("🎲 You rolled: %d", r.picker.IntN(6)+1))
}

func (r *Router) handleCoin(ctx context.Context, req *Request) error {
	if r.picker.IntN(2) == 0 {
		return r.reply(ctx, req, "🪙 Heads!")
	}
	return r.reply(ctx, req, "🪙 Tails!")
}

func (r *Router) handleGuess(ctx context.Context, req *Request) error {
	n := r.picker.IntN(10) + 1
	return r.reply(ctx, req, fmt.Sprintf("🎲 I'm thinking of a number between 1-10...\nIt's *%d*!", n))
}
