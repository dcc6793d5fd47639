// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/vorte-dev/vorte/internal/mathexpr"
)

func (r *Router) toolCommands() []*Command {
	return []*Command{
		{
			Name:     "math",
			Category: CategoryTools,
			Usage:    "<equation>",
			Summary:  "Calculate",
			Hint:     "Example: {prefix}math 5+5*2",
			Args:     RequiredText,
			Failure:  "❌ Invalid equation.",
			Handler:  r.handleMath,
		},
		{
			Name:     "echo",
			Category: CategoryTools,
			Usage:    "<text>",
			Summary:  "Echo text",
			Args:     RequiredText,
			Handler:  r.handleEcho,
		},
		{
			Name:     "say",
			Category: CategoryTools,
			Usage:    "<text>",
			Summary:  "Bot says text",
			Args:     RequiredText,
			Handler:  r.handleEcho,
		},
		{
			Name:     "reverse",
			Category: CategoryTools,
			Usage:    "<text>",
			Summary:  "Reverse text",
			Args:     RequiredText,
			Handler:  r.handleReverse,
		},
		{
			Name:     "countchars",
			Category: CategoryTools,
			Usage:    "<text>",
			Summary:  "Count characters",
			Args:     RequiredText,
			Handler:  r.handleCountChars,
		},
	}
}

func (r *Router) handleMath(ctx context.Context, req *Request) error {
	v, err := mathexpr.Eval(req.ArgString)
	if err != nil {
		return err
	}
	return r.reply(ctx, req, fmt.Sprintf("🧮 %s = *%s*", req.ArgString, mathexpr.Format(v)))
}

func (r *Router) handleEcho(ctx context.Context, req *Request) error {
	return r.reply(ctx, req, req.ArgString)
}

func (r *Router) handleReverse(ctx context.Context, req *Request) error {
	runes := []rune(req.ArgString)
	slices.Reverse(runes)
	return r.reply(ctx, req, string(runes))
}

func (r *Router) handleCountChars(ctx context.Context, req *Request) error {
	text := fmt.Sprintf("📊 Text Analysis:\n• Characters: %d\n• Words: %d",
		utf8.RuneCountInString(req.ArgString), len(strings.Fields(req.ArgString)))
	return r.reply(ctx, req, text)
}
