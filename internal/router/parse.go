// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router

import "strings"

// Invocation is a parsed command line.
type Invocation struct {
	// Name is the lower-cased command token.
	Name string
	Args []string
	// ArgString is Args joined by single spaces.
	ArgString string
}

// Parse extracts a command from text. Text is a command only when, after
// trimming, it starts with prefix and has a token after it.
func Parse(prefix, text string) (Invocation, bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return Invocation{}, false
	}

	fields := strings.Fields(text[len(prefix):])
	if len(fields) == 0 {
		return Invocation{}, false
	}

	args := fields[1:]
	return Invocation{
		Name:      strings.ToLower(fields[0]),
		Args:      args,
		ArgString: strings.Join(args, " "),
	}, true
}
