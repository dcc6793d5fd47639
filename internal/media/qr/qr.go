// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package qr renders text as QR code PNG images.
package qr

import (
	"strings"

	"github.com/skip2/go-qrcode"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

const (
	DefaultSize     = 300
	DefaultMaxChars = 500

	captionChars = 50
)

// Code is a rendered QR image.
type Code struct {
	PNG []byte
	// Text is the encoded content after truncation.
	Text string
}

// Caption describes the code using at most the first 50 characters of its
// content.
func (c *Code) Caption() string {
	runes := []rune(c.Text)
	if len(runes) <= captionChars {
		return "QR Code for: " + c.Text
	}
	return "QR Code for: " + string(runes[:captionChars]) + "..."
}

// Generator renders QR codes of a fixed pixel size.
type Generator struct {
	size     int
	maxChars int
}

// New returns a Generator. Non-positive arguments select the defaults.
func New(size, maxChars int) *Generator {
	if size <= 0 {
		size = DefaultSize
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Generator{size: size, maxChars: maxChars}
}

// Generate encodes text, truncated to the generator's character limit, at
// medium error correction.
func (g *Generator) Generate(text string) (*Code, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, vorteerr.New(vorteerr.CodeMediaRequestInvalid, "qr text is empty")
	}
	if runes := []rune(text); len(runes) > g.maxChars {
		text = string(runes[:g.maxChars])
	}

	png, err := qrcode.Encode(text, qrcode.Medium, g.size)
	if err != nil {
		return nil, vorteerr.Wrap(err, vorteerr.CodeMediaRequestInvalid, "encoding qr code")
	}
	return &Code{PNG: png, Text: text}, nil
}
