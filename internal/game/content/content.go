// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package content loads the word lists, quiz bank, and fun-command tables.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var builtin []byte

// Question is one quiz entry.
type Question struct {
	Question string   `yaml:"question"`
	Choices  []string `yaml:"choices"`
	Answer   string   `yaml:"answer"`
}

// Bank is the full content table.
type Bank struct {
	Words     []string   `yaml:"words"`
	Questions []Question `yaml:"questions"`
	Quotes    []string   `yaml:"quotes"`
	Jokes     []string   `yaml:"jokes"`
	Truths    []string   `yaml:"truths"`
	Dares     []string   `yaml:"dares"`
}

var loadDefault = sync.OnceValues(func() (*Bank, error) {
	return Parse(builtin)
})

// Default returns the built-in bank.
func Default() *Bank {
	b, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("content: built-in bank is invalid: %v", err))
	}
	return b
}

// LoadFile reads a bank from a YAML file on disk.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, vorteerr.Wrapf(err, vorteerr.CodeConfigLoadReadFailure, "reading content bank %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML bank. Hangman words are lower-cased.
func Parse(data []byte) (*Bank, error) {
	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, vorteerr.Wrap(err, vorteerr.CodeConfigParseInvalidFormat, "parsing content bank")
	}
	for i, w := range b.Words {
		b.Words[i] = strings.ToLower(strings.TrimSpace(w))
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks that every table is usable by the games.
func (b *Bank) Validate() error {
	var errs []error
	if len(b.Words) == 0 {
		errs = append(errs, fmt.Errorf("words must not be empty"))
	}
	for _, w := range b.Words {
		if w == "" || strings.IndexFunc(w, func(r rune) bool { return r < 'a' || r > 'z' }) >= 0 {
			errs = append(errs, fmt.Errorf("word %q must contain only letters a-z", w))
		}
	}
	if len(b.Questions) == 0 {
		errs = append(errs, fmt.Errorf("questions must not be empty"))
	}
	for _, q := range b.Questions {
		if q.Question == "" || q.Answer == "" {
			errs = append(errs, fmt.Errorf("question %q needs text and an answer", q.Question))
			continue
		}
		if !slices.Contains(q.Choices, q.Answer) {
			errs = append(errs, fmt.Errorf("question %q: answer %q is not among its choices", q.Question, q.Answer))
		}
	}
	for name, list := range map[string][]string{
		"quotes": b.Quotes,
		"jokes":  b.Jokes,
		"truths": b.Truths,
		"dares":  b.Dares,
	} {
		if len(list) == 0 {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		}
	}
	if len(errs) > 0 {
		return vorteerr.Wrap(errors.Join(errs...), vorteerr.CodeConfigValidateInvalidValue, "invalid content bank")
	}
	return nil
}
