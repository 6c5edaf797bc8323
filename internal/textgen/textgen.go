// Package textgen defines the text-generation backends used to write outfit
// suggestions.
package textgen

import (
	"context"
	"errors"
)

// DefaultMaxTokens caps generated output when Options.MaxTokens is unset.
const DefaultMaxTokens = 150

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// Options controls a single generation. Every backend requests exactly one
// candidate.
type Options struct {
	MaxTokens int
}

// Tokens returns MaxTokens or DefaultMaxTokens when unset.
func (o Options) Tokens() int {
	if o.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return o.MaxTokens
}

type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}
