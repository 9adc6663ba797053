// Package tiktoken counts tokens using OpenAI's BPE encodings.
package tiktoken

import (
	"context"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rivalhq/rival"
)

// fallbackEncoding is used when the model has no registered encoding.
// cl100k_base covers the GPT-4 family and is a reasonable estimate for
// OpenAI-compatible endpoints serving other models.
const fallbackEncoding = "cl100k_base"

var _ rival.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens with the encoding of a specific model.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter creates a TokenCounter for the given model, falling
// back to a generic BPE encoding when the model is unrecognized.
func NewTokenCounter(model string) (*TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	return &TokenCounter{enc: enc}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return len(tc.enc.Encode(text, nil, nil)), nil
}
