package rival

import (
	"context"
	"unicode/utf8"
)

const (
	// DefaultMaxTokens is the token ceiling applied to extraction input.
	DefaultMaxTokens = 15000

	// charsPerToken is a conservative characters-per-token estimate used
	// to derive a character budget from the token ceiling.
	charsPerToken = 4

	// ElisionMarker is inserted where interior content was removed.
	ElisionMarker = "[... content truncated ...]"
)

// Truncator reduces text to fit a model's token budget. When content
// exceeds the budget it keeps the head and tail of the document: pricing
// pages tend to put identity and hero content at the top and fine print
// and FAQs at the bottom, so interior content is the safest to drop.
type Truncator struct {
	Counter TokenCounter

	// MaxTokens is the token ceiling. Defaults to DefaultMaxTokens.
	MaxTokens int
}

// Truncate returns text unchanged when its estimated token count is at or
// under the ceiling. Above the ceiling it cuts to an approximate character
// budget, preserving the first and last 40% of the budget with an elision
// marker in between.
func (t *Truncator) Truncate(ctx context.Context, text string) (string, error) {
	maxTokens := t.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	count, err := t.Counter.CountTokens(ctx, text)
	if err != nil {
		return "", err
	}
	if count <= maxTokens {
		return text, nil
	}

	charBudget := maxTokens * charsPerToken
	if len(text) <= charBudget {
		// Over the token ceiling but within the character budget: the
		// overage is a tokenizer estimation artifact, not a true size
		// overage. A prefix cut to the budget leaves the text whole.
		return truncRight(text, charBudget), nil
	}

	keep := int(float64(charBudget) * 0.4)
	head := truncRight(text, keep)
	tail := truncLeft(text, keep)
	return head + "\n\n" + ElisionMarker + "\n\n" + tail, nil
}

// truncRight returns the longest prefix of s at most n bytes long that
// ends on a rune boundary.
func truncRight(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// truncLeft returns the longest suffix of s at most n bytes long that
// starts on a rune boundary.
func truncLeft(s string, n int) string {
	if n >= len(s) {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}
