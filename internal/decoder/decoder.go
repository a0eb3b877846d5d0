// Package decoder turns a gesture's key-crossing string into the most
// likely intended word by consulting a remote text-completion model. The
// call is opaque: no local inference happens here.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gemkey/internal/providers/anthropic"
)

const systemPrompt = `You decode swipe-keyboard gestures. The user dragged a finger across a keyboard; you receive the sequence of letters the finger crossed, in order, with consecutive duplicates removed. Reply with the single most likely intended word and nothing else. Use the surrounding text and language for disambiguation when provided.`

// Completer is the slice of the LLM client the decoder needs.
type Completer interface {
	CompleteWithRetry(ctx context.Context, systemPrompt string, messages []anthropic.Message, maxRetries int, opts *anthropic.RequestOptions) (*anthropic.Response, error)
}

// Trace decodes crossing strings via a remote model.
type Trace struct {
	client  Completer
	timeout time.Duration
	retries int
}

func NewTrace(client Completer, timeout time.Duration) *Trace {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Trace{client: client, timeout: timeout, retries: 2}
}

// Decode returns the decoded word for the crossing string. The first
// whitespace-delimited token of the model reply is used; an empty reply
// is an error so the caller can apply its deterministic fallback.
func (t *Trace) Decode(ctx context.Context, crossing, textContext, language string) (string, error) {
	if strings.TrimSpace(crossing) == "" {
		return "", errors.New("empty crossing string")
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.client.CompleteWithRetry(ctx, systemPrompt, []anthropic.Message{
		{Role: "user", Content: buildPrompt(crossing, textContext, language)},
	}, t.retries, &anthropic.RequestOptions{MaxTokens: 16})
	if err != nil {
		return "", fmt.Errorf("trace decode failed: %w", err)
	}

	word := firstToken(resp.Content)
	if word == "" {
		return "", errors.New("decoder returned no word")
	}
	return strings.ToLower(word), nil
}

func buildPrompt(crossing, textContext, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Crossed letters: %s\n", crossing)
	if language != "" {
		fmt.Fprintf(&b, "Language: %s\n", language)
	}
	if textContext != "" {
		fmt.Fprintf(&b, "Text before the cursor: %q\n", textContext)
	}
	b.WriteString("Intended word:")
	return b.String()
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], `"'.,!?`)
}
