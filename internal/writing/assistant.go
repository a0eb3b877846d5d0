// Package writing implements the AI-assisted writing operations: text
// completion, grammar fixing, tone change, translation, and OCR.
package writing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gemkey/internal/providers/anthropic"
)

// Completer is the slice of the LLM client the assistant needs.
type Completer interface {
	CompleteWithRetry(ctx context.Context, systemPrompt string, messages []anthropic.Message, maxRetries int, opts *anthropic.RequestOptions) (*anthropic.Response, error)
}

// Assistant runs single-turn writing operations against a remote model.
type Assistant struct {
	client  Completer
	timeout time.Duration
	retries int
}

func NewAssistant(client Completer, timeout time.Duration) *Assistant {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Assistant{client: client, timeout: timeout, retries: 2}
}

// Complete continues the given text naturally.
func (a *Assistant) Complete(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("nothing to complete")
	}
	system := "Continue the user's text naturally. Reply only with the continuation, without repeating the original text."
	if language != "" {
		system += " Write in " + language + "."
	}
	return a.run(ctx, system, anthropic.Message{Role: "user", Content: text}, 256)
}

// FixGrammar corrects grammar and spelling while preserving meaning.
func (a *Assistant) FixGrammar(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("nothing to fix")
	}
	system := "Fix grammar, spelling, and punctuation in the user's text. Preserve meaning and style. Reply only with the corrected text."
	if language != "" {
		system += " The text is in " + language + "."
	}
	return a.run(ctx, system, anthropic.Message{Role: "user", Content: text}, 1024)
}

// ChangeTone rewrites the text in the requested tone.
func (a *Assistant) ChangeTone(ctx context.Context, text, tone string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("nothing to rewrite")
	}
	if strings.TrimSpace(tone) == "" {
		return "", errors.New("no tone given")
	}
	system := fmt.Sprintf("Rewrite the user's text in a %s tone. Keep the meaning. Reply only with the rewritten text.", tone)
	return a.run(ctx, system, anthropic.Message{Role: "user", Content: text}, 1024)
}

// Translate translates the text into the target language.
func (a *Assistant) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("nothing to translate")
	}
	if strings.TrimSpace(targetLanguage) == "" {
		return "", errors.New("no target language given")
	}
	system := fmt.Sprintf("Translate the user's text into %s. Reply only with the translation.", targetLanguage)
	return a.run(ctx, system, anthropic.Message{Role: "user", Content: text}, 1024)
}

// ExtractText performs OCR on a base64-encoded image.
func (a *Assistant) ExtractText(ctx context.Context, imageBase64, mediaType string) (string, error) {
	if strings.TrimSpace(imageBase64) == "" {
		return "", errors.New("no image data")
	}
	if mediaType == "" {
		mediaType = "image/png"
	}
	system := "Extract all text visible in the image. Reply only with the extracted text, preserving line breaks. Reply with an empty string if there is no text."
	msg := anthropic.Message{
		Role: "user",
		Blocks: []anthropic.ContentBlock{
			anthropic.ImageBlock(mediaType, imageBase64),
			anthropic.TextBlock("Extract the text from this image."),
		},
	}
	return a.run(ctx, system, msg, 2048)
}

func (a *Assistant) run(ctx context.Context, system string, msg anthropic.Message, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CompleteWithRetry(ctx, system, []anthropic.Message{msg}, a.retries, &anthropic.RequestOptions{MaxTokens: maxTokens})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
