package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config controls the Anthropic messages API client.
type Config struct {
	APIKey     string
	APIBaseURL string
	Model      string
	Timeout    time.Duration
}

// Client calls the Anthropic messages API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Message is one conversation turn. Either Content or Blocks is set.
type Message struct {
	Role    string
	Content string
	Blocks  []ContentBlock
}

// ContentBlock is a text or image part of a message.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	Source *ImageSource `json:"source,omitempty"`
}

// ImageSource carries base64 image data for vision requests.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// ImageBlock builds a base64 image content block.
func ImageBlock(mediaType, data string) ContentBlock {
	return ContentBlock{
		Type:   "image",
		Source: &ImageSource{Type: "base64", MediaType: mediaType, Data: data},
	}
}

// RequestOptions configures one completion request.
type RequestOptions struct {
	MaxTokens int
}

// Response is the text outcome of one completion.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	StopReason   string
	Duration     time.Duration
}

// WasTruncated reports whether the response hit the token limit.
func (r *Response) WasTruncated() bool {
	return r.StopReason == "max_tokens"
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type apiResponse struct {
	ID      string `json:"id"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one request and returns the concatenated text content.
func (c *Client) Complete(ctx context.Context, systemPrompt string, messages []Message, opts *RequestOptions) (*Response, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is not configured")
	}

	start := time.Now()

	maxTokens := 1024
	if opts != nil && opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}

	encoded, err := encodeMessages(messages)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(apiRequest{
		Model:     c.cfg.Model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  encoded,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.APIBaseURL, "/") + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope apiError
		if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s - %s", resp.StatusCode, envelope.Error.Type, envelope.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(payload))
	}

	var parsed apiResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	var content strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &Response{
		Content:      content.String(),
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
		Model:        parsed.Model,
		StopReason:   parsed.StopReason,
		Duration:     time.Since(start),
	}, nil
}

// CompleteWithRetry attempts completion with exponential backoff.
func (c *Client) CompleteWithRetry(ctx context.Context, systemPrompt string, messages []Message, maxRetries int, opts *RequestOptions) (*Response, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		resp, err := c.Complete(ctx, systemPrompt, messages, opts)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		backoff := time.Duration(1<<uint(i)) * time.Second
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func encodeMessages(messages []Message) ([]apiMessage, error) {
	encoded := make([]apiMessage, len(messages))
	for i, m := range messages {
		var content any
		if len(m.Blocks) > 0 {
			content = m.Blocks
		} else {
			content = m.Content
		}
		raw, err := json.Marshal(content)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message %d: %w", i, err)
		}
		encoded[i] = apiMessage{Role: m.Role, Content: raw}
	}
	return encoded, nil
}
