package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{
		APIKey:     "test-key",
		APIBaseURL: srv.URL,
		Model:      "test-model",
		Timeout:    2 * time.Second,
	})
	return srv, client
}

func TestCompleteSendsMessagesRequest(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey, gotVersion string
	var gotBody map[string]any
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{
			"content": [{"type": "text", "text": "hello "}, {"type": "text", "text": "world"}],
			"model": "test-model",
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 3}
		}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	})

	resp, err := client.Complete(context.Background(), "be brief", []Message{
		{Role: "user", Content: "hi"},
	}, &RequestOptions{MaxTokens: 64})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/messages" {
		t.Fatalf("expected /messages endpoint, got %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if gotVersion != "2023-06-01" {
		t.Fatalf("unexpected anthropic-version: %q", gotVersion)
	}
	if gotBody["system"] != "be brief" {
		t.Fatalf("system prompt not sent: %v", gotBody["system"])
	}
	if gotBody["max_tokens"] != float64(64) {
		t.Fatalf("max_tokens not sent: %v", gotBody["max_tokens"])
	}

	if resp.Content != "hello world" {
		t.Fatalf("text blocks not concatenated: %q", resp.Content)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 3 {
		t.Fatalf("usage not parsed: %+v", resp)
	}
	if resp.WasTruncated() {
		t.Fatalf("end_turn must not report truncation")
	}
}

func TestCompleteEncodesBlocksAsArray(t *testing.T) {
	t.Parallel()

	var raw struct {
		Messages []struct {
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Write([]byte(`{"content": [{"type": "text", "text": "ok"}]}`))
	})

	_, err := client.Complete(context.Background(), "", []Message{
		{Role: "user", Blocks: []ContentBlock{
			ImageBlock("image/png", "aGVsbG8="),
			TextBlock("what does it say"),
		}},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content := string(raw.Messages[0].Content)
	if !strings.HasPrefix(content, "[") {
		t.Fatalf("block content should encode as a JSON array: %s", content)
	}
	if !strings.Contains(content, `"media_type":"image/png"`) {
		t.Fatalf("image source not encoded: %s", content)
	}
}

func TestCompleteMissingAPIKey(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{})
	if _, err := client.Complete(context.Background(), "", nil, nil); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestCompleteParsesErrorEnvelope(t *testing.T) {
	t.Parallel()

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type": "error", "error": {"type": "rate_limit_error", "message": "slow down"}}`))
	})

	_, err := client.Complete(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, nil)
	if err == nil {
		t.Fatalf("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "rate_limit_error") || !strings.Contains(err.Error(), "slow down") {
		t.Fatalf("error envelope not surfaced: %v", err)
	}
}

func TestCompleteTruncationReported(t *testing.T) {
	t.Parallel()

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": [{"type": "text", "text": "partial"}], "stop_reason": "max_tokens"}`))
	})

	resp, err := client.Complete(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.WasTruncated() {
		t.Fatalf("max_tokens stop reason should report truncation")
	}
}

func TestCompleteWithRetrySucceedsAfterFailure(t *testing.T) {
	t.Parallel()

	var calls int
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"type": "error", "error": {"type": "api_error", "message": "transient"}}`))
			return
		}
		w.Write([]byte(`{"content": [{"type": "text", "text": "recovered"}]}`))
	})

	resp, err := client.CompleteWithRetry(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "recovered" {
		t.Fatalf("expected reply from second attempt, got %q", resp.Content)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestCompleteWithRetryHonorsCancellation(t *testing.T) {
	t.Parallel()

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.CompleteWithRetry(ctx, "", []Message{{Role: "user", Content: "hi"}}, 5, nil); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}
