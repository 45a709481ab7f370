package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestOpenRouterClient_Chat(t *testing.T) {
	t.Run("successful chat", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Method != "POST" {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected authorization: %s", auth)
			}

			resp := map[string]any{
				"id":    "test-id",
				"model": "anthropic/claude-sonnet-4",
				"choices": []map[string]any{
					{
						"message": map[string]any{
							"role":    "assistant",
							"content": "Hello! How can I help you?",
						},
						"finish_reason": "stop",
					},
				},
				"usage": map[string]int{
					"prompt_tokens":     10,
					"completion_tokens": 8,
					"total_tokens":      18,
				},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "Hello"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success {
			t.Error("expected Success = true")
		}
		if result.Content != "Hello! How can I help you?" {
			t.Errorf("Content = %q", result.Content)
		}
		if result.TotalTokens != 18 {
			t.Errorf("TotalTokens = %d, want 18", result.TotalTokens)
		}
	})

	t.Run("retries on server error", func(t *testing.T) {
		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": "recovered"}},
				},
			})
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{
			APIKey:     "test-key",
			BaseURL:    server.URL,
			RetryDelay: time.Millisecond,
		})

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "Hello"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Content != "recovered" {
			t.Errorf("Content = %q, want %q", result.Content, "recovered")
		}
		if result.Attempts != 2 {
			t.Errorf("Attempts = %d, want 2", result.Attempts)
		}
	})

	t.Run("structured output parsed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": `{"bias_instances":[]}`}},
				},
			})
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages:       []Message{{Role: "user", Content: "analyze"}},
			ResponseFormat: &ResponseFormat{Type: "json_schema"},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if len(result.ParsedJSON) == 0 {
			t.Error("expected ParsedJSON to be set")
		}
	})

	t.Run("non-retryable error surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"bad request"}}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "Hello"}},
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if result.Success {
			t.Error("expected Success = false")
		}
	})
}
