package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletionAdapter_Generate(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "llama-3.3-70b-versatile",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Madame, Monsieur"}}]
		}`))
	}))
	defer server.Close()

	adapter := NewChatCompletionAdapter(ProviderSpec{
		Name:    "groq",
		BaseURL: server.URL + "/",
		Models:  []string{"llama-3.3-70b-versatile"},
	}, "gsk-test")

	text, err := adapter.Generate(context.Background(), Prompt{System: "sys", User: "usr"}, "llama-3.3-70b-versatile")
	require.NoError(t, err)
	assert.Equal(t, "Madame, Monsieur", text)
	assert.Equal(t, "llama-3.3-70b-versatile", received["model"])

	messages, ok := received["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestChatCompletionAdapter_RateLimitError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit reached", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	adapter := NewChatCompletionAdapter(ProviderSpec{Name: "openai", BaseURL: server.URL + "/", Models: []string{"gpt-4o-mini"}}, "sk-test")

	_, err := adapter.Generate(context.Background(), Prompt{System: "s", User: "u"}, "gpt-4o-mini")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, 1, calls, "SDK retries must be disabled")
}

func TestClaudeAdapter_Generate(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-sonnet-latest",
			"content": [{"type": "text", "text": "Madame, "}, {"type": "text", "text": "Monsieur"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	adapter := NewClaudeAdapter(ProviderSpec{Name: "claude", BaseURL: server.URL, Models: []string{"claude-3-5-sonnet-latest"}}, "sk-ant-test")

	text, err := adapter.Generate(context.Background(), Prompt{System: "sys", User: "usr"}, "claude-3-5-sonnet-latest")
	require.NoError(t, err)
	assert.Equal(t, "Madame, Monsieur", text)
	assert.Equal(t, "claude-3-5-sonnet-latest", received["model"])
	assert.EqualValues(t, defaultMaxTokens, received["max_tokens"])
	assert.NotNil(t, received["system"])
}

func TestClaudeAdapter_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "api_error", "message": "boom"}}`))
	}))
	defer server.Close()

	adapter := NewClaudeAdapter(ProviderSpec{Name: "claude", BaseURL: server.URL, Models: []string{"m"}}, "k")
	_, err := adapter.Generate(context.Background(), Prompt{System: "s", User: "u"}, "m")
	require.Error(t, err)
	assert.False(t, IsRateLimited(err))
}
