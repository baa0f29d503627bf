package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnillm/omnillm/pkg/llm"
)

func capturingServer(t *testing.T, reply string) (*httptest.Server, *map[string]any) {
	t.Helper()
	captured := map[string]any{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured["path"] = r.URL.Path
		captured["auth"] = r.Header.Get("Authorization")
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		for k, v := range body {
			captured[k] = v
		}
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

const okReply = `{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`

func TestNew(t *testing.T) {
	t.Run("rejects_missing_api_key", func(t *testing.T) {
		_, err := NewMoonshot(llm.ClientConfig{})
		require.Error(t, err)
		assert.True(t, llm.IsAuth(err))
	})

	t.Run("custom_gateway_requires_base_url", func(t *testing.T) {
		_, err := NewCustom(llm.ClientConfig{APIKey: "key"})
		require.Error(t, err)
		assert.True(t, llm.IsValidation(err))
		assert.Contains(t, err.Error(), "base URL")
	})
}

func TestChatCompletion(t *testing.T) {
	t.Run("applies_vendor_defaults_when_caller_is_silent", func(t *testing.T) {
		server, captured := capturingServer(t, okReply)
		client, err := NewMoonshot(llm.ClientConfig{APIKey: "sk-moon", BaseURL: server.URL})
		require.NoError(t, err)

		text, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "moonshot-v1-8k",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "hello", text)

		got := *captured
		assert.Equal(t, "/v1/chat/completions", got["path"])
		assert.Equal(t, "Bearer sk-moon", got["auth"])
		assert.Equal(t, 0.7, got["temperature"])
		assert.Equal(t, 0.9, got["top_p"])
		assert.Equal(t, false, got["stream"])
		assert.NotContains(t, got, "max_tokens")
	})

	t.Run("caller_params_override_defaults", func(t *testing.T) {
		server, captured := capturingServer(t, okReply)
		client, err := NewMinimax(llm.ClientConfig{APIKey: "key", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "abab6.5-chat",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
			Params: llm.Params{
				Temperature: llm.Float(0.2),
				MaxTokens:   llm.Int(64),
			},
		})
		require.NoError(t, err)

		got := *captured
		assert.Equal(t, 0.2, got["temperature"])
		assert.Equal(t, float64(64), got["max_tokens"])
		assert.Equal(t, 0.9, got["top_p"])
	})

	t.Run("base_url_with_v1_suffix_is_not_doubled", func(t *testing.T) {
		server, captured := capturingServer(t, okReply)
		client, err := NewSiliconFlow(llm.ClientConfig{APIKey: "key", BaseURL: server.URL + "/v1"})
		require.NoError(t, err)

		_, err = client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "deepseek-ai/DeepSeek-V2.5",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "/v1/chat/completions", (*captured)["path"])
	})

	t.Run("strict_dialect_fails_on_missing_choices", func(t *testing.T) {
		server, _ := capturingServer(t, `{"choices":[]}`)
		client, err := NewMeta(llm.ClientConfig{APIKey: "key", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "llama-3-70b",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.Error(t, err)
		assert.True(t, llm.IsParse(err))
	})

	t.Run("lenient_dialect_degrades_to_empty_string", func(t *testing.T) {
		server, _ := capturingServer(t, `{"choices":[]}`)
		client, err := NewSenseChat(llm.ClientConfig{APIKey: "key", BaseURL: server.URL})
		require.NoError(t, err)

		text, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "SenseChat-5",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("error_envelope_in_200_body_is_surfaced", func(t *testing.T) {
		server, _ := capturingServer(t, `{"error":{"message":"insufficient balance"}}`)
		client, err := NewXunfei(llm.ClientConfig{APIKey: "key", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "generalv3.5",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.Error(t, err)
		assert.True(t, llm.IsProvider(err))
		assert.Contains(t, err.Error(), "insufficient balance")
	})

	t.Run("unknown_model_reported_distinctly", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Model does not exist: nope"}`))
		}))
		t.Cleanup(server.Close)

		client, err := NewCustom(llm.ClientConfig{APIKey: "key", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "nope",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.Error(t, err)
		var llmErr *llm.Error
		require.ErrorAs(t, err, &llmErr)
		assert.Equal(t, "model_not_found", llmErr.Code)
		assert.Equal(t, http.StatusNotFound, llmErr.StatusCode)
	})

	t.Run("custom_gateway_forwards_only_caller_params", func(t *testing.T) {
		server, captured := capturingServer(t, okReply)
		client, err := NewCustom(llm.ClientConfig{APIKey: "key", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "local-model",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.NoError(t, err)

		got := *captured
		assert.NotContains(t, got, "temperature")
		assert.NotContains(t, got, "top_p")
		assert.NotContains(t, got, "max_tokens")
		assert.Equal(t, false, got["stream"])
	})
}
