package replicate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnillm/omnillm/pkg/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(llm.ClientConfig{APIKey: "r8-key", BaseURL: server.URL})
	require.NoError(t, err)
	client.pollInterval = time.Millisecond
	return client
}

func TestChatCompletion(t *testing.T) {
	t.Run("creates_prediction_and_polls_to_success", func(t *testing.T) {
		var polls int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodPost:
				assert.Equal(t, "/v1/predictions", r.URL.Path)
				assert.Equal(t, "Token r8-key", r.Header.Get("Authorization"))

				var got predictionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				assert.Equal(t, "meta/llama-3-70b", got.Version)
				assert.Equal(t, 0.7, got.Input.Temperature)
				assert.Equal(t, 1024, got.Input.MaxTokens)

				w.WriteHeader(http.StatusCreated)
				_ = json.NewEncoder(w).Encode(prediction{ID: "pred-1", Status: "starting"})

			case r.Method == http.MethodGet:
				assert.Equal(t, "/v1/predictions/pred-1", r.URL.Path)
				if atomic.AddInt32(&polls, 1) < 3 {
					_ = json.NewEncoder(w).Encode(prediction{ID: "pred-1", Status: "processing"})
					return
				}
				_, _ = w.Write([]byte(`{"id":"pred-1","status":"succeeded","output":["all done"]}`))
			}
		})

		text, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "meta/llama-3-70b",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "all done", text)
		assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(3))
	})

	t.Run("failed_prediction_surfaces_vendor_error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusCreated)
				_ = json.NewEncoder(w).Encode(prediction{ID: "pred-2", Status: "starting"})
				return
			}
			_, _ = w.Write([]byte(`{"id":"pred-2","status":"failed","error":"CUDA out of memory"}`))
		})

		_, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "meta/llama-3-70b",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.Error(t, err)
		assert.True(t, llm.IsProvider(err))
		assert.Contains(t, err.Error(), "CUDA out of memory")
	})

	t.Run("creation_must_return_201", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(prediction{ID: "pred-3"})
		})

		_, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "meta/llama-3-70b",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.Error(t, err)
		assert.True(t, llm.IsProvider(err))
	})
}

func TestExtractOutput(t *testing.T) {
	t.Run("list_output_returns_first_entry", func(t *testing.T) {
		text, err := extractOutput(json.RawMessage(`["first","second"]`))
		require.NoError(t, err)
		assert.Equal(t, "first", text)
	})

	t.Run("string_output_passes_through", func(t *testing.T) {
		text, err := extractOutput(json.RawMessage(`"plain"`))
		require.NoError(t, err)
		assert.Equal(t, "plain", text)
	})

	t.Run("empty_output_is_empty", func(t *testing.T) {
		text, err := extractOutput(nil)
		require.NoError(t, err)
		assert.Empty(t, text)
	})
}
