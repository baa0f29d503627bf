package zhipu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnillm/omnillm/pkg/llm"
)

func TestBearerToken(t *testing.T) {
	t.Run("mints_signed_jwt_from_split_key", func(t *testing.T) {
		client, err := NewClient(llm.ClientConfig{APIKey: "my-id.my-secret"})
		require.NoError(t, err)
		fixed := time.Unix(1700000000, 0)
		client.now = func() time.Time { return fixed }

		tokenString := client.bearerToken()

		token, err := jwt.Parse(tokenString, func(tk *jwt.Token) (any, error) {
			assert.Equal(t, jwt.SigningMethodHS256, tk.Method)
			return []byte("my-secret"), nil
		}, jwt.WithTimeFunc(func() time.Time { return fixed }))
		require.NoError(t, err)
		require.True(t, token.Valid)
		assert.Equal(t, "SIGN", token.Header["sign_type"])

		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)
		assert.Equal(t, "my-id", claims["api_key"])
		assert.Equal(t, float64(1700000000), claims["timestamp"])
		assert.Equal(t, float64(1700003600), claims["exp"])
		assert.NotEmpty(t, claims["uuid"])
	})

	t.Run("each_token_gets_a_fresh_uuid", func(t *testing.T) {
		client, err := NewClient(llm.ClientConfig{APIKey: "id.secret"})
		require.NoError(t, err)
		assert.NotEqual(t, client.bearerToken(), client.bearerToken())
	})

	t.Run("unsplittable_key_is_used_verbatim", func(t *testing.T) {
		client, err := NewClient(llm.ClientConfig{APIKey: "plain-key"})
		require.NoError(t, err)
		assert.Equal(t, "plain-key", client.bearerToken())
	})
}

func TestEndpointFor(t *testing.T) {
	client, err := NewClient(llm.ClientConfig{APIKey: "id.secret"})
	require.NoError(t, err)

	assert.Equal(t,
		"https://open.bigmodel.cn/api/paas/v3/model-api/chatglm_turbo/sse-invoke",
		client.endpointFor("chatglm_turbo"))
	assert.Equal(t,
		"https://open.bigmodel.cn/api/paas/v4/chat/completions",
		client.endpointFor("glm-4"))
}

func TestChatCompletion(t *testing.T) {
	t.Run("extracts_v4_nested_choices", func(t *testing.T) {
		var authHeader string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader = r.Header.Get("Authorization")
			assert.Equal(t, "/api/paas/v4/chat/completions", r.URL.Path)
			_, _ = w.Write([]byte(`{"data":{"choices":[{"message":{"role":"assistant","content":"nested"}}]}}`))
		}))
		defer server.Close()

		client, err := NewClient(llm.ClientConfig{APIKey: "id.secret", BaseURL: server.URL})
		require.NoError(t, err)

		text, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "glm-4",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "nested", text)
		assert.True(t, strings.HasPrefix(authHeader, "Bearer "))
	})

	t.Run("falls_back_to_top_level_choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"flat"}}]}`))
		}))
		defer server.Close()

		client, err := NewClient(llm.ClientConfig{APIKey: "id.secret", BaseURL: server.URL})
		require.NoError(t, err)

		text, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "glm-4",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "flat", text)
	})

	t.Run("in_body_error_code_fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"code": 1002, "msg": "invalid key"})
		}))
		defer server.Close()

		client, err := NewClient(llm.ClientConfig{APIKey: "id.secret", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model:    "glm-4",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.Error(t, err)
		assert.True(t, llm.IsProvider(err))
		assert.Contains(t, err.Error(), "invalid key")
	})

	t.Run("system_role_is_demoted_to_user", func(t *testing.T) {
		var got wireRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
		}))
		defer server.Close()

		client, err := NewClient(llm.ClientConfig{APIKey: "id.secret", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.ChatCompletion(context.Background(), llm.ChatRequest{
			Model: "glm-4",
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: "be brief"},
				{Role: llm.RoleUser, Content: "hi"},
			},
		})
		require.NoError(t, err)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "user", got.Messages[0].Role)
	})
}
