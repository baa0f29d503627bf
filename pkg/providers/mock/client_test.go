package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnillm/omnillm/pkg/llm"
)

func TestChatCompletion(t *testing.T) {
	ctx := context.Background()
	ask := func(content string) llm.ChatRequest {
		return llm.ChatRequest{
			Model:    "mock-model",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: content}},
		}
	}

	t.Run("echoes_the_last_message_by_default", func(t *testing.T) {
		client, err := NewClient(llm.ClientConfig{})
		require.NoError(t, err)

		text, err := client.ChatCompletion(ctx, ask("hello"))
		require.NoError(t, err)
		assert.Equal(t, "mock response to: hello", text)
	})

	t.Run("scripted_responses_are_returned_in_order_and_the_last_repeats", func(t *testing.T) {
		client, err := NewClient(llm.ClientConfig{})
		require.NoError(t, err)
		client.WithResponses("one", "two")

		for _, want := range []string{"one", "two", "two"} {
			text, err := client.ChatCompletion(ctx, ask("q"))
			require.NoError(t, err)
			assert.Equal(t, want, text)
		}
	})

	t.Run("scripted_error_fails_every_call", func(t *testing.T) {
		client, err := NewClient(llm.ClientConfig{})
		require.NoError(t, err)
		client.WithError(llm.NewProviderError(500, "boom"))

		_, err = client.ChatCompletion(ctx, ask("q"))
		require.Error(t, err)
		assert.True(t, llm.IsProvider(err))
	})

	t.Run("records_every_request", func(t *testing.T) {
		client, err := NewClient(llm.ClientConfig{})
		require.NoError(t, err)

		_, _ = client.ChatCompletion(ctx, ask("first"))
		_, _ = client.ChatCompletion(ctx, ask("second"))

		calls := client.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, "first", calls[0].Messages[0].Content)
		assert.Equal(t, "second", calls[1].Messages[0].Content)
	})

	t.Run("validates_messages_like_a_real_adapter", func(t *testing.T) {
		client, err := NewClient(llm.ClientConfig{})
		require.NoError(t, err)

		_, err = client.ChatCompletion(ctx, llm.ChatRequest{Model: "mock-model"})
		require.Error(t, err)
		assert.True(t, llm.IsValidation(err))
		assert.Empty(t, client.Calls())
	})

	t.Run("close_is_observable", func(t *testing.T) {
		client, err := NewClient(llm.ClientConfig{})
		require.NoError(t, err)
		assert.False(t, client.Closed())
		require.NoError(t, client.Close())
		assert.True(t, client.Closed())
	})
}
