package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnillm/omnillm/pkg/llm"
)

func TestCanonical(t *testing.T) {
	t.Run("resolves_registered_names_case_insensitively", func(t *testing.T) {
		for _, name := range []string{"openai", "OpenAI", "  OPENAI  "} {
			canonical, ok := Canonical(name)
			assert.True(t, ok, name)
			assert.Equal(t, "openai", canonical)
		}
	})

	t.Run("resolves_aliases", func(t *testing.T) {
		cases := map[string]string{
			"google": "gemini",
			"mocked": "mock",
			"阿里云":    "aliyun",
			"智谱":     "zhipu",
			"硅基流动":   "siliconflow",
			"其他":     "custom",
		}
		for alias, want := range cases {
			canonical, ok := Canonical(alias)
			assert.True(t, ok, alias)
			assert.Equal(t, want, canonical)
		}
	})

	t.Run("unknown_names_resolve_to_false", func(t *testing.T) {
		_, ok := Canonical("does-not-exist")
		assert.False(t, ok)
	})
}

func TestCreateClient(t *testing.T) {
	t.Run("creates_a_client_for_a_registered_provider", func(t *testing.T) {
		client, err := New().CreateClient(llm.ClientConfig{Provider: "mock"})
		require.NoError(t, err)
		defer func() { _ = client.Close() }()
		assert.Equal(t, "mock", client.Provider())
	})

	t.Run("aliases_create_the_canonical_client", func(t *testing.T) {
		client, err := New().CreateClient(llm.ClientConfig{Provider: "mocked"})
		require.NoError(t, err)
		defer func() { _ = client.Close() }()
		assert.Equal(t, "mock", client.Provider())
	})

	t.Run("missing_provider_is_a_validation_error", func(t *testing.T) {
		_, err := New().CreateClient(llm.ClientConfig{})
		require.Error(t, err)
		assert.True(t, llm.IsValidation(err))
	})

	t.Run("unknown_provider_is_unsupported", func(t *testing.T) {
		_, err := New().CreateClient(llm.ClientConfig{Provider: "acme-llm"})
		require.Error(t, err)
		assert.True(t, llm.IsUnsupportedProvider(err))
		assert.Contains(t, err.Error(), "acme-llm")
	})

	t.Run("constructor_validation_propagates", func(t *testing.T) {
		_, err := New().CreateClient(llm.ClientConfig{Provider: "anthropic"})
		require.Error(t, err)
		assert.True(t, llm.IsAuth(err))
	})
}

func TestListProviders(t *testing.T) {
	names := ListProviders()
	assert.GreaterOrEqual(t, len(names), 21)
	assert.Contains(t, names, "openai")
	assert.Contains(t, names, "spark")
	assert.Contains(t, names, "siliconflow")
	assert.NotContains(t, names, "google")
}
