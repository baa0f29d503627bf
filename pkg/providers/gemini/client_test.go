package gemini

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/omnillm/omnillm/pkg/llm"
)

func TestConvertMessages(t *testing.T) {
	t.Run("assistant_turns_become_model_contents", func(t *testing.T) {
		contents := convertMessages([]llm.Message{
			{Role: llm.RoleSystem, Content: "be terse"},
			{Role: llm.RoleUser, Content: "question"},
			{Role: llm.RoleAssistant, Content: "answer"},
		}, nil)

		require.Len(t, contents, 3)
		assert.Equal(t, genai.RoleUser, contents[0].Role)
		assert.Equal(t, genai.RoleUser, contents[1].Role)
		assert.Equal(t, genai.RoleModel, contents[2].Role)
		assert.Equal(t, "question", contents[1].Parts[0].Text)
	})

	t.Run("attachments_ride_on_every_user_turn", func(t *testing.T) {
		contents := convertMessages([]llm.Message{
			{Role: llm.RoleSystem, Content: "be precise"},
			{Role: llm.RoleUser, Content: "first"},
			{Role: llm.RoleAssistant, Content: "sure"},
			{Role: llm.RoleUser, Content: "describe this"},
		}, []string{"https://example.com/cat.jpg"})

		require.Len(t, contents, 4)
		// System turns become user contents but carry no files.
		assert.Len(t, contents[0].Parts, 1)
		assert.Len(t, contents[2].Parts, 1)

		for _, i := range []int{1, 3} {
			require.Len(t, contents[i].Parts, 2, "content %d", i)
			part := contents[i].Parts[1]
			require.NotNil(t, part.FileData)
			assert.Equal(t, "https://example.com/cat.jpg", part.FileData.FileURI)
			assert.Equal(t, "image/jpeg", part.FileData.MIMEType)
		}
	})

	t.Run("attachments_without_user_turn_are_dropped", func(t *testing.T) {
		contents := convertMessages([]llm.Message{
			{Role: llm.RoleAssistant, Content: "hello"},
		}, []string{"https://example.com/cat.jpg"})

		require.Len(t, contents, 1)
		assert.Len(t, contents[0].Parts, 1)
	})
}

func TestMimeTypeFor(t *testing.T) {
	assert.Equal(t, "image/jpeg", mimeTypeFor("photo.jpg"))
	assert.Equal(t, "image/png", mimeTypeFor("diagram.png"))
	assert.Equal(t, "image/png", mimeTypeFor("https://example.com/blob"))
}

func TestConvertParams(t *testing.T) {
	t.Run("unset_knobs_stay_nil", func(t *testing.T) {
		config := convertParams(llm.Params{})
		assert.Nil(t, config.Temperature)
		assert.Nil(t, config.TopP)
		assert.Nil(t, config.TopK)
		assert.Equal(t, int32(1024), config.MaxOutputTokens)
	})

	t.Run("set_knobs_are_converted", func(t *testing.T) {
		config := convertParams(llm.Params{
			Temperature: llm.Float(0.3),
			TopP:        llm.Float(0.8),
			TopK:        llm.Int(40),
			MaxTokens:   llm.Int(2048),
			Stop:        []string{"STOP"},
		})
		require.NotNil(t, config.Temperature)
		assert.InDelta(t, 0.3, float64(*config.Temperature), 1e-6)
		require.NotNil(t, config.TopK)
		assert.InDelta(t, 40, float64(*config.TopK), 1e-6)
		assert.Equal(t, int32(2048), config.MaxOutputTokens)
		assert.Equal(t, []string{"STOP"}, config.StopSequences)
	})
}

func TestExtractText(t *testing.T) {
	t.Run("concatenates_text_parts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{
						genai.NewPartFromText("hello "),
						genai.NewPartFromText("world"),
					},
				},
			}},
		}
		assert.Equal(t, "hello world", extractText(resp))
	})

	t.Run("nil_and_empty_responses_yield_empty_string", func(t *testing.T) {
		assert.Empty(t, extractText(nil))
		assert.Empty(t, extractText(&genai.GenerateContentResponse{}))
		assert.Empty(t, extractText(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{}},
		}))
	})
}

func TestConvertError(t *testing.T) {
	t.Run("api_key_failures_are_authentication_errors", func(t *testing.T) {
		err := convertError(errors.New("API key not valid"))
		assert.True(t, llm.IsAuth(err))
	})

	t.Run("timeouts_keep_a_distinct_code", func(t *testing.T) {
		err := convertError(errors.New("context deadline exceeded"))
		var llmErr *llm.Error
		require.ErrorAs(t, err, &llmErr)
		assert.Equal(t, "timeout_error", llmErr.Code)
		assert.True(t, llm.IsProvider(err))
	})

	t.Run("everything_else_is_a_provider_error", func(t *testing.T) {
		err := convertError(errors.New("internal server error"))
		assert.True(t, llm.IsProvider(err))
	})
}
