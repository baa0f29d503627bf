package factory

import (
	"github.com/omnillm/omnillm/pkg/llm"
	"github.com/omnillm/omnillm/pkg/providers/aliyun"
	"github.com/omnillm/omnillm/pkg/providers/anthropic"
	"github.com/omnillm/omnillm/pkg/providers/baidu"
	"github.com/omnillm/omnillm/pkg/providers/bedrock"
	"github.com/omnillm/omnillm/pkg/providers/cohere"
	"github.com/omnillm/omnillm/pkg/providers/deepseek"
	"github.com/omnillm/omnillm/pkg/providers/gemini"
	"github.com/omnillm/omnillm/pkg/providers/mock"
	"github.com/omnillm/omnillm/pkg/providers/ollama"
	"github.com/omnillm/omnillm/pkg/providers/openai"
	"github.com/omnillm/omnillm/pkg/providers/openaicompat"
	"github.com/omnillm/omnillm/pkg/providers/openrouter"
	"github.com/omnillm/omnillm/pkg/providers/replicate"
	"github.com/omnillm/omnillm/pkg/providers/spark"
	"github.com/omnillm/omnillm/pkg/providers/zhipu"
)

func init() {
	// Register the OpenAI provider
	RegisterProvider("openai", func(config llm.ClientConfig) (llm.Client, error) {
		return openai.NewClient(config)
	})

	// Register the Anthropic provider
	RegisterProvider("anthropic", func(config llm.ClientConfig) (llm.Client, error) {
		return anthropic.NewClient(config)
	})

	// Register the Gemini provider
	RegisterProvider("gemini", func(config llm.ClientConfig) (llm.Client, error) {
		return gemini.NewClient(config)
	})

	// Register the ollama provider
	RegisterProvider("ollama", func(config llm.ClientConfig) (llm.Client, error) {
		return ollama.NewClient(config)
	})

	// Register the deepseek provider
	RegisterProvider("deepseek", func(config llm.ClientConfig) (llm.Client, error) {
		return deepseek.NewClient(config)
	})

	// Register the openrouter provider
	RegisterProvider("openrouter", func(config llm.ClientConfig) (llm.Client, error) {
		return openrouter.NewClient(config)
	})

	// Register the bedrock provider
	RegisterProvider("bedrock", func(config llm.ClientConfig) (llm.Client, error) {
		return bedrock.NewClient(config)
	})

	// Register the cohere provider
	RegisterProvider("cohere", func(config llm.ClientConfig) (llm.Client, error) {
		return cohere.NewClient(config)
	})

	// Register the replicate provider
	RegisterProvider("replicate", func(config llm.ClientConfig) (llm.Client, error) {
		return replicate.NewClient(config)
	})

	// Register the aliyun provider
	RegisterProvider("aliyun", func(config llm.ClientConfig) (llm.Client, error) {
		return aliyun.NewClient(config)
	})

	// Register the baidu provider
	RegisterProvider("baidu", func(config llm.ClientConfig) (llm.Client, error) {
		return baidu.NewClient(config)
	})

	// Register the zhipu provider
	RegisterProvider("zhipu", func(config llm.ClientConfig) (llm.Client, error) {
		return zhipu.NewClient(config)
	})

	// Register the spark provider
	RegisterProvider("spark", func(config llm.ClientConfig) (llm.Client, error) {
		return spark.NewClient(config)
	})

	// Register the OpenAI-compatible dialects
	RegisterProvider("meta", func(config llm.ClientConfig) (llm.Client, error) {
		return openaicompat.NewMeta(config)
	})
	RegisterProvider("moonshot", func(config llm.ClientConfig) (llm.Client, error) {
		return openaicompat.NewMoonshot(config)
	})
	RegisterProvider("minimax", func(config llm.ClientConfig) (llm.Client, error) {
		return openaicompat.NewMinimax(config)
	})
	RegisterProvider("sensechat", func(config llm.ClientConfig) (llm.Client, error) {
		return openaicompat.NewSenseChat(config)
	})
	RegisterProvider("xunfei", func(config llm.ClientConfig) (llm.Client, error) {
		return openaicompat.NewXunfei(config)
	})
	RegisterProvider("siliconflow", func(config llm.ClientConfig) (llm.Client, error) {
		return openaicompat.NewSiliconFlow(config)
	})
	RegisterProvider("custom", func(config llm.ClientConfig) (llm.Client, error) {
		return openaicompat.NewCustom(config)
	})

	// Register the mock provider
	RegisterProvider("mock", func(config llm.ClientConfig) (llm.Client, error) {
		return mock.NewClient(config)
	})

	// Alternate spellings and localized display names.
	RegisterAlias("google", "gemini")
	RegisterAlias("mocked", "mock")
	RegisterAlias("阿里云", "aliyun")
	RegisterAlias("智谱", "zhipu")
	RegisterAlias("硅基流动", "siliconflow")
	RegisterAlias("其他", "custom")
}
