package openaicompat

import "github.com/omnillm/omnillm/pkg/llm"

// NewMeta creates a client for Meta's Llama API.
func NewMeta(config llm.ClientConfig) (*Client, error) {
	return New(config, Options{
		Provider:       "meta",
		DefaultBaseURL: "https://llama.meta.ai/v1",
		Defaults: llm.Params{
			Temperature: llm.Float(0.7),
			TopP:        llm.Float(1.0),
			MaxTokens:   llm.Int(1000),
		},
		Strict: true,
	})
}

// NewMoonshot creates a client for Moonshot AI.
func NewMoonshot(config llm.ClientConfig) (*Client, error) {
	return New(config, Options{
		Provider:       "moonshot",
		DefaultBaseURL: "https://api.moonshot.cn",
		Defaults: llm.Params{
			Temperature: llm.Float(0.7),
			TopP:        llm.Float(0.9),
		},
		SendStream: true,
		Strict:     true,
	})
}

// NewMinimax creates a client for Minimax.
func NewMinimax(config llm.ClientConfig) (*Client, error) {
	return New(config, minimaxFamily("minimax", "https://api.minimax.chat"))
}

// NewSenseChat creates a client for SenseTime's SenseChat.
func NewSenseChat(config llm.ClientConfig) (*Client, error) {
	return New(config, minimaxFamily("sensechat", "https://api.sensetime.com"))
}

// NewXunfei creates a client for iFlytek's OpenAI-compatible gateway.
func NewXunfei(config llm.ClientConfig) (*Client, error) {
	return New(config, minimaxFamily("xunfei", "https://api.xf-yun.com"))
}

// minimaxFamily is the lenient dialect shared by Minimax, SenseChat
// and Xunfei: errors arrive inside a 200 body, and a response without
// text degrades to an empty string instead of failing.
func minimaxFamily(provider, baseURL string) Options {
	return Options{
		Provider:       provider,
		DefaultBaseURL: baseURL,
		Defaults: llm.Params{
			Temperature: llm.Float(0.7),
			TopP:        llm.Float(0.9),
			MaxTokens:   llm.Int(1024),
		},
		SendStream:    true,
		ErrorEnvelope: true,
	}
}

// NewCustom creates a client for a user-supplied OpenAI-compatible
// gateway. The base URL is mandatory and knobs are forwarded only when
// the caller sets them.
func NewCustom(config llm.ClientConfig) (*Client, error) {
	return New(config, Options{
		Provider:       "custom",
		RequireBaseURL: true,
		SendStream:     true,
		Strict:         true,
	})
}

// NewSiliconFlow creates a client for SiliconFlow.
func NewSiliconFlow(config llm.ClientConfig) (*Client, error) {
	return New(config, Options{
		Provider:       "siliconflow",
		DefaultBaseURL: "https://api.siliconflow.cn",
		SendStream:     true,
		Strict:         true,
	})
}
