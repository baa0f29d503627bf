// Package openai provides an OpenAI client implementation.
//
// This provider implements the llm.Client interface on top of the
// official community SDK (github.com/sashabaranov/go-openai). It
// supports custom base URLs for OpenAI-compatible gateways and
// organization-scoped keys.
package openai
