// Package anthropic provides an Anthropic client implementation.
//
// This provider implements the llm.Client interface against the
// Messages API. System messages are hoisted out of the conversation
// into the request's top-level system field, as the API requires.
package anthropic
