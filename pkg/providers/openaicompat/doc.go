// Package openaicompat implements the llm.Client interface for vendors
// that expose an OpenAI-compatible chat completions endpoint: Meta,
// Moonshot, Minimax, SenseChat, Xunfei, SiliconFlow, and arbitrary
// user-supplied gateways. Each vendor contributes an Options value
// describing its base URL, default knobs, and how strictly its
// response envelope is enforced; the request and response plumbing is
// shared.
package openaicompat
