// Package openrouter provides an OpenRouter client implementation
// built on the github.com/revrost/go-openrouter SDK, giving access to
// many hosted models behind one key.
package openrouter
