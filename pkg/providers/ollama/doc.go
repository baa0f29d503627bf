// Package ollama provides an Ollama client implementation.
//
// This provider implements the llm.Client interface against Ollama's
// local chat API. The client connects to an instance on
// localhost:11434 by default, but can be pointed at any Ollama
// endpoint via BaseURL.
package ollama
