// Package llm defines the canonical chat-completion model shared by all
// provider adapters: the Client interface, the request and message
// types, the optional generation parameters, and the error taxonomy.
//
// Adapters live under pkg/providers, the name-to-constructor registry
// under pkg/factory, and the multi-provider dispatcher under
// pkg/dispatcher.
package llm
