// Package mock provides a configurable in-memory client for testing
// code that depends on the llm.Client interface without reaching any
// real vendor. Responses, errors, and recorded calls are all
// programmable.
package mock
