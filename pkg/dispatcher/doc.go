// Package dispatcher manages a set of named provider clients: it
// registers providers from persisted configurations, tracks which one
// is active, merges saved generation defaults with per-call overrides,
// gates multimodal requests on a capability table, and routes chat
// requests to the active client.
//
// Configurations and the active-provider pointer survive restarts
// through a JSON file store.
package dispatcher
