// Package zhipu provides a Zhipu AI (GLM) client implementation.
//
// Zhipu keys have the form "id.secret"; the adapter mints a short-lived
// HS256 JWT from the secret on every request. Keys that do not split
// fall back to being sent verbatim as the bearer token.
package zhipu
