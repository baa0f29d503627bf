// Package replicate provides a Replicate client implementation.
//
// Replicate's API is asynchronous: the adapter creates a prediction,
// then polls its status until it succeeds, fails, or the poll limit
// runs out.
package replicate
