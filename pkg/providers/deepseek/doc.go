// Package deepseek provides a DeepSeek client implementation built on
// the github.com/cohesion-org/deepseek-go SDK.
package deepseek
