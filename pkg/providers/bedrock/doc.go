// Package bedrock provides an AWS Bedrock client implementation built
// on aws-sdk-go-v2. Each model family hosted on Bedrock (Anthropic
// Claude, Amazon Titan, Meta Llama) has its own invocation payload, so
// the adapter picks the request and response shape from the model id.
package bedrock
