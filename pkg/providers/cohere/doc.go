// Package cohere provides a Cohere client implementation.
//
// Cohere's chat API separates the current message from the prior
// conversation, so the adapter splits the canonical message list into
// a chat history of user/chatbot turns plus the final message.
package cohere
