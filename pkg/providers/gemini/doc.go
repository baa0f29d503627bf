// Package gemini provides a Google Gemini client implementation built
// on the google.golang.org/genai SDK.
//
// Gemini's content model differs from the chat-completions shape:
// assistant turns use the "model" role and attachments ride along as
// file parts on the final user turn.
package gemini
