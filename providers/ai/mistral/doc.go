// Package mistral implements ai.Provider for the Mistral chat completions
// endpoint (POST {base}/chat/completions with bearer authentication).
//
// Responses are validated before they are handed back: a body without
// choices, a choice without a message, or a tool call missing its id or
// function name is reported as an *ai.ProtocolError that keeps the raw body.
package mistral
