// Package ai defines the provider-agnostic chat types exchanged between the
// orchestrator and a completion service: [ChatRequest], [ChatResponse],
// [Message] and [ToolCall]. Concrete clients such as providers/ai/mistral
// implement [Provider] and map these types onto their wire format.
package ai
