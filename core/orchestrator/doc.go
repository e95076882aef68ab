// Package orchestrator runs conversation turns against a completion service
// with tool calling.
//
// A turn has two phases. The initial request carries the full conversation
// and the tool catalog with tool_choice "auto". If the model answers
// directly, the turn ends. Otherwise each requested tool is dispatched in
// order through the [tool.Catalog], one tool message is appended per call
// (errors are folded into the message text), and a final request without
// tools produces the answer:
//
//	orch, err := orchestrator.New(mistral.NewMistralProvider(),
//	    orchestrator.WithSystemPrompt("You are Jarvis."),
//	    orchestrator.WithCatalog(catalog),
//	)
//	answer, err := orch.Submit(ctx, "какая погода в Лондоне")
//
// The orchestrator never retries; wrap the provider with
// [middleware.NewRetryMiddleware] through [WithMiddleware] for that.
package orchestrator
