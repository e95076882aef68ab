// Package memory defines the conversation-state [Provider] used by the
// orchestrator and the [WindowPolicy] that decides which part of that state is
// sent with each completion request. [Unbounded] sends everything;
// [LastTurns] keeps the system prompt and the most recent user turns.
// The in-process implementation lives in providers/memory/inmemory.
package memory
