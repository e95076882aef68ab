package memory

import (
	"github.com/leofalp/jarvis/providers/ai"
)

// WindowPolicy selects which stored messages are sent with a completion
// request. It shapes the request only; the stored history is untouched.
type WindowPolicy interface {
	Window(messages []ai.Message) []ai.Message
}

// WindowFunc adapts a function to WindowPolicy.
type WindowFunc func(messages []ai.Message) []ai.Message

func (f WindowFunc) Window(messages []ai.Message) []ai.Message { return f(messages) }

// Unbounded sends the whole history.
var Unbounded WindowPolicy = WindowFunc(func(messages []ai.Message) []ai.Message {
	return messages
})

// LastTurns keeps the leading system messages plus the last N user turns. A
// turn starts at a user message and runs to the next one, so an assistant
// message with tool calls always travels with its tool replies.
// N <= 0 behaves like Unbounded.
type LastTurns struct {
	N int
}

func (p LastTurns) Window(messages []ai.Message) []ai.Message {
	if p.N <= 0 {
		return messages
	}

	head := 0
	for head < len(messages) && messages[head].Role == ai.RoleSystem {
		head++
	}

	start := len(messages)
	turns := 0
	for i := len(messages) - 1; i >= head; i-- {
		if messages[i].Role != ai.RoleUser {
			continue
		}
		turns++
		start = i
		if turns == p.N {
			break
		}
	}
	if turns < p.N {
		// fewer turns than the window: keep everything after the system prefix
		start = head
	}

	out := make([]ai.Message, 0, head+len(messages)-start)
	out = append(out, messages[:head]...)
	return append(out, messages[start:]...)
}
