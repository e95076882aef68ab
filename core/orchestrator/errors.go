package orchestrator

import (
	"errors"
	"fmt"

	"github.com/leofalp/jarvis/providers/ai"
)

var (
	// ErrEmptyInput is returned by Submit for blank user text.
	ErrEmptyInput = errors.New("jarvis: empty user input")

	// ErrNilProvider is returned by New without a completion provider.
	ErrNilProvider = errors.New("jarvis: nil completion provider")

	// ErrToolReplyMismatch means the stored history does not hold exactly one
	// tool reply per requested call, in order. The final request is not sent.
	ErrToolReplyMismatch = errors.New("jarvis: tool replies do not match tool calls")
)

// Phase names the completion request of a turn.
type Phase string

const (
	// PhaseInitial is the request carrying the tool catalog.
	PhaseInitial Phase = "initial"
	// PhaseFinal is the request sent after tool results were appended.
	PhaseFinal Phase = "final"
)

// CompletionProtocolError reports a completion response missing expected
// fields. Raw holds the response body when it was available. Messages
// appended before the failure stay in the conversation.
type CompletionProtocolError struct {
	Phase Phase
	Raw   []byte
	Err   error
}

func (e *CompletionProtocolError) Error() string {
	return fmt.Sprintf("%s completion: %v", e.Phase, e.Err)
}

// Unwrap exposes the cause; errors.Is(err, ai.ErrCompletionProtocol) holds.
func (e *CompletionProtocolError) Unwrap() []error {
	return []error{ai.ErrCompletionProtocol, e.Err}
}
