package ai

import (
	"errors"
	"fmt"

	"github.com/leofalp/jarvis/internal/utils"
)

// ErrCompletionProtocol is matched by every response that does not have the
// shape of a chat completion (missing choices, missing message, tool call
// without id or name, undecodable body).
var ErrCompletionProtocol = errors.New("jarvis: malformed completion response")

// ProtocolError describes a malformed completion response. Raw holds the
// undecoded body.
type ProtocolError struct {
	Reason string
	Raw    []byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCompletionProtocol, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return ErrCompletionProtocol }

// StatusError is returned for non-2xx completion responses.
type StatusError = utils.StatusError
