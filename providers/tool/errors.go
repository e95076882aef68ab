package tool

import (
	"errors"
	"fmt"
)

var (
	// ErrToolArgument is matched by *ArgumentError.
	ErrToolArgument = errors.New("jarvis: invalid tool arguments")

	// ErrUnknownTool is matched by *UnknownToolError.
	ErrUnknownTool = errors.New("jarvis: unknown tool")
)

// ArgumentError reports arguments that could not be decoded or failed
// validation for the named tool.
type ArgumentError struct {
	Tool string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %v", e.Tool, e.Err)
}

func (e *ArgumentError) Unwrap() []error { return []error{ErrToolArgument, e.Err} }

// UnknownToolError reports a call to a name absent from the catalog.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

func (e *UnknownToolError) Unwrap() error { return ErrUnknownTool }

// FoldError renders err as the content of a tool message, so the model can
// read what went wrong instead of the turn failing.
func FoldError(err error) string {
	if err == nil {
		return ""
	}
	return "Error: " + err.Error()
}
