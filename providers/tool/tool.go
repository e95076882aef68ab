package tool

import (
	"context"
	"strings"
	"time"

	"github.com/leofalp/jarvis/core/parse"
	"github.com/leofalp/jarvis/internal/jsonschema"
	"github.com/leofalp/jarvis/providers/ai"
	"github.com/leofalp/jarvis/providers/observability"
)

// Tool binds a catalog name to a typed capability. The parameter schema
// advertised to the model is derived from I by reflection.
type Tool[I any] struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Function    func(ctx context.Context, input I) (string, error)
}

// GenericTool is the type-erased view of a [Tool] stored in a [Catalog].
type GenericTool interface {
	// ToolInfo returns the definition advertised to the completion service.
	ToolInfo() ai.ToolDescription

	// Call decodes inputJSON into the tool's input type and runs it.
	// Decoding and validation failures are returned as *ArgumentError.
	Call(ctx context.Context, inputJSON string) (string, error)
}

// Normalizer is implemented by input types that apply defaults and validate
// required fields after decoding. A returned error is reported to the model
// as an argument error.
type Normalizer interface {
	Normalize() error
}

type funcToolOptions struct {
	Description string
}

// WithDescription sets the description the model uses to decide when to call
// the tool.
func WithDescription(description string) func(tool *funcToolOptions) {
	return func(s *funcToolOptions) {
		s.Description = description
	}
}

// NewTool constructs a [Tool] named name around function.
//
//	openApp := tool.NewTool("open_app", actions.openApp,
//	    tool.WithDescription("Open a desktop application by name"),
//	)
func NewTool[I any](name string, function func(ctx context.Context, input I) (string, error), options ...func(tool *funcToolOptions)) *Tool[I] {
	toolOptions := &funcToolOptions{}
	for _, option := range options {
		option(toolOptions)
	}

	return &Tool[I]{
		Name:        name,
		Description: toolOptions.Description,
		Parameters:  jsonschema.GenerateJSONSchema[I](),
		Function:    function,
	}
}

func (t *Tool[I]) ToolInfo() ai.ToolDescription {
	return ai.ToolDescription{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// Call parses inputJSON into I, normalizes it when I implements [Normalizer],
// and runs the function. Empty input is treated as an empty object. When a
// span is present in ctx, input and outcome are recorded on it.
func (t *Tool[I]) Call(ctx context.Context, inputJSON string) (string, error) {
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrToolName, t.Name),
			observability.String(observability.AttrToolInput, inputJSON),
		)
	}

	if strings.TrimSpace(inputJSON) == "" {
		inputJSON = "{}"
	}

	input, err := parse.ParseStringAs[I](inputJSON)
	if err != nil {
		return "", &ArgumentError{Tool: t.Name, Err: err}
	}
	if n, ok := any(&input).(Normalizer); ok {
		if err := n.Normalize(); err != nil {
			return "", &ArgumentError{Tool: t.Name, Err: err}
		}
	}

	start := time.Now()
	output, err := t.Function(ctx, input)
	if span != nil {
		span.SetAttributes(observability.Duration(observability.AttrToolDuration, time.Since(start)))
		if err == nil {
			span.SetAttributes(observability.String(observability.AttrToolOutput, output))
		}
	}
	return output, err
}
