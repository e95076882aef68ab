package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leofalp/jarvis/providers/observability"
)

// testSpan records attributes so tests can check what Call reports.
type testSpan struct {
	attributes []observability.Attribute
}

func (s *testSpan) End() {}
func (s *testSpan) SetAttributes(attrs ...observability.Attribute) {
	s.attributes = append(s.attributes, attrs...)
}
func (s *testSpan) SetStatus(code observability.StatusCode, description string) {}
func (s *testSpan) RecordError(err error) {}
func (s *testSpan) AddEvent(name string, attrs ...observability.Attribute) {}

func (s *testSpan) attr(key string) (any, bool) {
	for _, a := range s.attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

type volumeInput struct {
	Level *int `json:"level" jsonschema:"required,description=Volume from 0 to 100,minimum=0,maximum=100"`
}

func (in *volumeInput) Normalize() error {
	if in.Level == nil {
		return errors.New("level is required")
	}
	if *in.Level < 0 || *in.Level > 100 {
		return errors.New("level must be between 0 and 100")
	}
	return nil
}

func newVolumeTool(set *int) *Tool[volumeInput] {
	return NewTool("set_volume", func(_ context.Context, in volumeInput) (string, error) {
		*set = *in.Level
		return "volume set", nil
	}, WithDescription("Set the system volume"))
}

type emptyInput struct{}

func TestNewTool_ToolInfo(t *testing.T) {
	var level int
	info := newVolumeTool(&level).ToolInfo()

	if info.Name != "set_volume" || info.Description != "Set the system volume" {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Parameters == nil || info.Parameters.Properties["level"] == nil {
		t.Fatalf("expected level parameter, got %v", info.Parameters)
	}
	if len(info.Parameters.Required) != 1 || info.Parameters.Required[0] != "level" {
		t.Errorf("Required = %v, want [level]", info.Parameters.Required)
	}
}

func TestTool_Call(t *testing.T) {
	var level int
	tl := newVolumeTool(&level)
	span := &testSpan{}
	ctx := observability.ContextWithSpan(context.Background(), span)

	out, err := tl.Call(ctx, `{"level": 40}`)
	if err != nil {
		t.Fatalf("Call error = %v", err)
	}
	if out != "volume set" || level != 40 {
		t.Errorf("Call = %q level=%d", out, level)
	}
	if v, ok := span.attr(observability.AttrToolOutput); !ok || v != "volume set" {
		t.Errorf("tool output not recorded on span: %v", span.attributes)
	}
}

// TestTool_Call_ArgumentErrors verifies decode and Normalize failures are ArgumentErrors.
func TestTool_Call_ArgumentErrors(t *testing.T) {
	var level int
	tl := newVolumeTool(&level)

	for _, in := range []string{`{}`, ``, `{"level": 150}`, `{"level": "loud"}`, `not json`} {
		t.Run(in, func(t *testing.T) {
			_, err := tl.Call(context.Background(), in)
			if !errors.Is(err, ErrToolArgument) {
				t.Fatalf("Call(%q) error = %v, want ErrToolArgument", in, err)
			}
			var argErr *ArgumentError
			if !errors.As(err, &argErr) || argErr.Tool != "set_volume" {
				t.Errorf("expected *ArgumentError for set_volume, got %v", err)
			}
		})
	}
}

func TestTool_Call_EmptyArguments(t *testing.T) {
	called := false
	tl := NewTool("empty_recycle_bin", func(_ context.Context, _ emptyInput) (string, error) {
		called = true
		return "emptied", nil
	})

	for _, in := range []string{"", "  ", "{}"} {
		called = false
		out, err := tl.Call(context.Background(), in)
		if err != nil || out != "emptied" || !called {
			t.Errorf("Call(%q) = %q, %v (called=%v)", in, out, err, called)
		}
	}
}

func TestFoldError(t *testing.T) {
	if FoldError(nil) != "" {
		t.Error("FoldError(nil) should be empty")
	}
	got := FoldError(&UnknownToolError{Name: "launch_rocket"})
	if !strings.HasPrefix(got, "Error: ") || !strings.Contains(got, `"launch_rocket"`) {
		t.Errorf("FoldError = %q", got)
	}
}
