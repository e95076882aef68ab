package observability

import (
	"context"
	"testing"
)

type mockSpan struct {
	name   string
	events []string
}

func (m *mockSpan) End() {}
func (m *mockSpan) SetAttributes(attrs ...Attribute) {}
func (m *mockSpan) SetStatus(code StatusCode, d string) {}
func (m *mockSpan) RecordError(err error) {}
func (m *mockSpan) AddEvent(name string, _ ...Attribute) { m.events = append(m.events, name) }

func TestSpanFromContext_Empty(t *testing.T) {
	if span := SpanFromContext(context.Background()); span != nil {
		t.Errorf("Expected nil span from empty context, got %v", span)
	}
	//nolint:staticcheck // nil context is handled explicitly
	if span := SpanFromContext(nil); span != nil {
		t.Errorf("Expected nil span from nil context, got %v", span)
	}
}

func TestContextWithSpan_RoundTrip(t *testing.T) {
	mock := &mockSpan{name: "turn"}
	ctx := ContextWithSpan(context.Background(), mock)

	span := SpanFromContext(ctx)
	if span != mock {
		t.Fatalf("Expected the same span instance, got %v", span)
	}
	span.AddEvent("x")
	if len(mock.events) != 1 {
		t.Errorf("Expected event to reach the stored span, got %d events", len(mock.events))
	}
}

func TestContextWithSpan_NilParent(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	ctx := ContextWithSpan(nil, &mockSpan{})
	if ctx == nil {
		t.Fatal("ContextWithSpan(nil, ...) returned nil context")
	}
	if SpanFromContext(ctx) == nil {
		t.Error("span not retrievable from context built on nil parent")
	}
}

func TestContextWithSpan_Override(t *testing.T) {
	outer := &mockSpan{name: "outer"}
	inner := &mockSpan{name: "inner"}

	ctx := ContextWithSpan(context.Background(), outer)
	child := ContextWithSpan(ctx, inner)

	if SpanFromContext(child) != inner {
		t.Error("child context should carry the inner span")
	}
	if SpanFromContext(ctx) != outer {
		t.Error("parent context should still carry the outer span")
	}
}

func TestObserverFromContext(t *testing.T) {
	if obs := ObserverFromContext(context.Background()); obs != nil {
		t.Errorf("Expected nil observer from empty context, got %v", obs)
	}

	nop := Nop()
	ctx := ContextWithObserver(context.Background(), nop)
	if ObserverFromContext(ctx) != nop {
		t.Error("observer not retrievable from context")
	}

	// span and observer keys must not collide
	ctx = ContextWithSpan(ctx, &mockSpan{})
	if ObserverFromContext(ctx) != nop {
		t.Error("adding a span should not hide the observer")
	}
}
