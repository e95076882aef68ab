package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/leofalp/jarvis/providers/ai"
	"github.com/leofalp/jarvis/providers/memory"
	"github.com/leofalp/jarvis/providers/observability"
)

// ArrayMemory is a concurrency-safe, slice-backed message store.
type ArrayMemory struct {
	mu       sync.RWMutex
	messages []ai.Message
}

// New returns an empty ArrayMemory.
func New() *ArrayMemory {
	return &ArrayMemory{messages: []ai.Message{}}
}

var _ memory.Provider = (*ArrayMemory)(nil)

// AppendMessage stores a copy of message at the end of the history.
// It is a no-op when message is nil. When a span is present in ctx the append
// is recorded as an event.
func (m *ArrayMemory) AppendMessage(ctx context.Context, message *ai.Message) {
	if message == nil {
		return
	}

	stored := cloneMessage(*message)

	m.mu.Lock()
	m.messages = append(m.messages, stored)
	total := len(m.messages)
	m.mu.Unlock()

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryAppend,
			observability.String(observability.AttrMemoryMessageRole, string(message.Role)),
			observability.Int(observability.AttrMemoryTotalMessages, total),
		)
	}
}

// Count returns the number of messages stored. The error is always nil.
func (m *ArrayMemory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages), nil
}

// AllMessages returns a copy of all messages. The error is always nil.
func (m *ArrayMemory) AllMessages(_ context.Context) ([]ai.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneMessages(m.messages), nil
}

// LastMessages returns up to the last n messages as an independent slice.
// The result is empty, never nil, when n <= 0.
func (m *ArrayMemory) LastMessages(_ context.Context, n int) ([]ai.Message, error) {
	if n <= 0 {
		return []ai.Message{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n = min(n, len(m.messages))
	return cloneMessages(m.messages[len(m.messages)-n:]), nil
}

// ClearMessages removes all messages.
func (m *ArrayMemory) ClearMessages(ctx context.Context) {
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryClear)
	}

	m.mu.Lock()
	m.messages = m.messages[:0]
	m.mu.Unlock()
}

func cloneMessages(in []ai.Message) []ai.Message {
	out := make([]ai.Message, len(in))
	for i, msg := range in {
		out[i] = cloneMessage(msg)
	}
	return out
}

// cloneMessage copies the tool-call slice so callers cannot reach stored state.
func cloneMessage(msg ai.Message) ai.Message {
	msg.ToolCalls = slices.Clone(msg.ToolCalls)
	return msg
}
