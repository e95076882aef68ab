package memory

import (
	"context"

	"github.com/leofalp/jarvis/providers/ai"
)

// Provider stores the conversation state of one orchestrator session.
// Messages are kept in append order and are never evicted by the
// orchestrator; read methods return errors so that external stores can
// surface failures.
type Provider interface {
	AppendMessage(ctx context.Context, message *ai.Message)
	Count(ctx context.Context) (int, error)
	AllMessages(ctx context.Context) ([]ai.Message, error)
	LastMessages(ctx context.Context, n int) ([]ai.Message, error)
	ClearMessages(ctx context.Context)
}
