package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/leofalp/jarvis/core/orchestrator/middleware"
	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/ai"
	"github.com/leofalp/jarvis/providers/memory"
	"github.com/leofalp/jarvis/providers/memory/inmemory"
	"github.com/leofalp/jarvis/providers/observability"
	"github.com/leofalp/jarvis/providers/tool"
)

// Orchestrator drives one conversation with the completion service. Turns
// are serialized; concurrent Submit calls wait for each other.
type Orchestrator struct {
	send         middleware.SendFunc
	model        string
	systemPrompt string
	sessionID    string
	catalog      *tool.Catalog
	memory       memory.Provider
	window       memory.WindowPolicy
	generation   *ai.GenerationConfig
	observer     observability.Provider

	mu    sync.Mutex
	state atomic.Int32
}

// New returns an Orchestrator talking to provider. Without options it has
// an empty catalog, in-memory history and no request window.
func New(provider ai.Provider, opts ...Option) (*Orchestrator, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.catalog == nil {
		o.catalog = tool.NewCatalog()
	}
	if o.memory == nil {
		o.memory = inmemory.New()
	}
	if o.window == nil {
		o.window = memory.Unbounded
	}
	if o.sessionID == "" {
		o.sessionID = uuid.NewString()
	}

	middlewares := o.middlewares
	if o.observer != nil {
		// outermost, so it sees the outcome of retries and timeouts
		middlewares = append([]middleware.Config{middleware.NewObservabilityMiddleware(o.observer, o.model)}, middlewares...)
	} else {
		o.observer = observability.Nop()
	}

	send, err := middleware.Chain(provider, middlewares...)
	if err != nil {
		return nil, err
	}

	orch := &Orchestrator{
		send:         send,
		model:        o.model,
		systemPrompt: o.systemPrompt,
		sessionID:    o.sessionID,
		catalog:      o.catalog,
		memory:       o.memory,
		window:       o.window,
		generation:   o.generation,
		observer:     o.observer,
	}
	orch.seed(context.Background())
	return orch, nil
}

// SessionID returns the id assigned at construction.
func (o *Orchestrator) SessionID() string { return o.sessionID }

// State returns the current turn state.
func (o *Orchestrator) State() TurnState { return TurnState(o.state.Load()) }

func (o *Orchestrator) setState(s TurnState) { o.state.Store(int32(s)) }

// Catalog returns the tools advertised to the completion service.
func (o *Orchestrator) Catalog() *tool.Catalog { return o.catalog }

// Messages returns a copy of the conversation so far.
func (o *Orchestrator) Messages(ctx context.Context) ([]ai.Message, error) {
	return o.memory.AllMessages(ctx)
}

// Reset clears the conversation and seeds the system prompt again.
func (o *Orchestrator) Reset(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.memory.ClearMessages(ctx)
	o.seed(ctx)
	o.setState(AwaitingUserInput)
}

func (o *Orchestrator) seed(ctx context.Context) {
	if o.systemPrompt == "" {
		return
	}
	msg := ai.NewSystemMessage(o.systemPrompt)
	o.memory.AppendMessage(ctx, &msg)
}

// Submit runs one user turn and returns the assistant's answer.
//
// The initial request carries the tool catalog. When the model asks for
// tools, every call is dispatched in order and answered with exactly one tool
// message, failures included, before a final request without tools is sent.
// A malformed response fails the turn with *CompletionProtocolError;
// transport errors are returned as they are. Either way the messages
// appended so far are kept.
func (o *Orchestrator) Submit(ctx context.Context, userText string) (string, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", ErrEmptyInput
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.setState(AwaitingUserInput)

	ctx, span := o.observer.StartSpan(ctx, observability.SpanTurn,
		observability.String(observability.AttrSessionID, o.sessionID),
		observability.String(observability.AttrTurnInput, userText),
	)
	defer span.End()
	ctx = observability.ContextWithObserver(ctx, o.observer)

	answer, err := o.turn(ctx, userText)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "turn failed")
		o.observer.Error(ctx, "Turn failed",
			observability.String(observability.AttrSessionID, o.sessionID),
			observability.String(observability.AttrTurnState, o.State().String()),
			observability.Error(err),
		)
		return "", err
	}
	span.SetStatus(observability.StatusOK, "")
	return answer, nil
}

func (o *Orchestrator) turn(ctx context.Context, userText string) (string, error) {
	user := ai.NewUserMessage(userText)
	o.memory.AppendMessage(ctx, &user)

	o.setState(RequestingCompletion)
	response, err := o.complete(ctx, PhaseInitial)
	if err != nil {
		return "", err
	}

	assistant := response.Message()
	o.memory.AppendMessage(ctx, &assistant)

	if !response.HasToolCalls() {
		o.setState(Done)
		return response.Content, nil
	}

	o.setState(ExecutingTools)
	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(observability.Int(observability.AttrTurnToolCalls, len(response.ToolCalls)))
	}
	for _, call := range response.ToolCalls {
		reply := ai.NewToolMessage(call.ID, call.Function.Name, o.dispatch(ctx, call))
		o.memory.AppendMessage(ctx, &reply)
	}
	if err := o.checkReplies(ctx, response.ToolCalls); err != nil {
		return "", err
	}

	o.setState(RequestingFinalCompletion)
	final, err := o.complete(ctx, PhaseFinal)
	if err != nil {
		return "", err
	}

	answer := final.Message()
	if len(answer.ToolCalls) > 0 {
		// tools were not offered, so these calls can never be answered
		o.observer.Warn(ctx, "Dropping tool calls from final completion",
			observability.Int(observability.AttrTurnToolCalls, len(answer.ToolCalls)),
		)
		answer.ToolCalls = nil
	}
	o.memory.AppendMessage(ctx, &answer)

	o.setState(Done)
	return final.Content, nil
}

func (o *Orchestrator) complete(ctx context.Context, phase Phase) (*ai.ChatResponse, error) {
	messages, err := o.memory.AllMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	request := ai.ChatRequest{
		Model:    o.model,
		Messages: o.window.Window(messages),
	}
	if phase == PhaseInitial {
		request.Tools = o.catalog.Descriptions()
		if len(request.Tools) > 0 {
			request.ToolChoice = ai.ToolChoiceAuto
		}
		request.GenerationConfig = o.generation
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(observability.String(observability.AttrTurnPhase, string(phase)))
	}

	response, err := o.send(ctx, request)
	if err != nil {
		var protoErr *ai.ProtocolError
		if errors.As(err, &protoErr) {
			return nil, &CompletionProtocolError{Phase: phase, Raw: protoErr.Raw, Err: err}
		}
		return nil, err
	}
	if response == nil {
		return nil, &CompletionProtocolError{Phase: phase, Err: &ai.ProtocolError{Reason: "nil response"}}
	}
	return response, nil
}

// dispatch runs one tool call and returns the content of its tool message.
func (o *Orchestrator) dispatch(ctx context.Context, call ai.ToolCall) string {
	ctx, span := o.observer.StartSpan(ctx, observability.SpanToolExecution,
		observability.String(observability.AttrToolName, call.Function.Name),
		observability.String(observability.AttrToolCallID, call.ID),
	)
	defer span.End()

	output, err := o.catalog.Dispatch(ctx, call.Function.Name, call.Function.Arguments)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "tool call failed")
		o.observer.Warn(ctx, "Tool call failed",
			observability.String(observability.AttrToolName, call.Function.Name),
			observability.String(observability.AttrToolCallID, call.ID),
			observability.Error(err),
		)
		output = tool.FoldError(err)
	} else {
		span.SetStatus(observability.StatusOK, "")
	}

	span.AddEvent(observability.EventToolExecutionEnd,
		observability.String(observability.AttrToolName, call.Function.Name),
		observability.String(observability.AttrToolOutput, utils.TruncateString(output, 200)),
	)
	return output
}

// checkReplies verifies the history ends with one tool message per call, in
// call order.
func (o *Orchestrator) checkReplies(ctx context.Context, calls []ai.ToolCall) error {
	tail, err := o.memory.LastMessages(ctx, len(calls))
	if err != nil {
		return fmt.Errorf("read conversation: %w", err)
	}
	if len(tail) != len(calls) {
		return fmt.Errorf("%w: %d replies for %d calls", ErrToolReplyMismatch, len(tail), len(calls))
	}
	for i, call := range calls {
		if tail[i].Role != ai.RoleTool || tail[i].ToolCallID != call.ID {
			return fmt.Errorf("%w: position %d holds %s %q, want tool reply to %q",
				ErrToolReplyMismatch, i, tail[i].Role, tail[i].ToolCallID, call.ID)
		}
	}
	return nil
}
