package middleware

import (
	"context"
	"time"

	"github.com/leofalp/jarvis/providers/ai"
	"github.com/leofalp/jarvis/providers/observability"
)

// NewObservabilityMiddleware opens an llm.request span around every call and
// puts the span and observer into the context so the provider can attach
// HTTP events to it. defaultModel labels requests whose Model is empty.
func NewObservabilityMiddleware(observer observability.Provider, defaultModel string) Config {
	return Config{Send: func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			model := request.Model
			if model == "" {
				model = defaultModel
			}

			ctx, span := observer.StartSpan(ctx, observability.SpanLLMRequest,
				observability.String(observability.AttrLLMModel, model),
				observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
				observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
			)
			defer span.End()
			ctx = observability.ContextWithObserver(ctx, observer)
			if request.ToolChoice != "" {
				span.SetAttributes(observability.String(observability.AttrLLMToolChoice, string(request.ToolChoice)))
			}

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				kind := errorType(err)
				span.RecordError(err)
				span.SetAttributes(observability.String(observability.AttrErrorType, kind))
				span.SetStatus(observability.StatusError, "llm request failed")
				observer.Error(ctx, "llm request failed",
					observability.Error(err),
					observability.String(observability.AttrErrorType, kind),
					observability.Duration(observability.AttrDuration, elapsed),
					observability.String(observability.AttrLLMModel, model),
				)
				return nil, err
			}

			span.SetAttributes(
				observability.String(observability.AttrLLMResponseID, response.ID),
				observability.String(observability.AttrLLMFinishReason, response.FinishReason),
				observability.Int(observability.AttrTurnToolCalls, len(response.ToolCalls)),
				observability.Duration(observability.AttrDuration, elapsed),
			)
			if response.Usage != nil {
				span.SetAttributes(
					observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
					observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
					observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
				)
			}
			span.SetStatus(observability.StatusOK, "")
			observer.Debug(ctx, "llm request completed",
				observability.String(observability.AttrLLMModel, model),
				observability.Duration(observability.AttrDuration, elapsed),
			)
			return response, nil
		}
	}}
}
