// Package observability defines the tracing and structured logging interfaces
// shared by the orchestrator, the completion client and the tools.
//
// The central entry point is [Provider], which composes [Tracer] and [Logger]
// into a single injectable dependency. Callers propagate an active [Provider]
// and [Span] through a [context.Context] using [ContextWithObserver] and
// [ContextWithSpan]; they can be retrieved with [ObserverFromContext] and
// [SpanFromContext]. [Nop] is used wherever no observer was configured.
//
// semconv.go holds the attribute keys, span names and event names recorded
// across components.
package observability
