// Package middleware provides composable wrappers around a completion
// request: retry with backoff, per-request timeout, slog logging and span
// instrumentation.
//
// A chain is a list of [Config] values; the first entry is the outermost
// wrapper:
//
//	orchestrator.New(provider,
//	    orchestrator.WithMiddleware(
//	        middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard),
//	        middleware.NewRetryMiddleware(middleware.RetryConfig{}),
//	        middleware.NewTimeoutMiddleware(30*time.Second),
//	    ),
//	)
//
// Here each attempt gets its own 30s deadline and the logger sees only the
// final outcome of the retry loop.
package middleware
