// Package slogobs provides an observability.Provider backed by log/slog.
// Spans are logged at debug level when they start and end; span errors are
// logged at error level. Output format and level come from [WithFormat] and
// [WithLevel], or from JARVIS_LOG_FORMAT and JARVIS_LOG_LEVEL.
package slogobs
