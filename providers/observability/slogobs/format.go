package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

// Environment variables read when no explicit option is given.
const (
	EnvLogFormat = "JARVIS_LOG_FORMAT"
	EnvLogLevel  = "JARVIS_LOG_LEVEL"
)

// LevelTrace sits below slog.LevelDebug and is filtered out unless requested.
const LevelTrace = slog.LevelDebug - 4

// Format represents the output format for logs.
type Format string

const (
	// FormatText is slog's key=value line format (default).
	FormatText Format = "text"

	// FormatJSON is one JSON object per line, for log aggregation.
	FormatJSON Format = "json"
)

// ParseFormat parses a format string and returns the corresponding Format.
// Unknown values fall back to FormatText.
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

// GetFormatFromEnv returns the format named by JARVIS_LOG_FORMAT.
func GetFormatFromEnv() Format {
	return ParseFormat(os.Getenv(EnvLogFormat))
}

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}

// ParseLogLevel maps a level name to a slog.Level. Unknown values map to INFO.
func ParseLogLevel(s string) slog.Level {
	switch strings.TrimSpace(strings.ToUpper(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogLevelFromEnv returns the level named by JARVIS_LOG_LEVEL.
func GetLogLevelFromEnv() slog.Level {
	return ParseLogLevel(os.Getenv(EnvLogLevel))
}
