package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/leofalp/jarvis/providers/observability/slogobs"
)

// Environment variables read by Load.
const (
	EnvMistralAPIKey  = "MISTRAL_API_KEY"
	EnvMistralBaseURL = "MISTRAL_BASE_URL"
	EnvMistralModel   = "MISTRAL_MODEL"
	EnvSearchAPIKey   = "GOOGLE_SEARCH_API_KEY"
	EnvSearchCX       = "GOOGLE_SEARCH_CX"
	EnvTemperature    = "JARVIS_TEMPERATURE"
	EnvFetchTimeout   = "JARVIS_FETCH_TIMEOUT"
	EnvFetchDelay     = "JARVIS_FETCH_DELAY"
	EnvMaxResults     = "JARVIS_MAX_RESULTS"
	EnvSummaryLimit   = "JARVIS_SUMMARY_LIMIT"
	EnvHistoryTurns   = "JARVIS_HISTORY_TURNS"
	EnvSystemPrompt   = "JARVIS_SYSTEM_PROMPT"
)

// Defaults applied when a variable is unset.
const (
	DefaultModel        = "mistral-small-2506"
	DefaultTemperature  = 1.4
	DefaultFetchTimeout = 10 * time.Second
	DefaultFetchDelay   = 2 * time.Second
	DefaultMaxResults   = 5
	DefaultSummaryLimit = 3
	DefaultSystemPrompt = "You are a virtual assistant in the style of Jarvis from Iron Man: polite and sarcastic, with a British accent. " +
		"Answer briefly with a touch of irony. You have functions at your disposal; use them whenever a task can be solved with them."
)

// ErrMissingAPIKey is returned by Validate when MISTRAL_API_KEY is unset.
var ErrMissingAPIKey = errors.New("jarvis: MISTRAL_API_KEY is not set")

// FieldError reports a variable whose value cannot be parsed.
type FieldError struct {
	Var   string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s=%q: %v", e.Var, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Config is the process configuration.
type Config struct {
	MistralAPIKey  string
	MistralBaseURL string // empty means the provider default
	Model          string

	// Search credentials may be empty; web_search then reports the problem
	// to the model instead of the process failing.
	SearchAPIKey string
	SearchCX     string

	Temperature  float64
	FetchTimeout time.Duration
	FetchDelay   time.Duration
	MaxResults   int
	SummaryLimit int
	HistoryTurns int // 0 keeps the whole conversation in every request

	LogLevel     slog.Level
	LogFormat    slogobs.Format
	SystemPrompt string
}

// HasSearchCredentials reports whether both search variables are set.
func (c Config) HasSearchCredentials() bool {
	return c.SearchAPIKey != "" && c.SearchCX != ""
}

// Load is Read followed by Validate.
func Load(envFiles ...string) (Config, error) {
	cfg, err := Read(envFiles...)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate reports settings without which no conversation can run.
// Search credentials are not among them: without them only web_search fails.
func (c Config) Validate() error {
	if c.MistralAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Read loads envFiles (".env" when none are given) into the environment
// without overriding variables already set, then builds a Config from the
// environment. A missing default .env file is not an error; a missing file
// named explicitly is.
func Read(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only, without
// validating it.
func FromEnv() (Config, error) {
	cfg := Config{
		MistralAPIKey:  os.Getenv(EnvMistralAPIKey),
		MistralBaseURL: os.Getenv(EnvMistralBaseURL),
		Model:          stringOr(EnvMistralModel, DefaultModel),
		SearchAPIKey:   os.Getenv(EnvSearchAPIKey),
		SearchCX:       os.Getenv(EnvSearchCX),
		LogLevel:       slogobs.GetLogLevelFromEnv(),
		LogFormat:      slogobs.GetFormatFromEnv(),
		SystemPrompt:   stringOr(EnvSystemPrompt, DefaultSystemPrompt),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	cfg.Temperature, err = floatOr(EnvTemperature, DefaultTemperature)
	collect(err)
	cfg.FetchTimeout, err = durationOr(EnvFetchTimeout, DefaultFetchTimeout)
	collect(err)
	cfg.FetchDelay, err = durationOr(EnvFetchDelay, DefaultFetchDelay)
	collect(err)
	cfg.MaxResults, err = intOr(EnvMaxResults, DefaultMaxResults, 1)
	collect(err)
	cfg.SummaryLimit, err = intOr(EnvSummaryLimit, DefaultSummaryLimit, 1)
	collect(err)
	cfg.HistoryTurns, err = intOr(EnvHistoryTurns, 0, 0)
	collect(err)

	return cfg, errors.Join(errs...)
}

func stringOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func floatOr(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback, &FieldError{Var: key, Value: raw, Err: err}
	}
	return v, nil
}

func intOr(key string, fallback, minimum int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, &FieldError{Var: key, Value: raw, Err: err}
	}
	if v < minimum {
		return fallback, &FieldError{Var: key, Value: raw, Err: fmt.Errorf("must be at least %d", minimum)}
	}
	return v, nil
}

// durationOr accepts Go durations ("1500ms") and bare numbers of seconds ("2").
func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs < 0 {
			return fallback, &FieldError{Var: key, Value: raw, Err: errors.New("must not be negative")}
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, &FieldError{Var: key, Value: raw, Err: err}
	}
	if d < 0 {
		return fallback, &FieldError{Var: key, Value: raw, Err: errors.New("must not be negative")}
	}
	return d, nil
}
