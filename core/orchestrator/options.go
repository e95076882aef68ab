package orchestrator

import (
	"log/slog"

	"github.com/leofalp/jarvis/core/orchestrator/middleware"
	"github.com/leofalp/jarvis/providers/ai"
	"github.com/leofalp/jarvis/providers/memory"
	"github.com/leofalp/jarvis/providers/observability"
	"github.com/leofalp/jarvis/providers/observability/slogobs"
	"github.com/leofalp/jarvis/providers/tool"
)

// Option configures an Orchestrator.
type Option func(*options)

type options struct {
	model        string
	systemPrompt string
	sessionID    string
	catalog      *tool.Catalog
	memory       memory.Provider
	window       memory.WindowPolicy
	generation   *ai.GenerationConfig
	middlewares  []middleware.Config
	observer     observability.Provider
}

// WithModel sets the model requested from the completion service. Empty
// leaves the choice to the provider.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithSystemPrompt seeds every new conversation with a system message.
func WithSystemPrompt(prompt string) Option {
	return func(o *options) {
		o.systemPrompt = prompt
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(o *options) {
		o.sessionID = id
	}
}

// WithCatalog sets the tools advertised on the initial request.
func WithCatalog(catalog *tool.Catalog) Option {
	return func(o *options) {
		o.catalog = catalog
	}
}

// WithMemory sets the conversation store. It must not be shared with another
// Orchestrator.
func WithMemory(m memory.Provider) Option {
	return func(o *options) {
		o.memory = m
	}
}

// WithWindowPolicy shapes the messages sent on each request. Stored history
// is never trimmed.
func WithWindowPolicy(policy memory.WindowPolicy) Option {
	return func(o *options) {
		o.window = policy
	}
}

// WithGenerationConfig sets sampling parameters for the initial request.
func WithGenerationConfig(config ai.GenerationConfig) Option {
	return func(o *options) {
		o.generation = &config
	}
}

// WithMiddleware appends completion middleware; the first one given is the
// outermost.
func WithMiddleware(configs ...middleware.Config) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, configs...)
	}
}

// WithObserver enables spans and logs for turns, completion requests and
// tool calls.
func WithObserver(observer observability.Provider) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithLogger is a shorthand for WithObserver backed by logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.observer = slogobs.New(slogobs.WithLogger(logger))
		}
	}
}
