package main

import (
	"log/slog"
	"time"

	"github.com/leofalp/jarvis/core/config"
	"github.com/leofalp/jarvis/core/orchestrator"
	"github.com/leofalp/jarvis/core/orchestrator/middleware"
	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/ai"
	"github.com/leofalp/jarvis/providers/ai/mistral"
	"github.com/leofalp/jarvis/providers/memory"
	"github.com/leofalp/jarvis/providers/observability/slogobs"
	"github.com/leofalp/jarvis/providers/tool"
	"github.com/leofalp/jarvis/providers/tool/googlesearch"
	"github.com/leofalp/jarvis/providers/tool/system"
	"github.com/leofalp/jarvis/providers/tool/webfetch"
	"github.com/leofalp/jarvis/providers/tool/websearch"
)

// completionTimeout bounds a single completion attempt.
const completionTimeout = 60 * time.Second

// app holds the components shared by every command.
type app struct {
	cfg      config.Config
	observer *slogobs.Observer
	fetcher  *webfetch.Fetcher
	pipeline *websearch.Pipeline
	catalog  *tool.Catalog
}

func newApp(cfg config.Config, format webfetch.Format) *app {
	observer := slogobs.New(
		slogobs.WithLevel(cfg.LogLevel),
		slogobs.WithFormat(cfg.LogFormat),
	)

	fetcher := webfetch.NewFetcher(
		webfetch.WithTimeout(cfg.FetchTimeout),
		webfetch.WithFormat(format),
	)

	searcher := googlesearch.NewClient().
		WithAPIKey(cfg.SearchAPIKey).
		WithCX(cfg.SearchCX)

	pipeline := websearch.New(searcher, fetcher,
		websearch.WithLimiter(websearch.NewFixedDelay(cfg.FetchDelay)),
		websearch.WithMaxResults(cfg.MaxResults),
		websearch.WithSummaryLimit(cfg.SummaryLimit),
	)

	catalog := tool.NewCatalogWithTools(system.Tools(system.NewLocal())...)
	catalog.AddTools(websearch.NewTool(pipeline))

	return &app{
		cfg:      cfg,
		observer: observer,
		fetcher:  fetcher,
		pipeline: pipeline,
		catalog:  catalog,
	}
}

func (a *app) provider() ai.Provider {
	p := mistral.NewMistralProvider().
		WithAPIKey(a.cfg.MistralAPIKey).
		WithModel(a.cfg.Model)
	if a.cfg.MistralBaseURL != "" {
		p = p.WithBaseURL(a.cfg.MistralBaseURL)
	}
	return p
}

func (a *app) logLevel() middleware.LogLevel {
	switch {
	case a.cfg.LogLevel <= slogobs.LevelTrace:
		return middleware.LogLevelVerbose
	case a.cfg.LogLevel <= slog.LevelDebug:
		return middleware.LogLevelStandard
	default:
		return middleware.LogLevelMinimal
	}
}

// newOrchestrator wires a conversation for one session. The timeout sits
// inside the retry loop, so each attempt gets its own budget.
func (a *app) newOrchestrator(sessionID string) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(a.provider(),
		orchestrator.WithSessionID(sessionID),
		orchestrator.WithModel(a.cfg.Model),
		orchestrator.WithSystemPrompt(a.cfg.SystemPrompt),
		orchestrator.WithCatalog(a.catalog),
		orchestrator.WithWindowPolicy(memory.LastTurns{N: a.cfg.HistoryTurns}),
		orchestrator.WithGenerationConfig(ai.GenerationConfig{Temperature: utils.Ptr(a.cfg.Temperature)}),
		orchestrator.WithObserver(a.observer),
		orchestrator.WithMiddleware(
			middleware.NewLoggingMiddleware(a.observer.Logger(), a.logLevel()),
			middleware.NewRetryMiddleware(middleware.RetryConfig{}),
			middleware.NewTimeoutMiddleware(completionTimeout),
		),
	)
}
