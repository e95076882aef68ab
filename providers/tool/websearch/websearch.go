package websearch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/observability"
	"github.com/leofalp/jarvis/providers/tool/googlesearch"
	"github.com/leofalp/jarvis/providers/tool/webfetch"
)

const (
	// DefaultResults is used when the caller asks for zero or fewer results.
	DefaultResults = 3
	// DefaultMaxResults caps the number of pages fetched per search.
	DefaultMaxResults = 5
	// DefaultSummaryLimit is how many page entries make it into a Summary.
	DefaultSummaryLimit = 3
	// DefaultMaxContentChars caps the content of a single entry, in runes.
	DefaultMaxContentChars = 4000
)

var separator = strings.Repeat("-", 80)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("jarvis: empty search query")

// Searcher finds result URLs for a query. *googlesearch.Client implements it.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]googlesearch.Result, error)
}

// Fetcher downloads one page. *webfetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) webfetch.PageResult
}

// Pipeline searches, fetches the hits one by one and formats a summary for
// the model.
type Pipeline struct {
	searcher        Searcher
	fetcher         Fetcher
	limiter         Limiter
	maxResults      int
	summaryLimit    int
	maxContentChars int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLimiter replaces the default FixedDelay limiter.
func WithLimiter(l Limiter) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.limiter = l
		}
	}
}

// WithMaxResults sets the hard cap on fetched pages.
func WithMaxResults(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxResults = n
		}
	}
}

// WithSummaryLimit sets how many entries a Summary keeps.
func WithSummaryLimit(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.summaryLimit = n
		}
	}
}

// WithMaxContentChars sets the per-entry content cap.
func WithMaxContentChars(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxContentChars = n
		}
	}
}

// New returns a Pipeline over searcher and fetcher.
func New(searcher Searcher, fetcher Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		searcher:        searcher,
		fetcher:         fetcher,
		maxResults:      DefaultMaxResults,
		summaryLimit:    DefaultSummaryLimit,
		maxContentChars: DefaultMaxContentChars,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.limiter == nil {
		p.limiter = NewFixedDelay(DefaultFetchDelay)
	}
	return p
}

// MaxResults returns the configured cap on fetched pages.
func (p *Pipeline) MaxResults() int { return p.maxResults }

// Summary is the outcome of one search.
type Summary struct {
	Query     string
	NoResults bool
	// Pages holds every fetched page in search rank order.
	Pages []webfetch.PageResult
	// Entries holds the formatted text of the first SummaryLimit pages.
	Entries []string
}

// String renders the summary as handed to the model.
func (s Summary) String() string {
	if s.NoResults {
		return fmt.Sprintf("No results found for query %q.", s.Query)
	}
	return strings.Join(s.Entries, "\n")
}

// ResultCount clamps n to [1, MaxResults], mapping n <= 0 to DefaultResults.
func (p *Pipeline) ResultCount(n int) int {
	if n <= 0 {
		n = DefaultResults
	}
	return min(n, p.maxResults)
}

// Search runs the pipeline for query. A failing page becomes an error entry
// and the batch continues. Errors are returned only for a blank query, a
// failed search request or a cancelled context.
func (p *Pipeline) Search(ctx context.Context, query string, count int) (Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Summary{}, ErrEmptyQuery
	}
	count = p.ResultCount(count)

	if observer := observability.ObserverFromContext(ctx); observer != nil {
		var span observability.Span
		ctx, span = observer.StartSpan(ctx, observability.SpanWebSearch,
			observability.String(observability.AttrSearchQuery, query),
			observability.Int(observability.AttrSearchResults, count),
		)
		defer span.End()
	}

	results, err := p.searcher.Search(ctx, query, count)
	if err != nil {
		return Summary{Query: query}, fmt.Errorf("web search: %w", err)
	}
	if len(results) > count {
		results = results[:count]
	}

	summary := Summary{Query: query}
	if len(results) == 0 {
		summary.NoResults = true
		return summary, nil
	}

	for _, result := range results {
		if err := p.limiter.Wait(ctx); err != nil {
			return summary, fmt.Errorf("web search: %w", err)
		}
		summary.Pages = append(summary.Pages, p.fetcher.Fetch(ctx, result.URL))
	}

	for _, page := range summary.Pages[:min(len(summary.Pages), p.summaryLimit)] {
		summary.Entries = append(summary.Entries, p.formatEntry(page))
	}
	return summary, nil
}

func (p *Pipeline) formatEntry(result webfetch.PageResult) string {
	switch r := result.(type) {
	case *webfetch.Page:
		if r.Content == "" {
			return fmt.Sprintf("Error fetching %s: no content extracted", r.URL)
		}
		return fmt.Sprintf("Title: %s\nURL: %s\nContent: %s\n%s",
			r.Metadata.Title, r.URL, utils.TruncateString(r.Content, p.maxContentChars), separator)
	case *webfetch.PageError:
		return fmt.Sprintf("Error fetching %s: %s", r.URL, r.Error())
	default:
		return fmt.Sprintf("Error fetching %s: unknown result", result.PageURL())
	}
}
