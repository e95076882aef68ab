package googlesearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/observability"
)

const (
	// EnvAPIKey and EnvCX name the environment variables read by NewClient.
	EnvAPIKey = "GOOGLE_SEARCH_API_KEY"
	EnvCX     = "GOOGLE_SEARCH_CX"

	// MaxNum is the largest page size the Custom Search API accepts.
	MaxNum = 10

	defaultTimeout = 15 * time.Second
)

// ErrMissingCredentials is wrapped by ConfigurationError.
var ErrMissingCredentials = errors.New("jarvis: search credentials not configured")

// ConfigurationError reports which credentials are absent.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrMissingCredentials, strings.Join(e.Missing, ", "))
}

func (e *ConfigurationError) Unwrap() error { return ErrMissingCredentials }

// Result is one search hit in provider rank order.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// Client queries the Google Custom Search JSON API.
type Client struct {
	apiKey     string
	cx         string
	endpoint   string
	httpClient *http.Client
}

// NewClient returns a Client configured from GOOGLE_SEARCH_API_KEY and
// GOOGLE_SEARCH_CX. Missing values are reported by Search, not here.
func NewClient() *Client {
	return &Client{
		apiKey:     os.Getenv(EnvAPIKey),
		cx:         os.Getenv(EnvCX),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// WithAPIKey sets the API key.
func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = key
	return c
}

// WithCX sets the programmable search engine id.
func (c *Client) WithCX(cx string) *Client {
	c.cx = cx
	return c
}

// WithEndpoint overrides the API base URL, e.g. for a test server.
func (c *Client) WithEndpoint(endpoint string) *Client {
	if endpoint != "" && !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	c.endpoint = endpoint
	return c
}

// WithHttpClient sets the HTTP client used for requests.
func (c *Client) WithHttpClient(client *http.Client) *Client {
	if client != nil {
		c.httpClient = client
	}
	return c
}

func (c *Client) checkCredentials() error {
	var missing []string
	if c.apiKey == "" {
		missing = append(missing, EnvAPIKey)
	}
	if c.cx == "" {
		missing = append(missing, EnvCX)
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

func (c *Client) service(ctx context.Context) (*customsearch.Service, error) {
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient := *c.httpClient
	httpClient.Transport = &apiKeyTransport{key: c.apiKey, base: base}

	opts := []option.ClientOption{option.WithHTTPClient(&httpClient)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	return customsearch.NewService(ctx, opts...)
}

// Search returns up to n results for query. n is clamped to [1, MaxNum].
func (c *Client) Search(ctx context.Context, query string, n int) ([]Result, error) {
	if err := c.checkCredentials(); err != nil {
		return nil, err
	}
	n = min(max(n, 1), MaxNum)

	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent(observability.EventHTTPRequestStart,
			observability.String(observability.AttrSearchQuery, query),
			observability.Int(observability.AttrSearchResults, n),
		)
	}

	svc, err := c.service(ctx)
	if err != nil {
		return nil, fmt.Errorf("googlesearch: create service: %w", err)
	}

	resp, err := svc.Cse.List().Q(query).Cx(c.cx).Num(int64(n)).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("googlesearch: %w", &utils.StatusError{StatusCode: apiErr.Code, Body: apiErr.Message})
		}
		return nil, fmt.Errorf("googlesearch: %w", err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Link == "" {
			continue
		}
		results = append(results, Result{URL: item.Link, Title: item.Title, Snippet: item.Snippet})
		if len(results) == n {
			break
		}
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPRequestEnd,
			observability.String(observability.AttrSearchQuery, query),
			observability.Int(observability.AttrSearchResults, len(results)),
		)
	}
	return results, nil
}

// apiKeyTransport adds the key query parameter to every request.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	q := clone.URL.Query()
	q.Set("key", t.key)
	clone.URL.RawQuery = q.Encode()
	return t.base.RoundTrip(clone)
}
