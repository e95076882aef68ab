package webfetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/observability"
)

const (
	// DefaultTimeout bounds a single page fetch, retries included.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent mimics a desktop browser; many sites refuse bare clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	// DefaultAcceptLanguage prefers Russian, then English.
	DefaultAcceptLanguage = "ru-RU,ru;q=0.8,en-US;q=0.5,en;q=0.3"
	// MaxBodySize is the maximum number of body bytes read (10MB). Longer
	// bodies are cut and parsed as is.
	MaxBodySize = 10 * 1024 * 1024
	// MaxRedirects is the redirect hop limit.
	MaxRedirects = 10

	DialTimeout           = 10 * time.Second
	TLSHandshakeTimeout   = 10 * time.Second
	ResponseHeaderTimeout = 10 * time.Second
	IdleConnTimeout       = 90 * time.Second
)

const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// Fetcher downloads pages and extracts their readable content. It is safe
// for concurrent use.
type Fetcher struct {
	client         *http.Client
	timeout        time.Duration
	userAgent      string
	acceptLanguage string
	format         Format
	maxBodySize    int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-page timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithHTTPClient replaces the default client. The redirect cap is applied
// only when the client has no CheckRedirect of its own.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithAcceptLanguage overrides the Accept-Language header.
func WithAcceptLanguage(lang string) Option {
	return func(f *Fetcher) {
		if lang != "" {
			f.acceptLanguage = lang
		}
	}
}

// WithFormat selects plain text (default) or Markdown content.
func WithFormat(format Format) Option {
	return func(f *Fetcher) {
		f.format = format
	}
}

// WithMaxBodySize overrides MaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// NewFetcher returns a Fetcher whose client retries transient failures with
// a RetryTransport.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:        DefaultTimeout,
		userAgent:      DefaultUserAgent,
		acceptLanguage: DefaultAcceptLanguage,
		format:         FormatText,
		maxBodySize:    MaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Transport: NewRetryTransport(defaultTransport())}
	}
	if f.client.CheckRedirect == nil {
		client := *f.client
		client.CheckRedirect = limitRedirects
		f.client = &client
	}
	return f
}

func defaultTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ResponseHeaderTimeout: ResponseHeaderTimeout,
		IdleConnTimeout:       IdleConnTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
	}
}

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= MaxRedirects {
		return errTooManyRedirects
	}
	return nil
}

// Fetch downloads rawURL and extracts its content. It never returns nil:
// failures are reported as *PageError with a Kind.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) PageResult {
	if err := validateURL(rawURL); err != nil {
		return &PageError{URL: rawURL, Kind: KindInvalidURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.fetch(ctx, rawURL)
	if err != nil {
		var pageErr *PageError
		if errors.As(err, &pageErr) {
			f.logFailure(ctx, pageErr)
			return pageErr
		}
		pageErr = &PageError{URL: rawURL, Kind: classify(ctx, err), Err: err}
		f.logFailure(ctx, pageErr)
		return pageErr
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventPageFetched,
			observability.String(observability.AttrHTTPURL, rawURL),
			observability.Int(observability.AttrHTTPStatusCode, page.Status),
			observability.Int(observability.AttrHTTPResponseBodySize, page.ContentLength),
		)
	}
	return page
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &PageError{URL: rawURL, Kind: KindInvalidURL, Err: &InvalidURLError{URL: rawURL, Reason: err.Error()}}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", f.acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &PageError{
			URL:  rawURL,
			Kind: KindHTTPStatus,
			Err:  &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status},
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	encoding, encodingName, _ := charset.DetermineEncoding(body, contentType)
	decoded, err := encoding.NewDecoder().Bytes(body)
	if err != nil {
		return nil, &PageError{URL: rawURL, Kind: KindDecode, Err: fmt.Errorf("decode %s: %w", encodingName, err)}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, &PageError{URL: rawURL, Kind: KindDecode, Err: fmt.Errorf("parse html: %w", err)}
	}

	extraction, err := Extract(doc, ExtractOptions{Format: f.format})
	if err != nil {
		return nil, &PageError{URL: rawURL, Kind: KindDecode, Err: err}
	}

	page := &Page{
		URL:           rawURL,
		Status:        resp.StatusCode,
		Charset:       encodingName,
		Metadata:      extraction.Metadata,
		Content:       extraction.Content,
		ContentLength: utf8.RuneCountInString(extraction.Content),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		if final := resp.Request.URL.String(); final != rawURL {
			page.FinalURL = final
		}
	}
	return page, nil
}

func (f *Fetcher) logFailure(ctx context.Context, pageErr *PageError) {
	if logger := observability.ObserverFromContext(ctx); logger != nil {
		logger.Warn(ctx, "Page fetch failed",
			observability.String(observability.AttrHTTPURL, pageErr.URL),
			observability.String(observability.AttrFetchErrorKind, pageErr.Kind.String()),
			observability.Error(pageErr.Err),
		)
	}
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return &InvalidURLError{URL: rawURL, Reason: "empty URL"}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return &InvalidURLError{URL: rawURL, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &InvalidURLError{URL: rawURL, Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return &InvalidURLError{URL: rawURL, Reason: "missing host"}
	}
	return nil
}

func classify(ctx context.Context, err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
