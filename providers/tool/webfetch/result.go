package webfetch

import (
	"errors"
	"fmt"
)

// PageResult is the outcome of fetching one URL: either *Page or *PageError,
// never both.
type PageResult interface {
	// PageURL returns the URL that was requested.
	PageURL() string
	isPageResult()
}

// Metadata holds the document-level fields read from <head>.
type Metadata struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Keywords      string `json:"keywords,omitempty"`
	OGTitle       string `json:"og_title,omitempty"`
	OGDescription string `json:"og_description,omitempty"`
}

// Page is a successfully fetched and extracted page.
type Page struct {
	URL           string   `json:"url"`
	FinalURL      string   `json:"final_url,omitempty"` // after redirects
	Status        int      `json:"status"`
	Charset       string   `json:"charset,omitempty"`
	Metadata      Metadata `json:"metadata"`
	Content       string   `json:"content"`
	ContentLength int      `json:"content_length"` // in runes
}

func (p *Page) PageURL() string { return p.URL }
func (*Page) isPageResult()     {}

// ErrorKind classifies why a page could not be fetched.
type ErrorKind int

const (
	KindInvalidURL ErrorKind = iota + 1
	KindTimeout
	KindHTTPStatus
	KindNetwork
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid URL"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "HTTP status"
	case KindNetwork:
		return "network error"
	case KindDecode:
		return "decode error"
	default:
		return "unknown error"
	}
}

// PageError is a failed fetch. It is also an error, so callers may return it
// directly.
type PageError struct {
	URL  string
	Kind ErrorKind
	Err  error
}

func (e *PageError) PageURL() string { return e.URL }
func (*PageError) isPageResult()     {}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// InvalidURLError reports a URL rejected before any request was made.
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %q: %s", e.URL, e.Reason)
}

// HTTPStatusError reports a non-2xx final response.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	if e.Status != "" {
		return "unexpected status " + e.Status
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// errTooManyRedirects is returned by the redirect policy.
var errTooManyRedirects = errors.New("stopped after 10 redirects")
