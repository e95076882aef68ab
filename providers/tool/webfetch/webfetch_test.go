package webfetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

const articlePage = `<html><head><title>Weather in London</title></head>
<body><nav><p>Home | News | Sport | Weather | Contact</p></nav>
<article><p>Expect light rain in London throughout the afternoon.</p></article>
</body></html>`

func newFetcherForServer(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Fetcher, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewFetcher(opts...), server.URL
}

func expectError(t *testing.T, result PageResult, kind ErrorKind) *PageError {
	t.Helper()
	pageErr, ok := result.(*PageError)
	if !ok {
		t.Fatalf("result = %T, want *PageError", result)
	}
	if pageErr.Kind != kind {
		t.Fatalf("Kind = %v, want %v (err: %v)", pageErr.Kind, kind, pageErr.Err)
	}
	return pageErr
}

func TestFetch_Success(t *testing.T) {
	var headers http.Header
	f, url := newFetcherForServer(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, articlePage)
	})

	result := f.Fetch(context.Background(), url)
	page, ok := result.(*Page)
	if !ok {
		t.Fatalf("result = %#v, want *Page", result)
	}
	if page.URL != url || page.PageURL() != url {
		t.Errorf("URL = %q, want %q", page.URL, url)
	}
	if page.Status != http.StatusOK {
		t.Errorf("Status = %d", page.Status)
	}
	if page.Metadata.Title != "Weather in London" {
		t.Errorf("Title = %q", page.Metadata.Title)
	}
	if page.Content != "Expect light rain in London throughout the afternoon." {
		t.Errorf("Content = %q", page.Content)
	}
	if page.ContentLength != len([]rune(page.Content)) {
		t.Errorf("ContentLength = %d", page.ContentLength)
	}

	if got := headers.Get("User-Agent"); got != DefaultUserAgent {
		t.Errorf("User-Agent = %q", got)
	}
	if got := headers.Get("Accept-Language"); got != DefaultAcceptLanguage {
		t.Errorf("Accept-Language = %q", got)
	}
	if got := headers.Get("Accept"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Accept = %q", got)
	}
}

// TestFetch_Windows1251 verifies that a page declared in a legacy charset is
// decoded to UTF-8 before extraction.
func TestFetch_Windows1251(t *testing.T) {
	text := "Сегодня в Лондоне ожидается небольшой дождь."
	body, err := charmap.Windows1251.NewEncoder().String(
		`<html><head><title>Погода</title></head><body><article><p>` + text + `</p></article></body></html>`)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	f, url := newFetcherForServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		_, _ = io.WriteString(w, body)
	})

	page, ok := f.Fetch(context.Background(), url).(*Page)
	if !ok {
		t.Fatal("want *Page")
	}
	if page.Content != text {
		t.Errorf("Content = %q, want %q", page.Content, text)
	}
	if page.Metadata.Title != "Погода" {
		t.Errorf("Title = %q", page.Metadata.Title)
	}
	if page.Charset != "windows-1251" {
		t.Errorf("Charset = %q, want windows-1251", page.Charset)
	}
}

func TestFetch_HTTPStatus(t *testing.T) {
	f, url := newFetcherForServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	pageErr := expectError(t, f.Fetch(context.Background(), url), KindHTTPStatus)
	var statusErr *HTTPStatusError
	if !errors.As(pageErr, &statusErr) {
		t.Fatalf("err = %v, want *HTTPStatusError", pageErr.Err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", statusErr.StatusCode)
	}
}

// TestFetch_InvalidURL verifies that rejected URLs never reach the network.
func TestFetch_InvalidURL(t *testing.T) {
	var requests atomic.Int32
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		requests.Add(1)
		return nil, errors.New("unexpected request")
	})}
	f := NewFetcher(WithHTTPClient(client))

	for _, raw := range []string{"", "ftp://example.com/file", "example.com/page", "https://", "http://[::1"} {
		t.Run(raw, func(t *testing.T) {
			pageErr := expectError(t, f.Fetch(context.Background(), raw), KindInvalidURL)
			var urlErr *InvalidURLError
			if !errors.As(pageErr, &urlErr) {
				t.Errorf("err = %v, want *InvalidURLError", pageErr.Err)
			}
			if pageErr.PageURL() != raw {
				t.Errorf("PageURL = %q, want %q", pageErr.PageURL(), raw)
			}
		})
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("made %d requests, want 0", n)
	}
}

func TestFetch_Timeout(t *testing.T) {
	f, url := newFetcherForServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, WithTimeout(50*time.Millisecond))

	expectError(t, f.Fetch(context.Background(), url), KindTimeout)
}

func TestFetch_NetworkError(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	f := NewFetcher(WithHTTPClient(client))

	pageErr := expectError(t, f.Fetch(context.Background(), "https://example.com"), KindNetwork)
	if !strings.Contains(pageErr.Error(), "connection refused") {
		t.Errorf("Error() = %q", pageErr.Error())
	}
}

func TestFetch_RedirectFollowed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, articlePage)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	page, ok := NewFetcher().Fetch(context.Background(), server.URL+"/old").(*Page)
	if !ok {
		t.Fatal("want *Page")
	}
	if page.URL != server.URL+"/old" {
		t.Errorf("URL = %q", page.URL)
	}
	if page.FinalURL != server.URL+"/new" {
		t.Errorf("FinalURL = %q", page.FinalURL)
	}
}

func TestFetch_RedirectLoop(t *testing.T) {
	var hops atomic.Int32
	f, url := newFetcherForServer(t, func(w http.ResponseWriter, r *http.Request) {
		hops.Add(1)
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
	})

	expectError(t, f.Fetch(context.Background(), url+"/loop"), KindNetwork)
	if n := hops.Load(); n != MaxRedirects {
		t.Errorf("hops = %d, want %d", n, MaxRedirects)
	}
}

func TestFetch_BodyLimit(t *testing.T) {
	f, url := newFetcherForServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><body><p>Kept paragraph within the limit.</p><p>`+strings.Repeat("dropped ", 1000)+`</p></body></html>`)
	}, WithMaxBodySize(64))

	page, ok := f.Fetch(context.Background(), url).(*Page)
	if !ok {
		t.Fatal("want *Page")
	}
	if strings.Contains(page.Content, "dropped dropped dropped") {
		t.Errorf("body limit not applied: %d runes", page.ContentLength)
	}
}

func TestFetch_MarkdownFormat(t *testing.T) {
	f, url := newFetcherForServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><body><article><h1>Title</h1><p>Body text.</p></article></body></html>`)
	}, WithFormat(FormatMarkdown))

	page, ok := f.Fetch(context.Background(), url).(*Page)
	if !ok {
		t.Fatal("want *Page")
	}
	if !strings.HasPrefix(page.Content, "# Title") {
		t.Errorf("Content = %q", page.Content)
	}
}

func TestErrorKind_String(t *testing.T) {
	tests := map[ErrorKind]string{
		KindInvalidURL: "invalid URL",
		KindTimeout:    "timeout",
		KindHTTPStatus: "HTTP status",
		KindNetwork:    "network error",
		KindDecode:     "decode error",
		ErrorKind(0):   "unknown error",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
