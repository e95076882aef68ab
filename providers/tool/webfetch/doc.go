// Package webfetch downloads web pages and extracts their readable text.
//
// [Fetcher.Fetch] validates the URL before any request, applies a per-page
// timeout, sends browser-like headers, follows at most [MaxRedirects]
// redirects and retries transient failures through [RetryTransport]. The body
// is decoded to UTF-8 from whatever charset the Content-Type header, BOM or
// <meta> tag declares, then handed to [Extract].
//
// Every call yields a [PageResult]: a *[Page] on success or a *[PageError]
// whose [ErrorKind] tells invalid URLs, timeouts, HTTP status failures,
// network errors and decode errors apart.
package webfetch
