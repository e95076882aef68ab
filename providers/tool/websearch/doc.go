// Package websearch implements the web_search tool: a search request, then
// a sequential, rate-limited fetch of every hit, then a bounded text summary.
//
// Page failures never abort a search; they show up in the summary as
// "Error fetching <url>: ..." lines in rank order alongside the pages that
// succeeded.
package websearch
