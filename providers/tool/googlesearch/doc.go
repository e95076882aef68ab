// Package googlesearch queries the Google Custom Search JSON API.
//
// A [Client] needs an API key and a programmable search engine id (cx),
// read from GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_CX by [NewClient] or set
// with the builder methods. Without them [Client.Search] fails with a
// [ConfigurationError] wrapping [ErrMissingCredentials].
package googlesearch
