// Package parse converts raw model output, chiefly tool-call arguments, into
// typed Go values. Arguments produced by a model are sometimes not valid JSON
// (single quotes, unquoted keys, trailing commas, truncation); [ParseStringAs]
// repairs them with jsonrepair before giving up.
package parse
