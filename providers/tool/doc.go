// Package tool provides the tool registry and dispatcher.
//
// A [Tool] wraps a typed Go function together with its name, description and
// a parameter schema derived from the input type. Input types may implement
// [Normalizer] to apply documented defaults and reject missing fields.
//
// A [Catalog] holds the tools advertised to the model, in registration order,
// and routes each model-issued call through [Catalog.Dispatch]: unknown names
// and malformed arguments are reported as typed errors, while failures of the
// capability itself become part of the result text. [FoldError] renders any
// error as tool-message content.
package tool
