// Package jsonschema generates the JSON Schema documents that describe tool
// parameters to the completion service.
//
// The main entry point is [GenerateJSONSchema], which derives a [Schema] from
// any Go type T by reflection. Field metadata (description, enum, default,
// minimum, maximum, required) is read from the jsonschema struct tag.
package jsonschema
