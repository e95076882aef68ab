package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var errNotWrapped = errors.New("not a schema-wrapped value")

// ParseStringAs parses content into T.
//
// Primitive kinds (string, bool, integers, floats) are converted directly.
// Everything else is decoded as JSON; when decoding fails the content is run
// through jsonrepair and decoded again, and as a last resort values the model
// wrapped as {"type": ..., "value": ...} are unwrapped.
//
//	args, err := ParseStringAs[SearchInput](`{query: 'weather London', num_results: 3}`)
//	n, err := ParseStringAs[int]("42")
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	if kind := target.Kind(); isPrimitive(kind) {
		if err := setPrimitive(target, content); err != nil {
			unwrapped, unwrapErr := tryUnwrapPrimitive(content)
			if unwrapErr != nil || setPrimitive(target, unwrapped) != nil {
				return result, fmt.Errorf("parse content as %s: %w", kind, err)
			}
		}
		return result, nil
	}

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("unmarshal content as %T: %w (repair failed: %v)", result, err, repairErr)
	}

	// reset partial writes from the first attempt
	result = *new(T)
	if err = json.Unmarshal([]byte(repaired), &result); err == nil {
		return result, nil
	}

	if unwrapped, unwrapErr := unwrapSchemaValues(repaired); unwrapErr == nil {
		result = *new(T)
		if json.Unmarshal([]byte(unwrapped), &result) == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("unmarshal repaired content as %T: %w (repaired: %s)", result, err, repaired)
}

func isPrimitive(kind reflect.Kind) bool {
	switch kind {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func setPrimitive(target reflect.Value, content string) error {
	if target.Kind() != reflect.String {
		content = strings.TrimSpace(content)
	}

	switch target.Kind() {
	case reflect.String:
		// a schema-wrapped string still yields its inner value
		if strings.HasPrefix(content, "{") {
			if unwrapped, err := tryUnwrapPrimitive(content); err == nil {
				content = unwrapped
			}
		}
		target.SetString(content)
	case reflect.Bool:
		v, err := strconv.ParseBool(content)
		if err != nil {
			return err
		}
		target.SetBool(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(content, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetFloat(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(content, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetInt(v)
	default:
		v, err := strconv.ParseUint(content, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetUint(v)
	}
	return nil
}

// tryUnwrapPrimitive returns the textual value of a {"type": ..., "value": ...}
// wrapper.
func tryUnwrapPrimitive(content string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", err
	}
	value, ok := wrappedValue(data)
	if !ok {
		return "", errNotWrapped
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case float64, bool:
		return fmt.Sprint(v), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}

// unwrapSchemaValues rewrites
//
//	{"query": {"type": "string", "value": "weather"}}
//
// into
//
//	{"query": "weather"}
//
// recursively.
func unwrapSchemaValues(jsonStr string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}
	raw, err := json.Marshal(recursiveUnwrap(data))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func recursiveUnwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if inner, ok := wrappedValue(v); ok {
			return recursiveUnwrap(inner)
		}
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = recursiveUnwrap(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = recursiveUnwrap(val)
		}
		return out
	default:
		return data
	}
}

func wrappedValue(m map[string]any) (any, bool) {
	if len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}
