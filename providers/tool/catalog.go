package tool

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/ai"
)

// DefaultMaxResultLength caps the text a single tool call contributes to the
// conversation.
const DefaultMaxResultLength = 16000

// Catalog is a thread-safe registry of tools. Names are matched
// case-insensitively and tools are advertised in registration order.
type Catalog struct {
	mu              sync.RWMutex
	tools           map[string]GenericTool
	order           []string
	maxResultLength int
}

// NewCatalog returns an empty catalog ready for concurrent use.
// Results are capped at [DefaultMaxResultLength] until
// [Catalog.SetMaxResultLength] says otherwise.
func NewCatalog() *Catalog {
	return &Catalog{
		tools:           make(map[string]GenericTool),
		maxResultLength: DefaultMaxResultLength,
	}
}

// NewCatalogWithTools returns a catalog holding tools in the given order.
// It is shorthand for [NewCatalog] followed by [Catalog.AddTools], and the
// order passed here is the order the model sees.
func NewCatalogWithTools(tools ...GenericTool) *Catalog {
	catalog := NewCatalog()
	catalog.AddTools(tools...)
	return catalog
}

// AddTools registers tools under their ToolInfo().Name, appending new names
// to the advertised order. A tool whose name is already registered, compared
// case-insensitively, replaces the old one and keeps the original position,
// so re-registering never reorders the catalog.
func (c *Catalog) AddTools(tools ...GenericTool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tools {
		key := strings.ToLower(t.ToolInfo().Name)
		if _, exists := c.tools[key]; !exists {
			c.order = append(c.order, key)
		}
		c.tools[key] = t
	}
}

// Get returns the tool registered under name and whether it exists.
// The lookup is case-insensitive, matching how Dispatch resolves the names
// the model sends back.
func (c *Catalog) Get(name string) (GenericTool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tool, exists := c.tools[strings.ToLower(name)]
	return tool, exists
}

// Has reports whether a tool is registered under name.
// Like Get, the comparison ignores case.
func (c *Catalog) Has(name string) bool {
	_, exists := c.Get(name)
	return exists
}

// Remove unregisters the tool under name and reports whether it was present.
// The remaining tools keep their relative order. Later Dispatch calls for the
// removed name fail with *UnknownToolError.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(name)
	if _, exists := c.tools[key]; !exists {
		return false
	}
	delete(c.tools, key)
	c.order = slices.DeleteFunc(c.order, func(n string) bool { return n == key })
	return true
}

// Size returns the number of registered tools.
// It is safe to call while other goroutines add or remove tools.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}

// Names returns the registered names in registration order, spelled as each
// tool declares them. The slice is a fresh copy and may be modified freely.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.order))
	for _, key := range c.order {
		names = append(names, c.tools[key].ToolInfo().Name)
	}
	return names
}

// Descriptions returns the definitions sent to the completion service in the
// tools field, in registration order. Each entry carries the name,
// description and the JSON Schema reflected from the tool's input type. The
// slice is a fresh copy.
func (c *Catalog) Descriptions() []ai.ToolDescription {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ai.ToolDescription, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.tools[key].ToolInfo())
	}
	return out
}

// SetMaxResultLength changes the per-call result cap, counted in runes.
// n <= 0 restores [DefaultMaxResultLength]. The new cap applies to calls
// dispatched after it returns.
func (c *Catalog) SetMaxResultLength(n int) {
	if n <= 0 {
		n = DefaultMaxResultLength
	}
	c.mu.Lock()
	c.maxResultLength = n
	c.mu.Unlock()
}

// Dispatch runs the tool registered under name with the raw JSON arguments
// sent by the model.
//
// An unknown name returns *UnknownToolError and bad arguments return
// *ArgumentError. Any other failure of the capability itself is folded into
// the returned text with a nil error. Results longer than the configured cap
// are truncated.
func (c *Catalog) Dispatch(ctx context.Context, name, rawArguments string) (string, error) {
	tool, ok := c.Get(name)
	if !ok {
		return "", &UnknownToolError{Name: name}
	}

	result, err := tool.Call(ctx, rawArguments)
	if err != nil {
		var argErr *ArgumentError
		if errors.As(err, &argErr) {
			return "", argErr
		}
		result = FoldError(err)
	}

	c.mu.RLock()
	limit := c.maxResultLength
	c.mu.RUnlock()
	return utils.TruncateString(result, limit), nil
}
