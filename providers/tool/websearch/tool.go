package websearch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leofalp/jarvis/providers/tool"
)

// ToolName is the catalog name of the web search tool.
const ToolName = "web_search"

// Input is the argument shape of web_search.
type Input struct {
	Query      string `json:"query" jsonschema:"description=What to search the web for,required"`
	NumResults int    `json:"num_results,omitempty" jsonschema:"description=How many pages to read (default 3 and at most 5),default=3,minimum=1,maximum=5"`
}

func (in *Input) Normalize() error {
	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return errors.New("query is required")
	}
	if in.NumResults <= 0 {
		in.NumResults = DefaultResults
	}
	return nil
}

// NewTool binds p as web_search.
func NewTool(p *Pipeline) *tool.Tool[Input] {
	return tool.NewTool(ToolName,
		func(ctx context.Context, in Input) (string, error) {
			summary, err := p.Search(ctx, in.Query, in.NumResults)
			if err != nil {
				return "", err
			}
			if summary.NoResults {
				return summary.String(), nil
			}
			return fmt.Sprintf("Search results for %q:\n\n%s", summary.Query, summary.String()), nil
		},
		tool.WithDescription("Search the internet and read the top pages. Use it for current events, weather, prices and anything you do not know for certain."),
	)
}
