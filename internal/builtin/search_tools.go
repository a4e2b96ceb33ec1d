package builtin

import (
	"context"
	"fmt"

	"github.com/mcpmux/mcpmux/pkg/types"
)

// SearchTools implements component C. Unlike execute_tool, it never
// swallows provider errors into an isError result — §7 requires they
// propagate to the caller.
func (b *Builtins) SearchTools(
	ctx context.Context,
	args map[string]any,
	availableTools []types.AvailableTool,
	resolved types.ResolvedConfig,
) (*types.ToolInvokeResult, error) {
	query, _ := args["query"].(string)

	maxResults := resolved.MaxResults
	if raw, ok := args["max_results"]; ok {
		if n, ok := toInt(raw); ok {
			maxResults = n
		}
	}

	results, err := b.search.Search(ctx, types.SearchQuery{
		Query:      query,
		MaxResults: maxResults,
	}, availableTools, resolved)
	if err != nil {
		return nil, fmt.Errorf("search_tools failed: %w", err)
	}

	content := make([]map[string]any, 0, len(results))
	for _, r := range results {
		content = append(content, map[string]any{
			"type":        "tool_reference",
			"name":        r.Tool.Name,
			"description": referenceDescription(r),
		})
	}

	return &types.ToolInvokeResult{Content: content}, nil
}

func referenceDescription(r types.SearchResult) string {
	desc := r.Tool.Description
	if desc == "" {
		desc = "No description available"
	}
	return fmt.Sprintf("%s (score: %.2f, %s)", desc, r.Score, r.MatchReason)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}
