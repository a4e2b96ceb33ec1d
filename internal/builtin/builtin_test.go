package builtin

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/pkg/types"
	"github.com/stretchr/testify/require"
)

type stubSearchService struct {
	results []types.SearchResult
	err     error
}

func (s stubSearchService) Search(
	ctx context.Context, query types.SearchQuery, availableTools []types.AvailableTool, resolved types.ResolvedConfig,
) ([]types.SearchResult, error) {
	return s.results, s.err
}

func weatherTool() types.AvailableTool {
	return types.AvailableTool{
		Tool: types.Tool{
			Name:        "weather_lookup",
			Description: "fetch the weather",
			InputSchema: types.ToolInputSchema{
				Type:     "object",
				Required: []string{"city"},
				Properties: map[string]any{
					"city": map[string]any{"type": "string"},
				},
			},
		},
		ServerUUID: uuid.New(),
	}
}

func TestExecuteTool_UnknownToolReturnsIsErrorResult(t *testing.T) {
	b := New(stubSearchService{}, nil, nil)

	result := b.ExecuteTool(context.Background(), map[string]any{
		"tool_name": "does_not_exist",
		"arguments": map[string]any{},
	}, []types.AvailableTool{weatherTool()})

	require.True(t, result.IsError)
	require.Contains(t, result.Content[0]["text"], `Tool "does_not_exist" not found`)
	require.Contains(t, result.Content[0]["text"], "weather_lookup")
}

func TestExecuteTool_SchemaInvalidArgumentsReturnsIsErrorResult(t *testing.T) {
	b := New(stubSearchService{}, nil, nil)

	result := b.ExecuteTool(context.Background(), map[string]any{
		"tool_name": "weather_lookup",
		"arguments": map[string]any{},
	}, []types.AvailableTool{weatherTool()})

	require.True(t, result.IsError)
	require.Contains(t, result.Content[0]["text"], "Argument validation failed")
	require.Contains(t, result.Content[0]["text"], "city")
}

func TestExecuteTool_MalformedArgsEnvelopeReturnsIsErrorResult(t *testing.T) {
	b := New(stubSearchService{}, nil, nil)

	result := b.ExecuteTool(context.Background(), map[string]any{
		"tool_name": 5,
	}, []types.AvailableTool{weatherTool()})

	require.True(t, result.IsError)
	require.Contains(t, result.Content[0]["text"], "Invalid arguments")
}

func TestExecuteTool_RefusesBuiltinsByNameBeforeLookingThemUp(t *testing.T) {
	b := New(stubSearchService{}, nil, nil)

	result := b.ExecuteTool(context.Background(), map[string]any{
		"tool_name": SearchToolsName,
		"arguments": map[string]any{},
	}, nil)

	require.True(t, result.IsError)
	require.Contains(t, result.Content[0]["text"], "Cannot execute builtin tool")
}

func TestExecuteTool_ValidCallDelegatesToProxy(t *testing.T) {
	var gotToolName string
	var gotArgs map[string]any
	proxy := func(ctx context.Context, toolName string, args map[string]any) (*types.ToolInvokeResult, error) {
		gotToolName = toolName
		gotArgs = args
		return types.TextResult("it is sunny", false), nil
	}

	b := New(stubSearchService{}, proxy, nil)
	result := b.ExecuteTool(context.Background(), map[string]any{
		"tool_name": "weather_lookup",
		"arguments": map[string]any{"city": "paris"},
	}, []types.AvailableTool{weatherTool()})

	require.False(t, result.IsError)
	require.Equal(t, "weather_lookup", gotToolName)
	require.Equal(t, "paris", gotArgs["city"])
	require.Equal(t, "it is sunny", result.Content[0]["text"])
}

func TestExecuteTool_ProxyErrorBecomesIsErrorResultNotGoError(t *testing.T) {
	proxy := func(ctx context.Context, toolName string, args map[string]any) (*types.ToolInvokeResult, error) {
		return nil, errors.New("upstream unreachable")
	}

	b := New(stubSearchService{}, proxy, nil)
	result := b.ExecuteTool(context.Background(), map[string]any{
		"tool_name": "weather_lookup",
		"arguments": map[string]any{"city": "paris"},
	}, []types.AvailableTool{weatherTool()})

	require.True(t, result.IsError)
	require.Contains(t, result.Content[0]["text"], "upstream unreachable")
}

func TestSearchTools_PropagatesProviderErrorsRatherThanSwallowingThem(t *testing.T) {
	b := New(stubSearchService{err: errors.New("index build failed")}, nil, nil)

	_, err := b.SearchTools(context.Background(), map[string]any{"query": "weather"}, nil, types.ResolvedConfig{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "index build failed")
}

func TestSearchTools_ReturnsToolReferenceContentBlocks(t *testing.T) {
	results := []types.SearchResult{
		{Tool: types.Tool{Name: "weather_lookup", Description: "fetch weather"}, Score: 0.9, MatchReason: "name match"},
	}
	b := New(stubSearchService{results: results}, nil, nil)

	result, err := b.SearchTools(context.Background(), map[string]any{"query": "weather"}, nil, types.ResolvedConfig{MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	require.Equal(t, "tool_reference", result.Content[0]["type"])
	require.Equal(t, "weather_lookup", result.Content[0]["name"])
}

func TestSearchTools_MaxResultsArgOverridesResolvedDefault(t *testing.T) {
	var captured types.SearchQuery
	search := &capturingSearchService{}
	b := New(search, nil, nil)

	_, err := b.SearchTools(context.Background(), map[string]any{
		"query":       "weather",
		"max_results": float64(3),
	}, nil, types.ResolvedConfig{MaxResults: 5})
	require.NoError(t, err)

	captured = search.lastQuery
	require.Equal(t, 3, captured.MaxResults)
}

type capturingSearchService struct {
	lastQuery types.SearchQuery
}

func (c *capturingSearchService) Search(
	ctx context.Context, query types.SearchQuery, availableTools []types.AvailableTool, resolved types.ResolvedConfig,
) ([]types.SearchResult, error) {
	c.lastQuery = query
	return nil, nil
}

func TestIsBuiltin(t *testing.T) {
	b := New(stubSearchService{}, nil, nil)
	require.True(t, b.IsBuiltin(SearchToolsName))
	require.True(t, b.IsBuiltin(ExecuteToolName))
	require.False(t, b.IsBuiltin("weather_lookup"))
}
