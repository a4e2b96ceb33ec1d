package middleware

import (
	"testing"

	"github.com/mcpmux/mcpmux/pkg/types"
	"github.com/stretchr/testify/require"
)

const (
	searchToolsName  = "search_tools"
	executeToolName  = "execute_tool"
)

type stubBuiltins struct{}

func (stubBuiltins) SearchToolsDefinition() types.Tool {
	return types.Tool{Name: searchToolsName, Description: "search"}
}

func (stubBuiltins) ExecuteToolDefinition() types.Tool {
	return types.Tool{Name: executeToolName, Description: "execute"}
}

func (stubBuiltins) IsBuiltin(name string) bool {
	return name == searchToolsName || name == executeToolName
}

func findTool(tools []types.AdvertisedTool, name string) *types.AdvertisedTool {
	for i := range tools {
		if tools[i].Name == name {
			return &tools[i]
		}
	}
	return nil
}

func TestPipeline_InjectsSearchToolsOnlyWhenDeferLoadingEnabledAndSearchable(t *testing.T) {
	p := New(stubBuiltins{}, nil)
	upstream := []types.Tool{{Name: "weather_lookup"}}

	out := p.Apply(upstream, types.ResolvedConfig{DeferLoadingEnabled: true, SearchMethod: types.SearchMethodBM25})
	require.NotNil(t, findTool(out, searchToolsName))

	out = p.Apply(upstream, types.ResolvedConfig{DeferLoadingEnabled: true, SearchMethod: types.SearchMethodNone})
	require.Nil(t, findTool(out, searchToolsName), "search_tools must not be injected when the search method is NONE")

	out = p.Apply(upstream, types.ResolvedConfig{DeferLoadingEnabled: false, SearchMethod: types.SearchMethodBM25})
	require.Nil(t, findTool(out, searchToolsName), "search_tools must not be injected when defer-loading is disabled")
}

func TestPipeline_ExecuteToolOnlyAdvertisedWithOption(t *testing.T) {
	upstream := []types.Tool{{Name: "weather_lookup"}}

	out := New(stubBuiltins{}, nil).Apply(upstream, types.ResolvedConfig{})
	require.Nil(t, findTool(out, executeToolName))

	out = New(stubBuiltins{}, nil, WithExecuteToolAdvertised()).Apply(upstream, types.ResolvedConfig{})
	require.NotNil(t, findTool(out, executeToolName))
}

func TestPipeline_DeferLoadingOverridesWinOverNamespaceDefault(t *testing.T) {
	p := New(stubBuiltins{}, nil)
	upstream := []types.Tool{{Name: "enabled_override"}, {Name: "disabled_override"}, {Name: "no_override"}}

	out := p.Apply(upstream, types.ResolvedConfig{
		DeferLoadingEnabled: true,
		SearchMethod:        types.SearchMethodBM25,
		ToolOverrides: map[string]bool{
			"enabled_override":  true,
			"disabled_override": false,
		},
	})

	deferred := findTool(out, "enabled_override")
	require.NotNil(t, deferred.DeferLoading)
	require.True(t, *deferred.DeferLoading)

	notDeferred := findTool(out, "disabled_override")
	require.Nil(t, notDeferred.DeferLoading, "an explicit DISABLED override must win even though the namespace defaults defer-loading on")

	inherited := findTool(out, "no_override")
	require.NotNil(t, inherited.DeferLoading, "a tool with no override should fall back to the namespace default")
}

func TestPipeline_BuiltinsAreNeverDeferred(t *testing.T) {
	p := New(stubBuiltins{}, nil, WithExecuteToolAdvertised())
	upstream := []types.Tool{{Name: "weather_lookup"}}

	out := p.Apply(upstream, types.ResolvedConfig{DeferLoadingEnabled: true, SearchMethod: types.SearchMethodBM25})

	search := findTool(out, searchToolsName)
	require.NotNil(t, search)
	require.Nil(t, search.DeferLoading)

	exec := findTool(out, executeToolName)
	require.NotNil(t, exec)
	require.Nil(t, exec.DeferLoading)
}

func TestPipeline_SearchOnlyVisibilityHidesEverythingButBuiltins(t *testing.T) {
	p := New(stubBuiltins{}, nil, WithExecuteToolAdvertised())
	upstream := []types.Tool{{Name: "weather_lookup"}}

	out := p.Apply(upstream, types.ResolvedConfig{
		DeferLoadingEnabled: true,
		SearchMethod:        types.SearchMethodBM25,
		ToolVisibility:      types.ToolVisibilitySearchOnly,
	})

	require.Nil(t, findTool(out, "weather_lookup"))
	require.NotNil(t, findTool(out, searchToolsName))
	require.NotNil(t, findTool(out, executeToolName))
}

func TestPipeline_AllVisibilityPassesEverythingThrough(t *testing.T) {
	p := New(stubBuiltins{}, nil)
	upstream := []types.Tool{{Name: "weather_lookup"}}

	out := p.Apply(upstream, types.ResolvedConfig{ToolVisibility: types.ToolVisibilityAll})
	require.NotNil(t, findTool(out, "weather_lookup"))
}
