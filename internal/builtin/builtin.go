// Package builtin implements the two built-in virtual MCP tools,
// search_tools (§4.C) and execute_tool (§4.D), and the cycle-safety rule
// that execute_tool must refuse both BY NAME rather than by inspecting
// tool metadata (§9).
package builtin

import (
	"context"

	"github.com/mcpmux/mcpmux/pkg/types"
	"go.uber.org/zap"
)

const (
	SearchToolsName  = "search_tools"
	ExecuteToolName  = "execute_tool"
)

// ProxyFunction delegates a validated call to the upstream MCP server that
// actually owns the tool. It is an external collaborator: §1 scopes "the
// actual proxying of a tool call" out of the core. Its shape matches the
// teacher's MCPService.InvokeTool.
type ProxyFunction func(ctx context.Context, toolName string, args map[string]any) (*types.ToolInvokeResult, error)

// SearchService is the subset of internal/search.Service the built-ins
// need. Declared as an interface here, rather than importing the concrete
// type, to keep internal/builtin decoupled from internal/search's cache
// internals.
type SearchService interface {
	Search(
		ctx context.Context,
		query types.SearchQuery,
		availableTools []types.AvailableTool,
		resolved types.ResolvedConfig,
	) ([]types.SearchResult, error)
}

// Builtins holds the collaborators the built-ins dispatch through: the
// search service and the proxy. The pool of tools a request may discover
// or execute is passed in on each call.
type Builtins struct {
	search SearchService
	proxy  ProxyFunction
	logger *zap.Logger
}

// New returns a Builtins wired to search and proxy. logger may be nil.
func New(search SearchService, proxy ProxyFunction, logger *zap.Logger) *Builtins {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builtins{search: search, proxy: proxy, logger: logger}
}

// IsBuiltin reports whether name is one of the two built-in tools. This is
// the cycle-safety check execute_tool uses: by name, never by inspecting
// metadata on the tool pool.
func (b *Builtins) IsBuiltin(name string) bool {
	return name == SearchToolsName || name == ExecuteToolName
}

// SearchToolsDefinition is the §4.C input-schema definition.
func (b *Builtins) SearchToolsDefinition() types.Tool {
	return types.Tool{
		Name:        SearchToolsName,
		Description: "Search the available tools by name and description.",
		InputSchema: types.ToolInputSchema{
			Type:     "object",
			Required: []string{"query"},
			Properties: map[string]any{
				"query": map[string]any{"type": "string"},
				"max_results": map[string]any{
					"type":    "number",
					"minimum": 1,
					"maximum": 20,
				},
			},
		},
	}
}

// ExecuteToolDefinition is the §4.D input-schema definition.
func (b *Builtins) ExecuteToolDefinition() types.Tool {
	return types.Tool{
		Name:        ExecuteToolName,
		Description: "Execute a tool discovered via search_tools by name.",
		InputSchema: types.ToolInputSchema{
			Type:     "object",
			Required: []string{"tool_name", "arguments"},
			Properties: map[string]any{
				"tool_name": map[string]any{"type": "string"},
				"arguments": map[string]any{
					"type":                 "object",
					"additionalProperties": true,
				},
			},
		},
	}
}
