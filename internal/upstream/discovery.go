package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/internal/sanitize"
	"github.com/mcpmux/mcpmux/pkg/types"
	"go.uber.org/zap"
)

// ServersReader is the subset of store.Reader discovery needs: the list of
// upstream servers registered for a namespace.
type ServersReader interface {
	ServersByNamespace(ctx context.Context, namespaceID uuid.UUID) ([]model.McpServer, error)
}

// DiscoverAvailableTools connects to every server registered for
// namespaceID and lists its tools, grounded on the teacher's
// registerServerTools (internal/service/mcp/tool.go: c.ListTools(ctx,
// mcp.ListToolsRequest{})). A single unreachable server is logged and
// skipped rather than failing the whole namespace's tool pool.
func DiscoverAvailableTools(
	ctx context.Context, reader ServersReader, namespaceID uuid.UUID, initReqTimeoutSec int, logger *zap.Logger,
) ([]types.AvailableTool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	servers, err := reader.ServersByNamespace(ctx, namespaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers for namespace %s: %w", namespaceID, err)
	}

	var pool []types.AvailableTool
	for i := range servers {
		s := &servers[i]
		session, err := newMcpServerSession(ctx, s, initReqTimeoutSec)
		if err != nil {
			logger.Warn("skipping unreachable upstream server", zap.String("server", s.Name), zap.Error(err))
			continue
		}

		resp, err := session.ListTools(ctx, mcp.ListToolsRequest{})
		closeErr := session.Close()
		if err != nil {
			logger.Warn("failed to list tools from upstream server", zap.String("server", s.Name), zap.Error(err))
			continue
		}
		if closeErr != nil {
			logger.Warn("failed to close upstream session cleanly", zap.String("server", s.Name), zap.Error(closeErr))
		}

		for _, t := range resp.Tools {
			tool := convertUpstreamTool(t)
			tool.Name = sanitize.PublicToolName(s.Name, tool.Name)
			pool = append(pool, types.AvailableTool{Tool: tool, ServerUUID: s.ID})
		}
	}

	return pool, nil
}

// convertUpstreamTool adapts an upstream mcp.Tool into types.Tool. The
// input schema is round-tripped through JSON since mcp.ToolInputSchema and
// types.ToolInputSchema share the same JSON-Schema field names (type,
// properties, required) but are distinct Go types.
func convertUpstreamTool(t mcp.Tool) types.Tool {
	tool := types.Tool{
		Name:        t.Name,
		Description: t.Description,
	}

	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		return tool
	}
	var schema types.ToolInputSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return tool
	}
	tool.InputSchema = schema
	return tool
}
