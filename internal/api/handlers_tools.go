package api

import (
	"net/http"

	"github.com/mcpmux/mcpmux/internal/builtin"
	"github.com/mcpmux/mcpmux/internal/upstream"
	"github.com/mcpmux/mcpmux/pkg/types"

	"github.com/gin-gonic/gin"
)

// listToolsHandler advertises the tool pool for an endpoint: live upstream
// discovery (internal/upstream.DiscoverAvailableTools) feeding the resolved
// config's defer-loading/visibility pipeline (internal/middleware), per §4.F.
func (s *Server) listToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpointID, ok := parseUUIDParam(c, "endpointUuid")
		if !ok {
			return
		}

		endpoint, err := s.opts.Store.FindEndpoint(c.Request.Context(), endpointID)
		if err != nil {
			writeAppError(c, err)
			return
		}

		resolved := s.opts.ResolverCache.GetResolvedConfig(c.Request.Context(), endpoint.NamespaceID, endpointID)

		available, err := upstream.DiscoverAvailableTools(
			c.Request.Context(), s.opts.ServersReader, endpoint.NamespaceID, s.opts.InitReqTimeoutSec, s.logger,
		)
		if err != nil {
			writeAppError(c, err)
			return
		}

		upstreamTools := make([]types.Tool, len(available))
		for i, at := range available {
			upstreamTools[i] = at.Tool
		}

		advertised := s.opts.Middleware.Apply(upstreamTools, resolved)
		c.JSON(http.StatusOK, gin.H{"tools": advertised})
	}
}

// callToolHandler implements the dispatch rule: search_tools and
// execute_tool are handled by the built-ins (§4.C, §4.D); any other name is
// a direct call to an advertised (non-deferred) upstream tool, proxied
// straight through without going via execute_tool.
func (s *Server) callToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpointID, ok := parseUUIDParam(c, "endpointUuid")
		if !ok {
			return
		}

		var body struct {
			ToolName  string         `json:"tool_name"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		endpoint, err := s.opts.Store.FindEndpoint(c.Request.Context(), endpointID)
		if err != nil {
			writeAppError(c, err)
			return
		}

		resolved := s.opts.ResolverCache.GetResolvedConfig(c.Request.Context(), endpoint.NamespaceID, endpointID)

		available, err := upstream.DiscoverAvailableTools(
			c.Request.Context(), s.opts.ServersReader, endpoint.NamespaceID, s.opts.InitReqTimeoutSec, s.logger,
		)
		if err != nil {
			writeAppError(c, err)
			return
		}

		var result *types.ToolInvokeResult
		switch body.ToolName {
		case builtin.SearchToolsName:
			result, err = s.opts.Builtins.SearchTools(c.Request.Context(), body.Arguments, available, resolved)
			if err != nil {
				writeAppError(c, err)
				return
			}
		case builtin.ExecuteToolName:
			result = s.opts.Builtins.ExecuteTool(c.Request.Context(), body.Arguments, available)
		default:
			result, err = s.opts.Proxy(c.Request.Context(), body.ToolName, body.Arguments)
			if err != nil {
				result = types.TextResult(err.Error(), true)
			}
		}

		c.JSON(http.StatusOK, result)
	}
}
