package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/pkg/types"
)

// getToolSearchConfigHandler implements §6's `get`.
func (s *Server) getToolSearchConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		namespaceID, ok := parseUUIDParam(c, "namespaceUuid")
		if !ok {
			return
		}
		result := s.opts.ToolSearch.Get(c.Request.Context(), namespaceID)
		c.JSON(http.StatusOK, result)
	}
}

// upsertToolSearchConfigHandler implements §6's `upsert`.
func (s *Server) upsertToolSearchConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		namespaceID, ok := parseUUIDParam(c, "namespaceUuid")
		if !ok {
			return
		}

		var body struct {
			MaxResults     int            `json:"max_results"`
			ProviderConfig map[string]any `json:"provider_config"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		result, err := s.opts.ToolSearch.Upsert(c.Request.Context(), types.UpsertToolSearchConfigInput{
			NamespaceUUID:  namespaceID,
			MaxResults:     body.MaxResults,
			ProviderConfig: body.ProviderConfig,
		})
		if err != nil {
			writeAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// updateToolDeferLoadingHandler implements §6's `update`. The caller's
// identity is read from X-Caller-UUID since authentication is an external
// collaborator out of the core's scope.
func (s *Server) updateToolDeferLoadingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		namespaceID, ok := parseUUIDParam(c, "namespaceUuid")
		if !ok {
			return
		}
		serverID, ok := parseUUIDParam(c, "serverUuid")
		if !ok {
			return
		}
		toolID, ok := parseUUIDParam(c, "toolUuid")
		if !ok {
			return
		}

		callerID, err := uuid.Parse(c.GetHeader("X-Caller-UUID"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "X-Caller-UUID header must be a valid UUID"})
			return
		}

		var body struct {
			DeferLoading types.DeferLoadingBehavior `json:"defer_loading"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		result := s.opts.ToolSearch.UpdateToolDeferLoading(c.Request.Context(), callerID, types.UpdateToolDeferLoadingInput{
			NamespaceUUID: namespaceID,
			ServerUUID:    serverID,
			ToolUUID:      toolID,
			DeferLoading:  body.DeferLoading,
		})
		c.JSON(http.StatusOK, result)
	}
}
