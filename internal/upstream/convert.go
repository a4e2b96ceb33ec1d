package upstream

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpmux/mcpmux/pkg/types"
)

// convertToolCallResult adapts an upstream mcp.CallToolResult into the
// types.ToolInvokeResult shape every other component consumes, grounded on
// the teacher's convertToolCallResToAPIRes/convertToolCallRespContent/
// convertMCPMetaToMap trio (internal/service/mcp/tool.go).
func convertToolCallResult(resp *mcp.CallToolResult) *types.ToolInvokeResult {
	return &types.ToolInvokeResult{
		Meta:              convertMeta(resp.Meta),
		IsError:           resp.IsError,
		Content:           convertContent(resp.Content),
		StructuredContent: resp.StructuredContent,
	}
}

func convertContent(content []mcp.Content) []map[string]any {
	contentList := make([]map[string]any, 0, len(content))
	for _, item := range content {
		serialized, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var contentMap map[string]any
		if err := json.Unmarshal(serialized, &contentMap); err != nil {
			continue
		}
		contentList = append(contentList, contentMap)
	}
	return contentList
}

func convertMeta(meta *mcp.Meta) map[string]any {
	if meta == nil {
		return nil
	}

	metaMap := make(map[string]any)
	for k, v := range meta.AdditionalFields {
		metaMap[k] = v
	}
	if meta.ProgressToken != nil {
		metaMap["progressToken"] = meta.ProgressToken
	}
	if len(metaMap) == 0 {
		return nil
	}
	return metaMap
}
