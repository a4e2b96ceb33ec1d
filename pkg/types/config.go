package types

import "github.com/google/uuid"

// ToolSearchConfigResult is the {success, data?, message?} envelope
// returned by the tool-search config CRUD surface.
type ToolSearchConfigResult struct {
	Success bool             `json:"success"`
	Data    *ToolSearchData  `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
}

// ToolSearchData is the payload of a successful get/upsert call.
type ToolSearchData struct {
	NamespaceUUID  uuid.UUID      `json:"namespace_uuid"`
	MaxResults     int            `json:"max_results"`
	ProviderConfig map[string]any `json:"provider_config,omitempty"`
}

// UpsertToolSearchConfigInput is the request body for upsert.
type UpsertToolSearchConfigInput struct {
	NamespaceUUID  uuid.UUID      `json:"namespace_uuid"`
	MaxResults     int            `json:"max_results"`
	ProviderConfig map[string]any `json:"provider_config"`
}

// UpdateToolDeferLoadingInput is the request body for updateToolDeferLoading.
type UpdateToolDeferLoadingInput struct {
	NamespaceUUID uuid.UUID            `json:"namespace_uuid"`
	ToolUUID      uuid.UUID            `json:"tool_uuid"`
	ServerUUID    uuid.UUID            `json:"server_uuid"`
	DeferLoading  DeferLoadingBehavior `json:"defer_loading"`
}

// OperationResult is the {success, message?} envelope returned by
// mutating CRUD operations that carry no payload.
type OperationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
