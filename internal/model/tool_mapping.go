package model

import (
	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/pkg/types"
	"gorm.io/gorm"
)

// ToolMappingStatus is whether a tool mapping currently participates in the
// advertised tool set.
type ToolMappingStatus string

const (
	ToolMappingActive   ToolMappingStatus = "ACTIVE"
	ToolMappingInactive ToolMappingStatus = "INACTIVE"
)

// ToolMapping is a per (namespace, upstream-server, tool) record. The
// uniqueness constraint is (namespace, tool, server); it is expressed at
// migration time as a composite unique index named
// idx_tool_mappings_namespace_server_tool.
type ToolMapping struct {
	gorm.Model

	NamespaceID uuid.UUID `json:"namespace_uuid" gorm:"type:uuid;not null;index:idx_tool_mappings_namespace_server_tool,unique"`
	ServerID    uuid.UUID `json:"server_uuid" gorm:"type:uuid;not null;index:idx_tool_mappings_namespace_server_tool,unique"`
	ToolName    string    `json:"tool_name" gorm:"not null;index:idx_tool_mappings_namespace_server_tool,unique"`

	Status       ToolMappingStatus           `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	DeferLoading types.DeferLoadingBehavior `json:"defer_loading" gorm:"type:varchar(20);not null;default:'INHERIT'"`
}

// ToolUUID returns a stable identifier for this mapping's tool, deterministically
// derived from (ServerID, ToolName) via uuid.NewSHA1 rather than a separately
// persisted column, per §9 Open Question decision 2 in DESIGN.md. Two calls
// for the same (server, tool name) always return the same UUID, which is
// what lets updateToolDeferLoading's toolUuid path parameter be resolved
// back to a tool name without a fourth table.
func (m ToolMapping) ToolUUID() uuid.UUID {
	return uuid.NewSHA1(m.ServerID, []byte(m.ToolName))
}
