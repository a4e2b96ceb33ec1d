package types

import "github.com/google/uuid"

// AvailableTool pairs an upstream tool with the server that provides it, the
// unit search providers rank over.
type AvailableTool struct {
	Tool       Tool
	ServerUUID uuid.UUID
}

// SearchQuery is the input to Provider.Search.
type SearchQuery struct {
	Query         string
	MaxResults    int
	NamespaceUUID *uuid.UUID
	EndpointUUID  *uuid.UUID
}

// SearchResult is one ranked hit returned by a search provider.
type SearchResult struct {
	Tool        Tool
	ServerUUID  uuid.UUID
	Score       float64
	MatchReason string
}

// ResolvedConfig is the ephemeral, INHERIT-free per-endpoint snapshot
// produced by the config resolver and consumed by every other component.
type ResolvedConfig struct {
	DeferLoadingEnabled bool
	SearchMethod        SearchMethod
	ToolVisibility      ToolVisibilityMode

	// ToolOverrides maps public tool name to a boolean ENABLED/DISABLED
	// decision. INHERIT entries are never present in this map.
	ToolOverrides map[string]bool

	MaxResults     int
	ProviderConfig map[string]any
}
