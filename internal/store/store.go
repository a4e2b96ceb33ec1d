// Package store defines the external contract (§4.G) the core depends on
// for reading and writing configuration, plus a gorm-backed default
// implementation. Persistence itself is named by spec §1 as an external
// collaborator; this package is the one concrete adapter the rest of the
// core is wired against by default, swappable behind the interfaces below.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/pkg/types"
)

// Reader is the read-only half of the store contract (§4.G).
type Reader interface {
	FindNamespace(ctx context.Context, id uuid.UUID) (*model.Namespace, error)
	FindEndpoint(ctx context.Context, id uuid.UUID) (*model.Endpoint, error)

	// FindToolDeferLoadingOverrides returns only entries whose
	// defer_loading is ENABLED or DISABLED, keyed by public tool name.
	FindToolDeferLoadingOverrides(ctx context.Context, namespaceID uuid.UUID) (map[string]bool, error)

	FindToolSearchConfig(ctx context.Context, namespaceID uuid.UUID) (*model.ToolSearchConfig, error)

	EndpointsByNamespace(ctx context.Context, namespaceID uuid.UUID) ([]uuid.UUID, error)

	// ToolMappingsByServer returns every ToolMapping recorded for serverID
	// within namespaceID. Used to resolve a toolUuid (§9 Open Question:
	// uuid.NewSHA1(serverID, toolName)) back to the tool name the store's
	// write methods are keyed on.
	ToolMappingsByServer(ctx context.Context, namespaceID, serverID uuid.UUID) ([]model.ToolMapping, error)

	// ServersByNamespace returns every upstream McpServer registered within
	// namespaceID, the pool internal/upstream discovers live tools from and
	// resolves public tool names against.
	ServersByNamespace(ctx context.Context, namespaceID uuid.UUID) ([]model.McpServer, error)
}

// Writer is the mutating half of the store contract. Every write MUST be
// followed by the caller invoking an Invalidator naming every affected
// endpoint UUID — the gorm implementation does this itself by wrapping an
// Invalidator at construction time, so callers of Writer never need to
// remember to invalidate separately.
type Writer interface {
	UpdateNamespace(ctx context.Context, ns *model.Namespace) error

	// DeleteNamespace removes ns and, within the same transaction, every
	// ToolSearchConfig and ToolMapping scoped to it — Endpoint rows are
	// untouched, matching spec.md §3 Invariant 2 exactly (it names only
	// ToolSearchConfig and ToolMapping as cascading).
	DeleteNamespace(ctx context.Context, id uuid.UUID) error

	UpdateEndpoint(ctx context.Context, ep *model.Endpoint) error
	UpsertToolSearchConfig(ctx context.Context, cfg *model.ToolSearchConfig) error

	// CreateServer persists a new upstream McpServer, used by the demo
	// server's config-seeding bootstrap step (internal/seed) rather than
	// any endpoint/tools request path.
	CreateServer(ctx context.Context, server *model.McpServer) error

	// UpdateToolDeferLoading sets the defer_loading override for the
	// tool identified by (serverID, toolName) within namespaceID.
	UpdateToolDeferLoading(
		ctx context.Context,
		namespaceID, serverID uuid.UUID,
		toolName string,
		behavior types.DeferLoadingBehavior,
	) error
}

// Store is the full read/write contract.
type Store interface {
	Reader
	Writer
}

// Invalidator receives a cache-invalidation signal naming an affected
// endpoint, per §4.G's requirement that every write be followed by one.
// The config resolver implements this interface.
type Invalidator interface {
	Invalidate(endpointID uuid.UUID)
}
