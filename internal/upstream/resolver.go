package upstream

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/internal/sanitize"
)

// StoreServerResolver implements ServerResolver against a ServersReader
// (store.Store satisfies it), splitting the public tool name back into the
// sanitized server name and upstream tool name, per §4.D's dispatch
// algorithm.
type StoreServerResolver struct {
	reader ServersReader
}

// NewStoreServerResolver returns a StoreServerResolver backed by reader.
func NewStoreServerResolver(reader ServersReader) *StoreServerResolver {
	return &StoreServerResolver{reader: reader}
}

func (r *StoreServerResolver) ServerForPublicToolName(
	ctx context.Context, namespaceID uuid.UUID, publicToolName string,
) (*model.McpServer, string, error) {
	sanitizedServerName, toolName, ok := SplitPublicToolName(publicToolName)
	if !ok {
		return nil, "", fmt.Errorf("tool name %q is not a valid public tool name", publicToolName)
	}

	servers, err := r.reader.ServersByNamespace(ctx, namespaceID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list servers for namespace %s: %w", namespaceID, err)
	}

	for i := range servers {
		if sanitize.Name(servers[i].Name) == sanitizedServerName {
			return &servers[i], toolName, nil
		}
	}
	return nil, "", fmt.Errorf("no upstream server matching %q found in namespace %s", sanitizedServerName, namespaceID)
}
