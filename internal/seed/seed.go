// Package seed loads a YAML file of upstream MCP server definitions and
// registers them against the store, the config-driven path
// internal/model's NewMcpServer and pkg/types's RegisterServerInput/
// ValidateTransport/ValidateSessionMode exist to serve: the demo server in
// cmd/start.go otherwise has no way to populate a freshly migrated
// database before its first request.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/pkg/types"
	"gopkg.in/yaml.v3"
)

// Writer is the subset of store.Store seeding needs.
type Writer interface {
	CreateServer(ctx context.Context, server *model.McpServer) error
}

// File is the top-level shape of a seed YAML file: a flat list of server
// registrations, each validated the same way a registration API would.
type File struct {
	Servers []types.RegisterServerInput `yaml:"servers"`
}

// Load parses a seed file from path.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &f, nil
}

// Apply registers every server in f against w, within namespaceID. Each
// input is validated with the same types.ValidateTransport/
// ValidateSessionMode a registration API would use, then converted into an
// McpServer via model.NewMcpServer. A server whose name already exists in
// the namespace is reported as an error rather than silently skipped or
// updated, since the seed file is meant to describe the namespace's
// servers exhaustively.
func Apply(ctx context.Context, w Writer, namespaceID uuid.UUID, f *File) error {
	for i, input := range f.Servers {
		server, err := toMcpServer(namespaceID, input)
		if err != nil {
			return fmt.Errorf("seed entry %d (%q): %w", i, input.Name, err)
		}
		if err := w.CreateServer(ctx, server); err != nil {
			return fmt.Errorf("failed to register seeded server %q: %w", input.Name, err)
		}
	}
	return nil
}

func toMcpServer(namespaceID uuid.UUID, input types.RegisterServerInput) (*model.McpServer, error) {
	transport, err := types.ValidateTransport(input.Transport)
	if err != nil {
		return nil, err
	}
	sessionMode, err := types.ValidateSessionMode(input.SessionMode)
	if err != nil {
		return nil, err
	}

	var httpConfig *model.StreamableHTTPConfig
	var stdioConfig *model.StdioConfig
	var sseConfig *model.SSEConfig

	switch transport {
	case types.TransportStreamableHTTP:
		httpConfig = &model.StreamableHTTPConfig{URL: input.URL, BearerToken: input.BearerToken, Headers: input.Headers}
	case types.TransportStdio:
		stdioConfig = &model.StdioConfig{Command: input.Command, Args: input.Args, Env: input.Env}
	case types.TransportSSE:
		sseConfig = &model.SSEConfig{URL: input.URL, BearerToken: input.BearerToken}
	}

	return model.NewMcpServer(namespaceID, input.Name, input.Description, transport, sessionMode, httpConfig, stdioConfig, sseConfig)
}
