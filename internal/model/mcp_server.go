package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/pkg/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type StreamableHTTPConfig struct {
	// URL must be a valid http/https URL.
	URL string `json:"url"`

	// TODO: Store the bearer token in a more secure way, e.g., encrypted instead of plaintext.
	// BearerToken is an optional token used for authenticating requests to the MCP server.
	// If present, it will be used to set the Authorization header in all requests to this MCP server.
	BearerToken string `json:"bearer_token,omitempty"`

	// Headers are optional custom HTTP headers forwarded to the MCP server.
	Headers map[string]string `json:"headers,omitempty"`
}

type StdioConfig struct {
	// Command is the shell command to run the stdio mcp server.
	Command string `json:"command"`

	// Args contains a list of strings that are passed as arguments to the command
	Args []string `json:"args,omitempty"`

	// Env describes the environment variables to pass to the MCP server
	Env map[string]string `json:"env,omitempty"`
}

type SSEConfig struct {
	// URL must be a valid http/https URL.
	URL string `json:"url"`

	BearerToken string `json:"bearer_token,omitempty"`
}

// McpServer represents an upstream MCP server bound to a namespace, whose
// tools are reachable through the namespace's endpoints once mapped via
// ToolMapping. Identified by UUID, consistent with Namespace and Endpoint,
// since ToolMapping and the public tool name's sanitize(serverName) use
// this identity across every component.
type McpServer struct {
	ID          uuid.UUID `json:"uuid" gorm:"type:uuid;primaryKey"`
	NamespaceID uuid.UUID `json:"namespace_uuid" gorm:"type:uuid;not null;index"`

	Name      string                   `json:"name" gorm:"not null;index:idx_mcp_servers_namespace_name,unique"`
	Transport types.McpServerTransport `json:"transport" gorm:"type:varchar(30);not null"`

	Description string `json:"description"`

	// Config describes the transport-specific configuration for the MCP server.
	// It contains the JSON representation of StreamableHTTPConfig, StdioConfig, or SSEConfig.
	Config datatypes.JSON `json:"config" gorm:"type:jsonb;not null"`

	// SessionMode controls how mcpmux manages connections to this MCP server.
	// "stateless" (default): Creates a new connection for each tool call.
	// "stateful": Maintains a persistent connection across tool calls, pooled
	// by internal/upstream's sessionManager.
	SessionMode types.SessionMode `json:"session_mode" gorm:"type:varchar(20);default:'stateless'"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns a UUID when one has not already been set by the
// caller.
func (s *McpServer) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// NewMcpServer builds an McpServer bound to namespaceID for the given
// transport. Unlike the teacher's split NewStreamableHTTPServer/
// NewStdioServer/NewSSEServer (one constructor per transport, each
// re-implementing the same namespace/session-mode plumbing around a
// different config literal), this folds transport selection into a single
// switch: the namespace binding and session-mode resolution are shared
// steps that don't vary by transport, so only the marshaled config and its
// required-field check do. Exactly one of httpConfig/stdioConfig/sseConfig
// must be non-nil, matching transport.
func NewMcpServer(
	namespaceID uuid.UUID,
	name, description string,
	transport types.McpServerTransport,
	sessionMode types.SessionMode,
	httpConfig *StreamableHTTPConfig,
	stdioConfig *StdioConfig,
	sseConfig *SSEConfig,
) (*McpServer, error) {
	if namespaceID == uuid.Nil {
		return nil, errors.New("namespace uuid is required to register an MCP server")
	}

	// Route through the shared validator rather than silently defaulting an
	// unrecognized value, unlike the teacher's inline `if sessionMode == ""`
	// checks, which accept any non-empty string uncritically.
	resolvedMode, err := types.ValidateSessionMode(string(sessionMode))
	if err != nil {
		return nil, err
	}

	var configJSON []byte
	switch transport {
	case types.TransportStreamableHTTP:
		if httpConfig == nil || httpConfig.URL == "" {
			return nil, errors.New("url is required for streamable HTTP transport")
		}
		configJSON, err = json.Marshal(httpConfig)
	case types.TransportStdio:
		if stdioConfig == nil || stdioConfig.Command == "" {
			return nil, errors.New("command is required for stdio transport")
		}
		configJSON, err = json.Marshal(stdioConfig)
	case types.TransportSSE:
		if sseConfig == nil || sseConfig.URL == "" {
			return nil, errors.New("url is required for SSE transport")
		}
		configJSON, err = json.Marshal(sseConfig)
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transport)
	}
	if err != nil {
		return nil, err
	}

	return &McpServer{
		NamespaceID: namespaceID,
		Name:        name,
		Description: description,
		Transport:   transport,
		Config:      datatypes.JSON(configJSON),
		SessionMode: resolvedMode,
	}, nil
}

// unmarshalConfig decodes s.Config into out after checking s carries the
// expected transport, shared by the three Get*Config accessors below so
// the "wrong transport" / "bad JSON" handling lives in one place.
func (s *McpServer) unmarshalConfig(expect types.McpServerTransport, out any) error {
	if s.Transport != expect {
		return fmt.Errorf("server %q is configured for %s transport, not %s", s.Name, s.Transport, expect)
	}
	return json.Unmarshal(s.Config, out)
}

// GetStreamableHTTPConfig returns the configuration if this is a streamable HTTP server
func (s *McpServer) GetStreamableHTTPConfig() (*StreamableHTTPConfig, error) {
	var config StreamableHTTPConfig
	if err := s.unmarshalConfig(types.TransportStreamableHTTP, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// GetStdioConfig returns the configuration if this is a stdio server
func (s *McpServer) GetStdioConfig() (*StdioConfig, error) {
	var config StdioConfig
	if err := s.unmarshalConfig(types.TransportStdio, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// GetSSEConfig returns the configuration if this is an SSE server
func (s *McpServer) GetSSEConfig() (*SSEConfig, error) {
	var config SSEConfig
	if err := s.unmarshalConfig(types.TransportSSE, &config); err != nil {
		return nil, err
	}
	return &config, nil
}
