package types

import "fmt"

// McpServerTransport represents the transport protocol used by an MCP server.
// All transport types supported by mcpmux are defined in this file with this type.
type McpServerTransport string

const (
	TransportStdio          McpServerTransport = "stdio"
	TransportStreamableHTTP McpServerTransport = "streamable_http"
	TransportSSE            McpServerTransport = "sse"
)

// SessionMode represents the session management mode for an MCP server.
// Stateless mode creates a new connection for each tool call (default).
// Stateful mode maintains a persistent connection across tool calls.
type SessionMode string

const (
	// SessionModeStateless creates a new connection for each tool call.
	// This is the default and safest mode.
	SessionModeStateless SessionMode = "stateless"

	// SessionModeStateful maintains a persistent connection across tool calls.
	// Useful for MCP servers that require session persistence (e.g., after login)
	// or for servers with slow cold start times.
	SessionModeStateful SessionMode = "stateful"
)

// RegisterServerInput is the input structure for registering a new MCP
// server with mcpmux. It is also the shape of one entry in the demo
// server's seed config file (internal/seed).
type RegisterServerInput struct {
	// Name (mandatory) is the unique name of an MCP server registered in mcpmux
	Name string `json:"name" yaml:"name"`

	// Transport (mandatory) is the transport protocol used by the MCP server.
	// valid values are "stdio", "streamable_http", and "sse".
	Transport string `json:"transport" yaml:"transport"`

	Description string `json:"description" yaml:"description"`

	// URL is the URL of the remote mcp server
	// It is mandatory when transport is streamable_http and must be a valid
	//  http/https URL (e.g., https://example.com/mcp).
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// BearerToken is an optional token used for authenticating requests to the remote MCP server.
	// It is useful when the upstream MCP server requires static tokens (e.g., API tokens) for authentication.
	// If the transport is "stdio", this field is ignored.
	BearerToken string `json:"bearer_token,omitempty" yaml:"bearer_token,omitempty"`

	// Headers is an optional set of HTTP headers to forward to upstream streamable_http MCP servers.
	// If both BearerToken and Headers["Authorization"] are provided, the custom Authorization header takes precedence.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Command is the command to run the mcp server.
	// It is mandatory when the transport is "stdio".
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// Args is the list of arguments to pass to the command when the transport is "stdio".
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`

	// Env is the set of environment variables to pass to the mcp server when the transport is "stdio".
	// Both the key and value must be of type string.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`

	// SessionMode controls how mcpmux manages connections to this MCP server.
	SessionMode string `json:"session_mode,omitempty" yaml:"session_mode,omitempty"`
}

// ValidateTransport validates the input string and returns the corresponding McpServerTransport.
// It returns an error if the input is invalid or empty.
func ValidateTransport(input string) (McpServerTransport, error) {
	errMsgExt := fmt.Sprintf(
		"(acceptable values: '%s', '%s', '%s')", TransportStreamableHTTP, TransportStdio, TransportSSE,
	)

	switch input {
	case string(TransportStreamableHTTP):
		return TransportStreamableHTTP, nil
	case string(TransportStdio):
		return TransportStdio, nil
	case string(TransportSSE):
		return TransportSSE, nil
	case "":
		return "", fmt.Errorf("transport is required %s", errMsgExt)
	default:
		return "", fmt.Errorf("unsupported transport type: %s %s", input, errMsgExt)
	}
}

// ValidateSessionMode validates the input string and returns the corresponding SessionMode.
// If the input is empty, it returns the default SessionModeStateless.
func ValidateSessionMode(input string) (SessionMode, error) {
	switch input {
	case string(SessionModeStateful):
		return SessionModeStateful, nil
	case string(SessionModeStateless), "":
		return SessionModeStateless, nil
	default:
		return "", fmt.Errorf(
			"unsupported session mode: %s (acceptable values: '%s', '%s')",
			input, SessionModeStateless, SessionModeStateful,
		)
	}
}
