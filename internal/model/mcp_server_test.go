package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/pkg/types"
)

func TestNewMcpServer_RequiresNamespace(t *testing.T) {
	_, err := NewMcpServer(
		uuid.Nil, "test-server", "desc", types.TransportStreamableHTTP, "",
		&StreamableHTTPConfig{URL: "https://example.com"}, nil, nil,
	)
	if err == nil {
		t.Fatal("expected an error for a nil namespace uuid, got nil")
	}
}

func TestNewMcpServer_StreamableHTTP(t *testing.T) {
	namespaceID := uuid.New()

	tests := []struct {
		name        string
		config      *StreamableHTTPConfig
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid with bearer token",
			config: &StreamableHTTPConfig{URL: "https://example.com", BearerToken: "secret-token"},
		},
		{
			name: "valid with custom headers",
			config: &StreamableHTTPConfig{
				URL:     "https://example.com/mcp",
				Headers: map[string]string{"Authorization": "token abc", "Foo": "Bar"},
			},
		},
		{
			name:        "missing config",
			config:      nil,
			wantErr:     true,
			errContains: "url is required",
		},
		{
			name:        "empty url",
			config:      &StreamableHTTPConfig{URL: "", BearerToken: "token"},
			wantErr:     true,
			errContains: "url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewMcpServer(
				namespaceID, "test-server", "a test server", types.TransportStreamableHTTP, "", tt.config, nil, nil,
			)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if server.NamespaceID != namespaceID {
				t.Errorf("expected namespace %s, got %s", namespaceID, server.NamespaceID)
			}
			if server.Transport != types.TransportStreamableHTTP {
				t.Errorf("expected transport %q, got %q", types.TransportStreamableHTTP, server.Transport)
			}
			if server.SessionMode != types.SessionModeStateless {
				t.Errorf("expected default session mode %q, got %q", types.SessionModeStateless, server.SessionMode)
			}

			got, err := server.GetStreamableHTTPConfig()
			if err != nil {
				t.Fatalf("failed to decode config back: %v", err)
			}
			if got.URL != tt.config.URL || got.BearerToken != tt.config.BearerToken {
				t.Errorf("round-tripped config mismatch: got %+v, want %+v", got, tt.config)
			}
		})
	}
}

func TestNewMcpServer_Stdio(t *testing.T) {
	namespaceID := uuid.New()

	server, err := NewMcpServer(
		namespaceID, "stdio-server", "a stdio server", types.TransportStdio, "",
		nil, &StdioConfig{Command: "/usr/bin/python3", Args: []string{"script.py", "--debug"}, Env: map[string]string{"PYTHONPATH": "/app"}}, nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	config, err := server.GetStdioConfig()
	if err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if config.Command != "/usr/bin/python3" {
		t.Errorf("expected command %q, got %q", "/usr/bin/python3", config.Command)
	}

	_, err = NewMcpServer(namespaceID, "broken-stdio", "", types.TransportStdio, "", nil, &StdioConfig{}, nil)
	if err == nil {
		t.Fatal("expected an error for a missing command, got nil")
	}
}

func TestNewMcpServer_SSE(t *testing.T) {
	namespaceID := uuid.New()

	server, err := NewMcpServer(
		namespaceID, "sse-server", "", types.TransportSSE, "",
		nil, nil, &SSEConfig{URL: "https://example.com/events", BearerToken: "secret-token"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	config, err := server.GetSSEConfig()
	if err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if config.URL != "https://example.com/events" {
		t.Errorf("expected url %q, got %q", "https://example.com/events", config.URL)
	}

	_, err = NewMcpServer(namespaceID, "broken-sse", "", types.TransportSSE, "", nil, nil, &SSEConfig{})
	if err == nil {
		t.Fatal("expected an error for a missing url, got nil")
	}
}

func TestNewMcpServer_UnsupportedTransport(t *testing.T) {
	_, err := NewMcpServer(uuid.New(), "bad-transport", "", "carrier-pigeon", "", nil, nil, nil)
	if err == nil {
		t.Fatal("expected an error for an unsupported transport, got nil")
	}
}

func TestNewMcpServer_RejectsInvalidSessionMode(t *testing.T) {
	_, err := NewMcpServer(
		uuid.New(), "test-server", "", types.TransportStreamableHTTP, "sometimes",
		&StreamableHTTPConfig{URL: "https://example.com"}, nil, nil,
	)
	if err == nil {
		t.Fatal("expected an error for an invalid session mode, got nil")
	}
}

func TestNewMcpServer_SessionModeDefaultsToStateless(t *testing.T) {
	server, err := NewMcpServer(
		uuid.New(), "test-server", "", types.TransportStreamableHTTP, "",
		&StreamableHTTPConfig{URL: "https://example.com"}, nil, nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.SessionMode != types.SessionModeStateless {
		t.Errorf("expected %q, got %q", types.SessionModeStateless, server.SessionMode)
	}
}

func TestMcpServer_GetConfig_WrongTransport(t *testing.T) {
	server, err := NewMcpServer(
		uuid.New(), "test-server", "", types.TransportStreamableHTTP, "",
		&StreamableHTTPConfig{URL: "https://example.com"}, nil, nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := server.GetStdioConfig(); err == nil {
		t.Error("expected an error asking for a stdio config on a streamable HTTP server")
	}
	if _, err := server.GetSSEConfig(); err == nil {
		t.Error("expected an error asking for an SSE config on a streamable HTTP server")
	}
}

func TestMcpServer_BeforeCreate_AssignsUUID(t *testing.T) {
	server := &McpServer{NamespaceID: uuid.New(), Name: "test-server"}
	if err := server.BeforeCreate(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.ID == uuid.Nil {
		t.Error("expected BeforeCreate to assign a non-nil UUID")
	}

	existing := uuid.New()
	server = &McpServer{ID: existing, NamespaceID: uuid.New(), Name: "test-server"}
	if err := server.BeforeCreate(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.ID != existing {
		t.Errorf("expected BeforeCreate to leave an existing ID untouched, got %s", server.ID)
	}
}
