// newMcpServerSession dials a single upstream connection for one transport.
// It never decides whether that connection is reused across calls — that
// policy, keyed off model.McpServer.SessionMode, lives in sessionManager
// (pool.go).
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/pkg/types"
)

// isLoopbackURL returns true if rawURL resolves to a loopback address.
func isLoopbackURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

func prepareSHTTPClientOptions(serverName string, conf *model.StreamableHTTPConfig) []transport.StreamableHTTPCOption {
	var opts []transport.StreamableHTTPCOption

	headers := map[string]string{}
	for key, value := range conf.Headers {
		headers[key] = value
	}

	if conf.BearerToken != "" {
		if _, hasAuthorizationHeader := headers["Authorization"]; hasAuthorizationHeader {
			log.Printf("[INFO] custom Authorization header will be used for MCP server %s; bearer_token ignored", serverName)
		} else {
			headers["Authorization"] = "Bearer " + conf.BearerToken
		}
	}

	if len(headers) > 0 {
		opts = append(opts, transport.WithHTTPHeaders(headers))
	}
	return opts
}

func createHTTPMcpServerConn(ctx context.Context, s *model.McpServer, initReqTimeoutSec int) (*client.Client, error) {
	conf, err := s.GetStreamableHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get streamable HTTP config for MCP server %s: %w", s.Name, err)
	}

	opts := prepareSHTTPClientOptions(s.Name, conf)

	c, err := client.NewStreamableHttpClient(conf.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create streamable HTTP client for MCP server: %w", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "mcpmux mcp client for " + conf.URL,
		Version: "0.1",
	}
	initRequest.Params.Capabilities = mcp.ClientCapabilities{}

	initCtx, cancel := context.WithTimeout(ctx, time.Duration(initReqTimeoutSec)*time.Second)
	defer cancel()

	if _, err = c.Initialize(initCtx, initRequest); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("initialization request to MCP server timed out after %d seconds", initReqTimeoutSec)
		}
		if errors.Is(err, syscall.ECONNREFUSED) && isLoopbackURL(conf.URL) {
			return nil, fmt.Errorf(
				"connection to the MCP server %s was refused. "+
					"If mcpmux is running inside Docker, use 'host.docker.internal' as your MCP server's hostname",
				conf.URL,
			)
		}
		return nil, fmt.Errorf("failed to initialize connection with MCP server: %w", err)
	}

	return c, nil
}

func captureStdioServerStderr(name string, c *client.Client) {
	stdioTransport := c.GetTransport().(*transport.Stdio)

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := stdioTransport.Stderr().Read(buf)
			if err != nil {
				if err == io.EOF || errors.Is(err, os.ErrClosed) {
					log.Printf("['%s' MCP server] [DEBUG] server process has exited gracefully", name)
				} else {
					log.Printf("['%s' MCP STDERR] error reading stderr: %v", name, err)
				}
				log.Printf("['%s' MCP server] [DEBUG] exiting goroutine", name)
				break
			}
			if n > 0 {
				log.Printf("['%s' MCP STDERR] %s", name, string(buf[:n]))
			}
		}
	}()
}

func runStdioServer(ctx context.Context, s *model.McpServer, initReqTimeoutSec int) (*client.Client, error) {
	conf, err := s.GetStdioConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdio config for MCP server %s: %w", s.Name, err)
	}

	envVars := make([]string, 0)
	for k, v := range conf.Env {
		envVars = append(envVars, fmt.Sprintf("%s=%s", k, v))
	}

	c, err := client.NewStdioMCPClient(conf.Command, envVars, conf.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdio client for MCP server: %w", err)
	}

	captureStdioServerStderr(s.Name, c)

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "mcpmux mcp client for stdio",
		Version: "0.1",
	}
	initRequest.Params.Capabilities = mcp.ClientCapabilities{}

	initCtx, cancel := context.WithTimeout(ctx, time.Duration(initReqTimeoutSec)*time.Second)
	defer cancel()

	if _, err = c.Initialize(initCtx, initRequest); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf(
				"initialization request to MCP server timed out after %d seconds, check server logs for errors",
				initReqTimeoutSec,
			)
		}
		return nil, fmt.Errorf("failed to initialize connection with MCP server: %w", err)
	}

	return c, nil
}

func createSSEMcpServerConn(ctx context.Context, s *model.McpServer) (*client.Client, error) {
	conf, err := s.GetSSEConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get SSE transport config for MCP server %s: %w", s.Name, err)
	}

	var opts []transport.ClientOption
	if conf.BearerToken != "" {
		opts = append(opts, transport.WithHeaders(map[string]string{
			"Authorization": "Bearer " + conf.BearerToken,
		}))
	}

	c, err := client.NewSSEMCPClient(conf.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE client for MCP server: %w", err)
	}

	if err = c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start SSE transport for MCP server: %w", err)
	}

	initReq := mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: "2024-11-05",
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo:      mcp.Implementation{Name: "mcpmux-sse-proxy-client", Version: "0.1.0"},
		},
	}
	if _, err = c.Initialize(ctx, initReq); err != nil {
		return nil, fmt.Errorf("client failed to initialize connection with SSE MCP server: %w", err)
	}

	return c, nil
}

func newMcpServerSession(ctx context.Context, s *model.McpServer, initReqTimeoutSec int) (*client.Client, error) {
	switch s.Transport {
	case types.TransportStreamableHTTP:
		c, err := createHTTPMcpServerConn(ctx, s, initReqTimeoutSec)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection to streamable http MCP server %s: %w", s.Name, err)
		}
		return c, nil
	case types.TransportSSE:
		c, err := createSSEMcpServerConn(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection to SSE MCP server %s: %w", s.Name, err)
		}
		return c, nil
	default:
		c, err := runStdioServer(ctx, s, initReqTimeoutSec)
		if err != nil {
			return nil, fmt.Errorf("failed to run stdio MCP server %s: %w", s.Name, err)
		}
		return c, nil
	}
}
